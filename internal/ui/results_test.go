package ui

import (
	"encoding/json"
	"testing"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/snapshop/snapshop/internal/nav"
	"github.com/snapshop/snapshop/internal/search"
)

func results(t *testing.T, m Model) *resultsScreen {
	t.Helper()
	r, ok := m.current.(*resultsScreen)
	require.True(t, ok, "current screen is %T", m.current)
	return r
}

func twoItems() search.ResultSet {
	return search.ResultSet{
		{ID: "a", Title: "Cat Toy", Link: "https://shop.example.com/a"},
		{ID: "b", Title: "Scratch Post", Link: "https://shop.example.com/b"},
	}
}

func TestResults_DirectEntryFetchesOnce(t *testing.T) {
	fake := &fakeSearcher{listResults: search.ResultSet{}}
	m, _ := newTestModel(t, fake, Options{StartPath: nav.PathResults})

	r := results(t, m)
	require.IsType(t, sourcePending{}, r.source)
	pendingView := m.View()
	require.Contains(t, pendingView, "Results")
	require.NotContains(t, pendingView, msgNoResults)

	m = pump(t, m, m.Init())
	require.Nil(t, r.Init(), "a screen fetches at most once")

	_, list := fake.calls()
	require.Equal(t, 1, list)
	require.Equal(t, sourceLoaded{results: search.ResultSet{}}, r.source)
	require.Contains(t, m.View(), msgNoResults)
	require.NotContains(t, m.View(), msgFetchFailed)
}

func TestResults_ProvidedPayloadSkipsFetch(t *testing.T) {
	fake := &fakeSearcher{}
	e := &env{client: fake}
	r := newResultsScreen(e, nav.WithResults(twoItems()))

	require.Nil(t, r.Init())
	require.Equal(t, 0, r.selectedIndex())
	_, list := fake.calls()
	require.Zero(t, list)

	empty := newResultsScreen(e, &nav.Payload{})
	require.Equal(t, sourceProvided{results: search.ResultSet{}}, empty.source)
	require.Nil(t, empty.Init())
}

func TestResults_FetchFailureShowsError(t *testing.T) {
	fake := &fakeSearcher{listErr: &search.TransportError{
		Op: "list items", Endpoint: "/items/", StatusCode: 500, Err: errors.New("boom"),
	}}
	m, _ := newTestModel(t, fake, Options{StartPath: nav.PathResults})
	m = pump(t, m, m.Init())

	r := results(t, m)
	require.Equal(t, sourceErrored{message: msgFetchFailed}, r.source)
	require.Empty(t, r.items())
	view := m.View()
	require.Contains(t, view, msgFetchFailed)
	require.NotContains(t, view, msgNoResults)
}

func TestResults_LateListAfterLoadIsIgnored(t *testing.T) {
	e := &env{client: &fakeSearcher{}, logger: zap.NewNop()}
	r := newResultsScreen(e, nil)
	r.handleList(listResultMsg{id: r.id, results: twoItems()})
	r.handleList(listResultMsg{id: r.id, err: errors.New("late")})
	require.IsType(t, sourceLoaded{}, r.source)
	require.Len(t, r.items(), 2)
}

func TestResults_SelectionMoves(t *testing.T) {
	m, _ := newTestModel(t, &fakeSearcher{}, Options{StartPath: nav.PathResults})
	m = step(t, m, navigateMsg{transition: nav.To(nav.PathResults, nav.WithResults(twoItems()))})

	r := results(t, m)
	require.Equal(t, 0, r.selectedIndex())

	m, _ = press(t, m, "j")
	require.Equal(t, 1, r.selectedIndex())
	m, _ = press(t, m, "j")
	require.Equal(t, 1, r.selectedIndex(), "selection clamps at the end")
	m, _ = press(t, m, "g")
	require.Equal(t, 0, r.selectedIndex())
	_, _ = press(t, m, "G")
	require.Equal(t, 1, r.selectedIndex())
}

func TestResults_SelectionReachesItemsWithoutIDs(t *testing.T) {
	var set search.ResultSet
	require.NoError(t, json.Unmarshal([]byte(`[
		{"title":"Cat Toy","link":"http://x/1","timestamp":"2026-01-02T03:04:05"},
		{"title":"Scratch Post","link":"http://x/2","timestamp":"2026-01-02T03:04:06"}
	]`), &set))
	require.Equal(t, set[0].ID, set[1].ID)

	m, links := newTestModel(t, &fakeSearcher{}, Options{})
	m = step(t, m, navigateMsg{transition: nav.To(nav.PathResults, nav.WithResults(set))})
	r := results(t, m)

	m, _ = press(t, m, "j")
	require.Equal(t, 1, r.selectedIndex())
	require.Contains(t, m.View(), "2 of 2")

	m, cmd := press(t, m, "o")
	m = pump(t, m, cmd)
	require.Equal(t, []string{"http://x/2"}, links.opened)

	m, _ = press(t, m, "k")
	_, cmd = press(t, m, "y")
	_ = pump(t, m, cmd)
	require.Equal(t, []string{"http://x/1"}, links.copied)
}

func TestResults_OpenAndCopyLinks(t *testing.T) {
	m, links := newTestModel(t, &fakeSearcher{}, Options{})
	m = step(t, m, navigateMsg{transition: nav.To(nav.PathResults, nav.WithResults(twoItems()))})
	r := results(t, m)

	m, cmd := press(t, m, "j")
	require.Nil(t, cmd)
	m, cmd = press(t, m, "enter")
	m = pump(t, m, cmd)
	require.Equal(t, []string{"https://shop.example.com/b"}, links.opened)
	require.Equal(t, "Opened in browser", r.Status())
	require.Contains(t, m.View(), "Opened in browser")
	require.Equal(t, m.theme.Styles().SuccessText, r.hintStyle(m.theme.Styles()))

	m, cmd = press(t, m, "y")
	m = pump(t, m, cmd)
	require.Equal(t, []string{"https://shop.example.com/b"}, links.copied)
	require.Equal(t, "Link copied", r.Status())

	// Hints expire; an older expiry does not clear a newer hint.
	m = step(t, m, hintExpiredMsg{id: r.id, seq: r.hintSeq - 1})
	require.Equal(t, "Link copied", r.Status())
	_ = step(t, m, hintExpiredMsg{id: r.id, seq: r.hintSeq})
	require.Equal(t, "2 from upload", r.Status())
}

func TestResults_UnsafeLinkIsNotOpened(t *testing.T) {
	m, links := newTestModel(t, &fakeSearcher{}, Options{})
	m = step(t, m, navigateMsg{transition: nav.To(nav.PathResults, nav.WithResults(search.ResultSet{
		{ID: "x", Title: "Odd", Link: "javascript:alert(1)"},
	}))})

	m, cmd := press(t, m, "o")
	m = pump(t, m, cmd)
	require.Empty(t, links.opened)
	r := results(t, m)
	require.Equal(t, "Could not open link", r.Status())
	require.Equal(t, m.theme.Styles().WarningText, r.hintStyle(m.theme.Styles()))
	require.IsType(t, sourceProvided{}, r.source, "link failures never become result errors")
}

func TestResults_ReloadAndBack(t *testing.T) {
	fake := &fakeSearcher{listResults: twoItems()}
	m, _ := newTestModel(t, fake, Options{})
	m = step(t, m, navigateMsg{transition: nav.To(nav.PathResults, nav.WithResults(search.ResultSet{}))})
	providedID := m.current.ID()

	m, cmd := press(t, m, "r")
	m = pump(t, m, cmd)
	require.NotEqual(t, providedID, m.current.ID())
	require.IsType(t, sourceLoaded{}, results(t, m).source)
	_, list := fake.calls()
	require.Equal(t, 1, list)

	m, cmd = press(t, m, "b")
	m = pump(t, m, cmd)
	require.Equal(t, nav.PathSubmission, m.path)

	m, cmd = press(t, m, "r")
	m = pump(t, m, cmd)
	m, cmd = press(t, m, "esc")
	m = pump(t, m, cmd)
	require.Equal(t, nav.PathSubmission, m.path)
}

func TestResults_WindowKeepsSelectionVisible(t *testing.T) {
	items := make(search.ResultSet, 0, 10)
	for i := 0; i < 10; i++ {
		items = append(items, search.ResultItem{ID: search.ItemID(string(rune('a' + i))), Title: "Item " + string(rune('A'+i))})
	}
	e := &env{}
	r := newResultsScreen(e, nav.WithResults(items))
	r.Update(tea.WindowSizeMsg{Width: 80, Height: 2 + cardHeight*3})
	require.Equal(t, 3, r.visibleCards())

	r.selectIndex(5)
	require.Equal(t, 3, r.offset)
	view := r.View(GetTheme(""), 80, 2+cardHeight*3)
	require.Contains(t, view, "Item F")
	require.NotContains(t, view, "Item A")

	r.selectIndex(1)
	require.Equal(t, 1, r.offset)
}

func TestFormatTimestamp(t *testing.T) {
	require.Equal(t, "unknown time", formatTimestamp(time.Time{}))
	stamp := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	require.Equal(t, stamp.In(time.Local).Format(timestampLayout), formatTimestamp(stamp))
}

func TestCheckLink(t *testing.T) {
	require.NoError(t, checkLink("https://shop.example.com/item"))
	require.NoError(t, checkLink(" http://localhost:8000/x "))
	require.Error(t, checkLink("javascript:alert(1)"))
	require.Error(t, checkLink("file:///etc/passwd"))
	require.Error(t, checkLink("/relative"))
	require.Error(t, checkLink(""))
}
