package ui

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/snapshop/snapshop/internal/nav"
	"github.com/snapshop/snapshop/internal/search"
)

var jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")

// fakeSearcher counts backend calls. A non-nil gate blocks SubmitImage until
// it is closed.
type fakeSearcher struct {
	mu sync.Mutex

	submitCalls int
	listCalls   int
	lastUpload  search.UploadRequest

	submitResults search.ResultSet
	submitErr     error
	listResults   search.ResultSet
	listErr       error
	gate          chan struct{}
}

func (f *fakeSearcher) SubmitImage(ctx context.Context, req search.UploadRequest) (search.ResultSet, error) {
	f.mu.Lock()
	f.submitCalls++
	f.lastUpload = req
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitResults, f.submitErr
}

func (f *fakeSearcher) ListItems(context.Context) (search.ResultSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.listResults, f.listErr
}

func (f *fakeSearcher) calls() (submit, list int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitCalls, f.listCalls
}

type linkRecorder struct {
	mu     sync.Mutex
	opened []string
	copied []string
}

func (r *linkRecorder) open(link string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened = append(r.opened, link)
	return nil
}

func (r *linkRecorder) copy(link string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.copied = append(r.copied, link)
	return nil
}

func newTestModel(t *testing.T, fake *fakeSearcher, opts Options) (Model, *linkRecorder) {
	t.Helper()
	links := &linkRecorder{}
	opts.Client = fake
	opts.Logger = zap.NewNop()
	opts.OpenURL = links.open
	opts.CopyText = links.copy
	if opts.StartDir == "" {
		opts.StartDir = t.TempDir()
	}
	m, err := New(opts)
	require.NoError(t, err)

	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, links
}

func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, jpegHeader, 0o600))
	return path
}

// step feeds msg to the model without running the returned command.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// press feeds a key and returns the command it produced.
func press(t *testing.T, m Model, keyName string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch keyName {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keyName)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// runCmd executes cmd, flattening batches. Commands that do not return
// quickly (timers) are dropped.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, runCmd(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(250 * time.Millisecond):
		return nil
	}
}

// pump runs cmd and every command its messages produce until the model
// settles.
func pump(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := runCmd(cmd)
	for i := 0; len(queue) > 0; i++ {
		require.Less(t, i, 200, "model did not settle")
		msg := queue[0]
		queue = queue[1:]
		next, c := m.Update(msg)
		m = next.(Model)
		queue = append(queue, runCmd(c)...)
	}
	return m
}

func TestNew_RequiresClient(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestNew_UnknownStartPath(t *testing.T) {
	_, err := New(Options{Client: &fakeSearcher{}, StartPath: "/checkout"})
	require.Error(t, err)
	require.True(t, errors.Is(err, nav.ErrUnknownRoute))
}

func TestModel_StartsOnSubmission(t *testing.T) {
	m, _ := newTestModel(t, &fakeSearcher{}, Options{})
	require.Equal(t, nav.PathSubmission, m.path)
	require.Equal(t, nav.RouteSubmission, m.current.Route())
	require.Contains(t, m.View(), headline)
}

func TestModel_ViewBeforeSizeIsLoading(t *testing.T) {
	m, err := New(Options{Client: &fakeSearcher{}})
	require.NoError(t, err)
	require.Equal(t, "Loading...", m.View())
}

func TestModel_GlobalKeys(t *testing.T) {
	m, _ := newTestModel(t, &fakeSearcher{}, Options{ThemeName: "Slate"})
	require.Equal(t, "Slate", m.theme.Name)

	m, _ = press(t, m, "T")
	require.Equal(t, "Nightfox", m.theme.Name)

	m, _ = press(t, m, "?")
	require.True(t, m.showHelp)
	require.Contains(t, m.View(), "Keyboard Shortcuts")

	// Any key closes help without reaching the screen.
	m, cmd := press(t, m, "s")
	require.False(t, m.showHelp)
	require.Nil(t, cmd)

	_, cmd = press(t, m, "q")
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_StaleResultIsDropped(t *testing.T) {
	fake := &fakeSearcher{listResults: search.ResultSet{{ID: "new", Title: "Fresh"}}}
	m, _ := newTestModel(t, fake, Options{StartPath: nav.PathResults})

	// Hold the first entry's fetch while the user reloads.
	stale := m.Init()
	require.NotNil(t, stale)
	staleID := m.current.ID()

	m, cmd := press(t, m, "r")
	m = pump(t, m, cmd)
	require.NotEqual(t, staleID, m.current.ID())
	require.Contains(t, m.View(), "Fresh")

	fake.mu.Lock()
	fake.listResults = search.ResultSet{{ID: "old", Title: "Outdated"}}
	fake.mu.Unlock()

	m = pump(t, m, stale)
	require.NotContains(t, m.View(), "Outdated")
	require.Contains(t, m.View(), "Fresh")

	// A late result addressed to any earlier screen is ignored too.
	m = step(t, m, submitResultMsg{id: staleID, results: search.ResultSet{{ID: "x", Title: "Ghost"}}})
	require.Equal(t, nav.PathResults, m.path)
	require.NotContains(t, m.View(), "Ghost")

	_, list := fake.calls()
	require.Equal(t, 2, list, "one fetch per entry")
}
