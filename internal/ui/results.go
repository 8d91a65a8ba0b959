package ui

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/snapshop/snapshop/internal/nav"
	"github.com/snapshop/snapshop/internal/search"
)

const (
	msgFetchFailed = "Failed to fetch items. Please try again."
	msgNoResults   = "No results"

	timestampLayout = "Jan 2, 2006 3:04:05 PM"
)

// resultSource is where the screen's results came from. Exactly one of the
// source types below.
type resultSource interface {
	isResultSource()
}

// sourceProvided holds results carried in by the navigation payload.
type sourceProvided struct{ results search.ResultSet }

// sourcePending means the single list call has not answered yet.
type sourcePending struct{}

// sourceLoaded holds results returned by the list call.
type sourceLoaded struct{ results search.ResultSet }

// sourceErrored holds the message shown when the list call failed.
type sourceErrored struct{ message string }

func (sourceProvided) isResultSource() {}
func (sourcePending) isResultSource()  {}
func (sourceLoaded) isResultSource()   {}
func (sourceErrored) isResultSource()  {}

// resultsScreen renders one card per result. It trusts a carried payload or
// fetches exactly once per entry, never both.
type resultsScreen struct {
	env *env
	id  int

	source      resultSource
	fetchIssued bool

	cursor int
	offset int

	hint       string
	hintFailed bool
	hintSeq    int

	width  int
	height int
}

func newResultsScreen(e *env, payload *nav.Payload) *resultsScreen {
	s := &resultsScreen{env: e, id: e.nextID()}
	if payload == nil {
		s.source = sourcePending{}
		return s
	}
	results := payload.Results
	if results == nil {
		results = search.ResultSet{}
	}
	s.source = sourceProvided{results: results}
	s.selectIndex(0)
	return s
}

func (s *resultsScreen) ID() int          { return s.id }
func (s *resultsScreen) Route() nav.Route { return nav.RouteResults }

func (s *resultsScreen) Init() tea.Cmd {
	if _, pending := s.source.(sourcePending); !pending || s.fetchIssued {
		return nil
	}
	s.fetchIssued = true
	s.env.logger.Debug("fetching items", zap.Int("screen_id", s.id))
	return listCmd(s.env.ctx, s.env.client, s.id)
}

func (s *resultsScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.ensureVisible()
	case listResultMsg:
		s.handleList(msg)
	case linkActionMsg:
		return s, s.handleLinkAction(msg)
	case hintExpiredMsg:
		if msg.seq == s.hintSeq {
			s.hint = ""
		}
	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *resultsScreen) handleList(msg listResultMsg) {
	if _, pending := s.source.(sourcePending); !pending {
		return
	}
	if msg.err != nil {
		s.source = sourceErrored{message: msgFetchFailed}
		fields := []zap.Field{zap.Error(msg.err)}
		if te, ok := search.AsTransport(msg.err); ok {
			fields = append(fields, zap.String("request_id", te.RequestID), zap.Int("status", te.StatusCode))
		}
		s.env.logger.Error("list items failed", fields...)
		return
	}
	results := msg.results
	if results == nil {
		results = search.ResultSet{}
	}
	s.source = sourceLoaded{results: results}
	s.offset = 0
	s.selectIndex(0)
	s.env.logger.Debug("items loaded", zap.Int("items", len(results)))
}

func (s *resultsScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	keys := s.env.keys
	switch {
	case key.Matches(msg, keys.Reload):
		return navigateCmd(nav.Reload(nav.PathResults))
	case key.Matches(msg, keys.Back):
		return navigateCmd(nav.To(nav.PathSubmission, nil))
	case key.Matches(msg, keys.Up):
		s.selectIndex(s.selectedIndex() - 1)
	case key.Matches(msg, keys.Down):
		s.selectIndex(s.selectedIndex() + 1)
	case key.Matches(msg, keys.Top):
		s.selectIndex(0)
	case key.Matches(msg, keys.Bottom):
		s.selectIndex(len(s.items()) - 1)
	case key.Matches(msg, keys.OpenLink):
		return s.linkCmd(linkOpen)
	case key.Matches(msg, keys.CopyLink):
		return s.linkCmd(linkCopy)
	}
	return nil
}

// items returns the results to render; nil while pending or after an error.
func (s *resultsScreen) items() search.ResultSet {
	switch src := s.source.(type) {
	case sourceProvided:
		return src.results
	case sourceLoaded:
		return src.results
	}
	return nil
}

// selectedIndex returns the cursor, or -1 when there is nothing to select.
// Item ids may repeat or be empty, so the cursor is positional.
func (s *resultsScreen) selectedIndex() int {
	if len(s.items()) == 0 {
		return -1
	}
	return s.cursor
}

func (s *resultsScreen) selectIndex(idx int) {
	items := s.items()
	if len(items) == 0 {
		s.cursor = 0
		return
	}
	s.cursor = maxInt(minInt(idx, len(items)-1), 0)
	s.ensureVisible()
}

func (s *resultsScreen) selectedItem() (search.ResultItem, bool) {
	idx := s.selectedIndex()
	if idx < 0 {
		return search.ResultItem{}, false
	}
	return s.items()[idx], true
}

func (s *resultsScreen) visibleCards() int {
	return maxInt((s.height-2)/cardHeight, 1)
}

func (s *resultsScreen) ensureVisible() {
	idx := s.selectedIndex()
	if idx < 0 {
		s.offset = 0
		return
	}
	visible := s.visibleCards()
	if idx < s.offset {
		s.offset = idx
	}
	if idx >= s.offset+visible {
		s.offset = idx - visible + 1
	}
	s.offset = maxInt(s.offset, 0)
}

// linkCmd opens or copies the selected item's link off the event loop.
func (s *resultsScreen) linkCmd(action linkAction) tea.Cmd {
	item, ok := s.selectedItem()
	if !ok {
		return nil
	}
	id, link := s.id, item.Link
	openURL, copyText := s.env.openURL, s.env.copyText
	return func() tea.Msg {
		var err error
		switch action {
		case linkOpen:
			if err = checkLink(link); err == nil {
				err = openURL(link)
			}
		case linkCopy:
			if strings.TrimSpace(link) == "" {
				err = errors.New("item has no link")
			} else {
				err = copyText(link)
			}
		}
		return linkActionMsg{id: id, action: action, link: link, err: err}
	}
}

func (s *resultsScreen) handleLinkAction(msg linkActionMsg) tea.Cmd {
	verb := "open"
	if msg.action == linkCopy {
		verb = "copy"
	}
	s.hintFailed = msg.err != nil
	if msg.err != nil {
		s.hint = "Could not " + verb + " link"
		s.env.logger.Warn("link action failed",
			zap.String("action", verb),
			zap.String("link", msg.link),
			zap.Error(msg.err),
		)
	} else if msg.action == linkCopy {
		s.hint = "Link copied"
	} else {
		s.hint = "Opened in browser"
	}
	s.hintSeq++
	return hintExpiryCmd(s.id, s.hintSeq)
}

// checkLink accepts absolute http and https URLs only.
func checkLink(link string) error {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return errors.Wrap(err, "parse link")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("unsupported link scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("link has no host")
	}
	return nil
}

// formatTimestamp renders t in the viewer's local zone.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown time"
	}
	return t.In(time.Local).Format(timestampLayout)
}

func (s *resultsScreen) View(th Theme, width, height int) string {
	styles := th.Styles()

	var b strings.Builder
	b.WriteString(styles.Logo.Render("Results"))

	switch src := s.source.(type) {
	case sourcePending:
		return b.String()
	case sourceErrored:
		b.WriteString("\n\n")
		b.WriteString(styles.DangerText.Render(src.message))
		return b.String()
	}

	items := s.items()
	if len(items) == 0 {
		b.WriteString("\n\n")
		b.WriteString(styles.MutedText.Render(msgNoResults))
		return b.String()
	}

	b.WriteString(styles.FaintText.Render(fmt.Sprintf("  %d of %d", s.selectedIndex()+1, len(items))))
	if s.hint != "" {
		b.WriteString("  ")
		b.WriteString(s.hintStyle(styles).Render(s.hint))
	}
	b.WriteString("\n")

	end := minInt(s.offset+s.visibleCards(), len(items))
	for i := s.offset; i < end; i++ {
		b.WriteString("\n")
		b.WriteString(renderCard(th, items[i], width, i == s.cursor))
	}
	return b.String()
}

func (s *resultsScreen) hintStyle(styles Styles) lipgloss.Style {
	if s.hintFailed {
		return styles.WarningText
	}
	return styles.SuccessText
}

func renderCard(th Theme, item search.ResultItem, width int, selected bool) string {
	styles := th.Styles()
	frame := styles.Card
	if selected {
		styles = styles.WithBackground(th.FocusBg)
		frame = styles.CardSelected
	}
	inner := maxInt(width-4, 10)

	title := item.Title
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.Text.Bold(true).Render(truncate(title, inner)),
		styles.AccentText.Render(truncate(item.Link, inner)),
		styles.MutedText.Render(formatTimestamp(item.Timestamp)),
	)
	return frame.Width(maxInt(width-2, inner+2)).Render(body)
}

func (s *resultsScreen) Commands() []command {
	cmds := []command{{"r", "Reload"}, {"b", "New search"}}
	if len(s.items()) > 0 {
		cmds = append([]command{{"j/k", "Select"}, {"enter", "Open"}, {"y", "Copy link"}}, cmds...)
	}
	return cmds
}

func (s *resultsScreen) Status() string {
	if s.hint != "" {
		return s.hint
	}
	switch src := s.source.(type) {
	case sourcePending:
		return "loading"
	case sourceErrored:
		return "error"
	case sourceProvided:
		return fmt.Sprintf("%d from upload", len(src.results))
	case sourceLoaded:
		return fmt.Sprintf("%d latest", len(src.results))
	}
	return ""
}
