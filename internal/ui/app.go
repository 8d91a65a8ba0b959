package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"

	"github.com/snapshop/snapshop/internal/nav"
	"github.com/snapshop/snapshop/internal/search"
)

// Options configures the UI.
type Options struct {
	Context context.Context
	Client  search.Searcher
	Logger  *zap.Logger

	ThemeName string
	// StartPath is the route shown first; empty means the submission screen.
	StartPath string
	// InitialFile is preselected on the first submission screen.
	InitialFile string
	// StartDir is where the file picker opens; empty means the working dir.
	StartDir string

	// OpenURL and CopyText default to the system browser and clipboard.
	OpenURL  func(string) error
	CopyText func(string) error
}

// env is shared by every screen the table builds.
type env struct {
	ctx         context.Context
	client      search.Searcher
	logger      *zap.Logger
	keys        keyMap
	openURL     func(string) error
	copyText    func(string) error
	startDir    string
	initialFile string
	lastID      int
}

// nextID hands out screen instance ids. Async results carry the id of the
// screen that started them.
func (e *env) nextID() int {
	e.lastID++
	return e.lastID
}

// screen is one routed page.
type screen interface {
	ID() int
	Route() nav.Route
	Init() tea.Cmd
	Update(msg tea.Msg) (screen, tea.Cmd)
	View(th Theme, width, height int) string
	Commands() []command
	Status() string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	env   *env
	table *nav.Table[screen]
	keys  keyMap

	// UI state
	theme    Theme
	current  screen
	path     string
	width    int
	height   int
	ready    bool
	showHelp bool
}

// New creates the root model positioned on opts.StartPath.
func New(opts Options) (Model, error) {
	if opts.Client == nil {
		return Model{}, errors.New("search client is required")
	}

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	openURL := opts.OpenURL
	if openURL == nil {
		openURL = browser.OpenURL
	}
	copyText := opts.CopyText
	if copyText == nil {
		copyText = clipboard.WriteAll
	}

	e := &env{
		ctx:         ctx,
		client:      opts.Client,
		logger:      logger.Named("ui"),
		keys:        DefaultKeyMap(),
		openURL:     openURL,
		copyText:    copyText,
		startDir:    opts.StartDir,
		initialFile: strings.TrimSpace(opts.InitialFile),
	}

	table := nav.NewTable[screen]()
	table.Handle(nav.PathSubmission, nav.RouteSubmission, func(*nav.Payload) screen {
		return newSubmissionScreen(e)
	})
	table.Handle(nav.PathResults, nav.RouteResults, func(payload *nav.Payload) screen {
		return newResultsScreen(e, payload)
	})

	route, first, err := table.Resolve(nav.Reload(opts.StartPath))
	if err != nil {
		return Model{}, err
	}
	path, _ := table.PathOf(route)

	return Model{
		env:     e,
		table:   table,
		keys:    e.keys,
		theme:   GetTheme(opts.ThemeName),
		current: first,
		path:    path,
	}, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.current.Init()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m.forward(m.contentSize())

	case navigateMsg:
		return m.navigate(msg.transition)

	case screenMsg:
		if msg.screenID() != m.current.ID() {
			m.env.logger.Debug("dropping stale result",
				zap.String("msg", fmt.Sprintf("%T", msg)),
				zap.Int("screen_id", msg.screenID()),
				zap.Int("current_id", m.current.ID()),
			)
			return m, nil
		}
	}

	return m.forward(msg)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	size := m.contentSize()
	b.WriteString(m.current.View(m.theme, size.Width, size.Height))
	return b.String()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		return m, nil
	}

	return m.forward(msg)
}

func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.current.Update(msg)
	m.current = next
	return m, cmd
}

// navigate replaces the current screen. The payload reaches only the
// screen built for this transition.
func (m Model) navigate(tr nav.Transition) (tea.Model, tea.Cmd) {
	route, next, err := m.table.Resolve(tr)
	if err != nil {
		m.env.logger.Error("navigation failed", zap.String("path", tr.Path), zap.Error(err))
		return m, nil
	}
	path, _ := m.table.PathOf(route)
	m.env.logger.Debug("navigate",
		zap.String("from", m.path),
		zap.String("to", path),
		zap.Bool("payload", tr.Payload != nil),
		zap.Int("screen_id", next.ID()),
	)

	m.current = next
	m.path = path

	cmds := []tea.Cmd{next.Init()}
	if m.ready {
		var cmd tea.Cmd
		m.current, cmd = m.current.Update(m.contentSize())
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) contentSize() tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: m.width, Height: maxInt(m.height-chromeHeight, 0)}
}

// Run starts the Bubble Tea program. Requests still in flight when it
// returns are cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	opts.Context = ctx

	// The browser launcher writes to the terminal otherwise.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	m, err := New(opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
