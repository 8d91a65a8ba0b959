package ui

import (
	"path/filepath"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/snapshop/snapshop/internal/nav"
	"github.com/snapshop/snapshop/internal/search"
)

// User-facing messages on the submission screen.
const (
	msgSelectFile   = "Please select a file."
	msgUploadFailed = "Failed to upload image. Please try again."
	msgNotImage     = "Please select an image file."

	headline    = "Find the best deals on SnapShop"
	subheadline = "Where Savings Meet Simplicity – Upload Image!"
)

// filepickerMargin is subtracted by the file picker from the height of any
// WindowSizeMsg it receives when AutoHeight is on.
const filepickerMargin = 5

var imageExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tif", ".tiff",
	".JPG", ".JPEG", ".PNG", ".GIF", ".WEBP", ".BMP", ".TIF", ".TIFF",
}

type submitState int

const (
	stateIdle submitState = iota
	stateValidating
	stateSubmitting
	stateSuccess
	stateFailed
)

func (s submitState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateValidating:
		return "validating"
	case stateSubmitting:
		return "uploading"
	case stateSuccess:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// submissionScreen lets the user pick an image and upload it. At most one
// upload is outstanding per instance.
type submissionScreen struct {
	env *env
	id  int

	state   submitState
	picker  filepicker.Model
	spinner spinner.Model

	selected  string                // path of the chosen file
	pending   *search.UploadRequest // dropped once handed to the client
	uploading string                // file name shown next to the spinner
	message   string
	started   time.Time
}

func newSubmissionScreen(e *env) *submissionScreen {
	fp := filepicker.New()
	fp.AllowedTypes = imageExtensions
	fp.AutoHeight = true
	fp.ShowPermissions = false
	fp.ShowSize = true
	if e.startDir != "" {
		fp.CurrentDirectory = e.startDir
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	s := &submissionScreen{
		env:     e,
		id:      e.nextID(),
		picker:  fp,
		spinner: sp,
	}
	if e.initialFile != "" {
		s.selectFile(e.initialFile)
		e.initialFile = ""
	}
	return s
}

func (s *submissionScreen) ID() int          { return s.id }
func (s *submissionScreen) Route() nav.Route { return nav.RouteSubmission }
func (s *submissionScreen) Busy() bool       { return s.state == stateSubmitting }

func (s *submissionScreen) Init() tea.Cmd {
	return s.picker.Init()
}

func (s *submissionScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		var cmd tea.Cmd
		s.picker, cmd = s.picker.Update(tea.WindowSizeMsg{
			Width:  msg.Width,
			Height: maxInt(msg.Height-pickerReserve, 3) + filepickerMargin,
		})
		return s, cmd

	case submitResultMsg:
		return s, s.handleSubmitResult(msg)

	case spinner.TickMsg:
		if s.state != stateSubmitting {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.state == stateSubmitting || s.state == stateSuccess {
			return s, nil
		}
		if s.state == stateFailed {
			s.state = stateIdle
			s.message = ""
		}
		switch {
		case key.Matches(msg, s.env.keys.Submit):
			return s, s.submit()
		case key.Matches(msg, s.env.keys.ShowResults):
			return s, navigateCmd(nav.Reload(nav.PathResults))
		}
	}

	var cmd tea.Cmd
	s.picker, cmd = s.picker.Update(msg)
	if ok, path := s.picker.DidSelectFile(msg); ok {
		s.selectFile(path)
	} else if ok, path := s.picker.DidSelectDisabledFile(msg); ok {
		// Extension filtering is cosmetic; the content decides.
		s.selectFile(path)
	}
	return s, cmd
}

// selectFile validates path and keeps it as the pending upload. A failed
// screen returns to idle.
func (s *submissionScreen) selectFile(path string) {
	if s.state == stateSubmitting || s.state == stateSuccess {
		return
	}
	s.state = stateIdle
	s.message = ""

	req, err := search.NewUploadRequest(path)
	if err != nil {
		s.selected = ""
		s.pending = nil
		s.message = validationMessage(err)
		s.env.logger.Info("file rejected", zap.String("path", path), zap.Error(err))
		return
	}

	s.selected = path
	s.pending = &req
	s.env.logger.Debug("file selected",
		zap.String("path", path),
		zap.String("media_type", req.MediaType),
		zap.Int("bytes", len(req.Data)),
	)
}

// submit moves Idle/Failed through Validating to Submitting, or back to Idle
// with a message when there is nothing valid to send.
func (s *submissionScreen) submit() tea.Cmd {
	switch s.state {
	case stateValidating, stateSubmitting, stateSuccess:
		return nil
	}

	s.state = stateValidating
	s.message = ""

	req := s.pending
	s.pending = nil
	if req == nil && s.selected != "" {
		rebuilt, err := search.NewUploadRequest(s.selected)
		if err != nil {
			s.state = stateIdle
			s.selected = ""
			s.message = validationMessage(err)
			s.env.logger.Info("file rejected", zap.Error(err))
			return nil
		}
		req = &rebuilt
	}
	if req == nil {
		s.state = stateIdle
		s.message = msgSelectFile
		return nil
	}

	s.state = stateSubmitting
	s.uploading = req.Filename
	s.started = time.Now()
	s.env.logger.Info("uploading image",
		zap.String("file", req.Filename),
		zap.String("media_type", req.MediaType),
		zap.Int("bytes", len(req.Data)),
	)
	return tea.Batch(s.spinner.Tick, submitCmd(s.env.ctx, s.env.client, s.id, *req))
}

func (s *submissionScreen) handleSubmitResult(msg submitResultMsg) tea.Cmd {
	if s.state != stateSubmitting {
		return nil
	}
	elapsed := time.Since(s.started)

	if msg.err != nil {
		s.state = stateFailed
		s.message = msgUploadFailed
		fields := []zap.Field{zap.Error(msg.err), zap.Duration("elapsed", elapsed)}
		if te, ok := search.AsTransport(msg.err); ok {
			fields = append(fields, zap.String("request_id", te.RequestID), zap.Int("status", te.StatusCode))
		}
		s.env.logger.Error("image upload failed", fields...)
		return nil
	}

	s.state = stateSuccess
	s.env.logger.Info("image upload succeeded",
		zap.Int("items", len(msg.results)),
		zap.Duration("elapsed", elapsed),
	)
	return navigateCmd(nav.To(nav.PathResults, nav.WithResults(msg.results)))
}

func validationMessage(err error) string {
	if errors.Is(err, search.ErrNoFile) {
		return msgSelectFile
	}
	return msgNotImage
}

func (s *submissionScreen) View(th Theme, width, height int) string {
	styles := th.Styles()

	var b strings.Builder
	b.WriteString(styles.Logo.Render(headline))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(subheadline))
	b.WriteString("\n\n")

	pickerHeight := maxInt(height-pickerReserve, 3)
	dir := s.picker.CurrentDirectory
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	title := "Select an image  " + truncateMiddle(dir, maxInt(width-24, 8))
	fp := s.picker
	fp.Styles.Cursor = styles.AccentText
	fp.Styles.Selected = styles.Selected
	b.WriteString(renderTitledBox(th, title, fp.View(), width, pickerHeight+2, !s.Busy()))
	b.WriteString("\n")

	if s.selected != "" {
		b.WriteString(styles.Text.Render("Selected: " + truncateMiddle(s.selected, maxInt(width-12, 8))))
	} else {
		b.WriteString(styles.FaintText.Render("No file selected"))
	}
	b.WriteString("\n")

	switch {
	case s.Busy():
		sp := s.spinner
		sp.Style = styles.AccentText
		b.WriteString(sp.View() + " " + styles.InfoText.Render("Uploading "+s.uploading))
	case s.message != "":
		b.WriteString(s.messageStyle(styles).Render(s.message))
	}
	return b.String()
}

// messageStyle marks upload failures as errors and rejected input as warnings.
func (s *submissionScreen) messageStyle(styles Styles) lipgloss.Style {
	if s.state == stateFailed {
		return styles.DangerText
	}
	return styles.WarningText
}

func (s *submissionScreen) Commands() []command {
	if s.Busy() {
		return nil
	}
	return []command{
		{"enter", "Choose"},
		{"s", "Upload"},
		{"r", "Latest results"},
	}
}

func (s *submissionScreen) Status() string {
	if s.state == stateIdle {
		return ""
	}
	return s.state.String()
}
