// Package tui provides the interactive Bubble Tea session browser for sessum.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/sessum/internal/config"
	"github.com/theirongolddev/sessum/internal/pipeline"
	"github.com/theirongolddev/sessum/internal/summary"
	"github.com/theirongolddev/sessum/internal/tui/theme"
)

// sessionsLoadedMsg is sent when the listing pipeline finishes.
type sessionsLoadedMsg struct {
	result   *pipeline.LoadResult
	loadTime time.Duration
	err      error
}

// progressMsg reports transcript scanning progress.
type progressMsg struct {
	current int
	total   int
}

// summaryDoneMsg is sent when a background summary generation completes.
// seq ties the result to the generation that produced it so results from
// a cancelled run are discarded.
type summaryDoneMsg struct {
	seq int
	rec *summary.Record
	err error
}

// extractDoneMsg is sent when a message-log extraction completes.
type extractDoneMsg struct {
	dest  string
	count int
	err   error
}

// App is the root Bubble Tea model for the session browser.
type App struct {
	cfg         config.Config
	sessionsDir string
	svc         *summary.Service

	// Data
	sessions []pipeline.Detail
	loaded   bool
	loadTime time.Duration
	loadErr  error

	// List state
	cursor int
	offset int

	// UI state
	width  int
	height int
	status string

	// Loading — channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg

	// Summary viewer
	viewing   bool
	viewTitle string
	viewport  viewport.Model

	// In-flight generation. Only one summary runs at a time; genSeq
	// invalidates results that arrive after a cancel.
	generating bool
	genCancel  context.CancelFunc
	genSeq     int

	// Extract form
	extractForm *huh.Form
	extractVals extractValues
	extractPath string
}

const (
	minTerminalWidth = 60

	// List chrome: title (2), column header (1), status bar (1), margin (1)
	listOverhead = 5
)

// NewApp creates the browser model. svc may carry a nil completion client;
// generation then fails with a status message while browsing still works.
func NewApp(cfg config.Config, svc *summary.Service, sessionsDir string) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	return App{
		cfg:         cfg,
		sessionsDir: sessionsDir,
		svc:         svc,
		spinner:     sp,
		loadSub:     make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		loadSessionsCmd(a.sessionsDir, a.loadSub),
		a.spinner.Tick,
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.viewport.Width = msg.Width
		a.viewport.Height = viewerHeight(msg.Height)
		if a.extractForm != nil {
			a.extractForm = a.extractForm.WithWidth(msg.Width)
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKeys(msg)

	case sessionsLoadedMsg:
		a.loaded = true
		a.loadTime = msg.loadTime
		a.loadErr = msg.err
		if msg.result != nil {
			a.sessions = msg.result.Sessions
		}
		if msg.err != nil {
			a.status = "load failed: " + msg.err.Error()
		} else {
			a.status = ""
		}
		a.clampCursor()
		return a, nil

	case progressMsg:
		a.progress = msg.current
		a.progressMax = msg.total
		return a, waitForLoadMsg(a.loadSub)

	case summaryDoneMsg:
		if msg.seq != a.genSeq {
			return a, nil // result from a cancelled run
		}
		a.generating = false
		a.genCancel = nil
		switch {
		case msg.err != nil && errors.Is(msg.err, context.Canceled):
			a.status = "generation cancelled"
		case msg.err != nil:
			a.status = "summarize failed: " + msg.err.Error()
		default:
			if msg.rec.Cached {
				a.status = "summary loaded from cache"
			} else {
				a.status = "summary generated"
			}
			a.openViewer("Summary", msg.rec.Body)
		}
		return a, nil

	case extractDoneMsg:
		if msg.err != nil {
			a.status = "extract failed: " + msg.err.Error()
		} else {
			a.status = fmt.Sprintf("wrote %d messages to %s", msg.count, msg.dest)
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.generating {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the extract form (cursor blinks, etc.)
	if a.extractForm != nil {
		return a.updateExtractForm(msg)
	}

	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		if a.genCancel != nil {
			a.genCancel()
		}
		return a, tea.Quit
	}

	if !a.loaded {
		return a, nil
	}

	// Extract form intercepts all keys while open
	if a.extractForm != nil {
		return a.updateExtractForm(msg)
	}

	// Summary viewer has its own keybindings
	if a.viewing {
		switch key {
		case "q", "esc", "v":
			a.viewing = false
			return a, nil
		default:
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			return a, cmd
		}
	}

	switch key {
	case "q", "esc":
		if a.genCancel != nil {
			a.genCancel()
		}
		return a, tea.Quit

	case "j", "down":
		if a.cursor < len(a.sessions)-1 {
			a.cursor++
		}
		return a, nil
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case "pgdown":
		a.cursor += a.visibleRows()
		a.clampCursor()
		return a, nil
	case "pgup":
		a.cursor -= a.visibleRows()
		a.clampCursor()
		return a, nil
	case "home", "g":
		a.cursor = 0
		a.offset = 0
		return a, nil
	case "end", "G":
		a.cursor = len(a.sessions) - 1
		a.clampCursor()
		return a, nil

	case "enter":
		return a.openExtractForm()

	case "s":
		return a.startGeneration(false)
	case "r":
		return a.startGeneration(true)
	case "x":
		if a.genCancel != nil {
			a.genCancel()
			a.genCancel = nil
			a.generating = false
			a.genSeq++ // discard the in-flight result when it lands
			a.status = "generation cancelled"
		}
		return a, nil

	case "v":
		return a.viewCached()
	}

	return a, nil
}

func (a *App) clampCursor() {
	if a.cursor >= len(a.sessions) {
		a.cursor = len(a.sessions) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a App) visibleRows() int {
	rows := a.height - listOverhead
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (a App) selected() (pipeline.Detail, bool) {
	if a.cursor < 0 || a.cursor >= len(a.sessions) {
		return pipeline.Detail{}, false
	}
	return a.sessions[a.cursor], true
}

func (a *App) openViewer(title, body string) {
	a.viewTitle = title
	a.viewport = viewport.New(a.width, viewerHeight(a.height))
	a.viewport.SetContent(body)
	a.viewing = true
}

func viewerHeight(h int) int {
	vh := h - 3 // title (2) + status bar (1)
	if vh < 1 {
		vh = 1
	}
	return vh
}

// loadSessionsCmd starts the listing pipeline in a background goroutine.
// It streams progressMsg updates and a final sessionsLoadedMsg through sub.
func loadSessionsCmd(sessionsDir string, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so workers aren't stalled. A skipped
			// update is caught up by the next one.
			progressFn := func(current, total int) {
				select {
				case sub <- progressMsg{current: current, total: total}:
				default:
				}
			}

			idx := pipeline.OpenIndex(config.IndexPath())
			result, err := pipeline.Load(sessionsDir, idx, progressFn)
			pipeline.CloseIndex(idx)

			sub <- sessionsLoadedMsg{
				result:   result,
				loadTime: time.Since(start),
				err:      err,
			}
		}()

		// Block until the first message (either progress or completion)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}
