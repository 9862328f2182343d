// Package tui renders a graph view in the terminal with bubbletea. The
// terminal grid is the drawing surface and mouse input drives the
// interaction controller.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/synapse/internal/store"
	"github.com/recera/synapse/pkg/graphview"
)

const (
	panelWidth     = 34
	minPanelLayout = 80 // narrower terminals hide the side panel
	thresholdStep  = 0.1
	fitPadding     = 2 * CellWidth
)

// Recorder receives per-frame measurements
type Recorder interface {
	RecordFrame(host, session string, s *graphview.Session, d time.Duration)
}

// Options configures the terminal view
type Options struct {
	Title    string
	FPS      int
	Recorder Recorder
}

// Model is the bubbletea model wrapping one graph session
type Model struct {
	view   *graphview.Session
	canvas *Canvas
	opts   Options

	// Window dimensions in cells
	width  int
	height int

	search    textinput.Model
	searching bool

	help     help.Model
	keys     KeyMap
	showHelp bool

	status   string
	quitting bool
}

// Messages
type tickMsg time.Time

// ReloadMsg replaces the graph, keeping positions of surviving nodes
type ReloadMsg struct {
	Nodes       []*graphview.Node
	Connections []graphview.Connection
}

// ErrorMsg shows an error in the status line
type ErrorMsg struct{ Err error }

// NewModel creates a model around view
func NewModel(view *graphview.Session, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Title == "" {
		opts.Title = "synapse"
	}

	search := textinput.New()
	search.Placeholder = "search labels"
	search.Prompt = "/ "
	search.CharLimit = 64
	search.Width = panelWidth - 6

	return Model{
		view:   view,
		canvas: NewCanvas(0, 0, view.Renderer().Palette().Background),
		opts:   opts,
		search: search,
		help:   help.New(),
		keys:   DefaultKeyMap,
	}
}

// NewProgram creates the bubbletea program. All motion is reported so
// hovering works without a button held.
func NewProgram(m Model) *tea.Program {
	return tea.NewProgram(m, programOptions()...)
}

func programOptions() []tea.ProgramOption {
	return []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseAllMotion()}
}

// Session returns the wrapped session
func (m Model) Session() *graphview.Session { return m.view }

// Init starts the frame ticker
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		// nothing is placed until the window size is known
		if m.width == 0 {
			return m, m.tick()
		}
		start := time.Now()
		m.view.Step(m.canvas)
		if m.opts.Recorder != nil {
			m.opts.Recorder.RecordFrame("tui", m.opts.Title, m.view, time.Since(start))
		}
		return m, m.tick()

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReloadMsg:
		merged, added := store.Merge(m.view.Nodes(), msg.Nodes)
		m.view.SetGraph(merged, msg.Connections)
		if added > 0 {
			m.view.Engine().Energize()
		}
		m.status = "graph reloaded"
		return m, nil

	case ErrorMsg:
		m.status = "error: " + msg.Err.Error()
		return m, nil
	}
	return m, nil
}

// canvasSize returns the canvas grid size for a window
func canvasSize(width, height int) (cols, rows int) {
	cols = width
	if width >= minPanelLayout {
		cols = width - panelWidth
	}
	rows = height - 2 // status and help lines
	return max(cols, 0), max(rows, 0)
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	cols, rows := canvasSize(width, height)
	m.canvas.Resize(cols, rows)
	w, h := m.canvas.PixelSize()
	m.view.Resize(w, h)
	m.help.Width = width
}

// cellPoint maps a terminal cell to the pixel at its center
func cellPoint(col, row int) graphview.Point {
	return graphview.Point{
		X: float64(col*CellWidth) + CellWidth/2,
		Y: float64(row*CellHeight) + CellHeight/2,
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	cols, rows := canvasSize(m.width, m.height)
	inside := msg.X < cols && msg.Y < rows
	p := cellPoint(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			if inside {
				m.view.PointerDown(p)
			}
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
			var mods graphview.Modifier
			if msg.Ctrl {
				mods |= graphview.ModCtrl
			}
			delta := 1.0
			if msg.Button == tea.MouseButtonWheelUp {
				delta = -1
			}
			m.view.Wheel(delta, mods)
		}
	case tea.MouseActionMotion:
		if inside {
			m.view.PointerMove(p)
		} else {
			m.view.PointerLeave()
		}
	case tea.MouseActionRelease:
		m.view.PointerUp()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			m.searching = false
			m.search.Blur()
			if msg.Type == tea.KeyEsc {
				m.search.SetValue("")
				m.view.SetSearch("")
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.view.SetSearch(m.search.Value())
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Reset):
		m.view.ResetView()
	case key.Matches(msg, m.keys.Fit):
		m.view.FitGraph(fitPadding)
	case key.Matches(msg, m.keys.Close):
		m.view.ClosePopup()
	case key.Matches(msg, m.keys.Activate):
		m.activateSelected()
	case key.Matches(msg, m.keys.FewerLinks):
		m.view.SetThreshold(m.view.Threshold() + thresholdStep)
	case key.Matches(msg, m.keys.MoreLinks):
		m.view.SetThreshold(m.view.Threshold() - thresholdStep)
	case key.Matches(msg, m.keys.ZoomIn):
		m.view.ZoomIn()
	case key.Matches(msg, m.keys.ZoomOut):
		m.view.ZoomOut()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	}
	return m, nil
}

// activateSelected double-clicks the selected node where it is drawn
func (m *Model) activateSelected() {
	n := m.view.Node(m.view.Selected())
	if n == nil || !n.Placed() {
		return
	}
	p := graphview.ToScreen(graphview.Point{X: n.X, Y: n.Y}, m.view.Controller().Camera())
	m.view.DoubleClick(p)
}
