package app

import (
	"time"

	"bubble-level.klederson.com/internal/canvas"
	"bubble-level.klederson.com/internal/config"
	"bubble-level.klederson.com/internal/level"
	"bubble-level.klederson.com/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
)

// shared holds state shared between the Bubble Tea model copies and main.go.
// Because Bubble Tea uses value receivers, pointer fields ensure all copies
// see the same underlying data.
type shared struct {
	indicator *level.Indicator
	surface   *canvas.Surface
	frames    chan struct{}
	history   *HistoryRing
	meter     *FrameMeter
}

// AppModel is the root Bubble Tea model for the level.
type AppModel struct {
	width  int
	height int

	source string
	fps    int
	paused bool
	err    error

	shared *shared

	// Cached snapshot
	snap level.Snapshot
}

// New creates a new AppModel drawing ind into a terminal surface at fps.
func New(ind *level.Indicator, source string, fps int) AppModel {
	return AppModel{
		source: source,
		fps:    fps,
		shared: &shared{
			indicator: ind,
			frames:    make(chan struct{}, 1),
			history:   NewHistoryRing(config.HistorySize),
			meter:     NewFrameMeter(config.FPSWindow),
		},
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		waitForFrame(m.shared.frames),
	)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeSurface()
		m.snap = m.shared.indicator.Snapshot()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		m.snap = m.shared.indicator.Snapshot()
		if m.snap.Ready && !m.paused {
			m.shared.history.Push(m.snap.Offset().Len())
		}
		return m, tickCmd()

	case FrameMsg:
		m.shared.meter.Mark(time.Now())
		return m, waitForFrame(m.shared.frames)
	}

	return m, nil
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		m.Shutdown()
		return m, tea.Quit

	case "s", "S":
		if m.paused {
			m.paused = false
			m.err = m.shared.indicator.Resume()
		}

	case "p", "P":
		if !m.paused {
			m.paused = true
			m.shared.indicator.Pause()
		}
	}

	m.snap = m.shared.indicator.Snapshot()
	return m, nil
}

// resizeSurface replaces the surface when the drawable cell size changes:
// the old one is destroyed before the new one is created.
func (m *AppModel) resizeSurface() {
	levelW, _, bodyH := ui.PanelSizes(m.width, m.height)
	cols, rows := ui.SurfaceCells(levelW, bodyH)

	if s := m.shared.surface; s != nil {
		if c, r := s.Cells(); c == cols && r == rows {
			w, h := s.Size()
			m.shared.indicator.SurfaceChanged(w, h)
			return
		}
		m.destroySurface()
	}
	if cols <= 0 || rows <= 0 {
		return
	}

	frames := m.shared.frames
	s := canvas.NewSurface(cols, rows, m.fps, func() {
		select {
		case frames <- struct{}{}:
		default:
		}
	})
	m.shared.surface = s
	m.shared.meter.Reset()
	m.shared.history.Clear()
	m.err = m.shared.indicator.SurfaceCreated(s)
	if m.err != nil {
		log.Error().Err(m.err).Str("source", m.source).Msg("source subscribe failed")
	}
}

func (m *AppModel) destroySurface() {
	s := m.shared.surface
	if s == nil {
		return
	}
	m.shared.indicator.SurfaceDestroyed()
	s.Release()
	m.shared.surface = nil
}

// Shutdown tears down the surface and its subscription. Safe to call more
// than once and from any model copy.
func (m AppModel) Shutdown() {
	m.destroySurface()
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing level..."
	}

	levelW, readoutW, bodyH := ui.PanelSizes(m.width, m.height)

	menuBar := ui.RenderMenuBar(m.width, m.source, m.paused)

	frame := ""
	if s := m.shared.surface; s != nil {
		frame = s.View()
	}
	levelPanel := ui.RenderLevelPanel(levelW, bodyH, frame, m.snap.Level)
	readout := ui.RenderReadout(m.snap, m.shared.history.Values(), readoutW, bodyH)

	statusBar := ui.RenderStatusBar(m.width, ui.StatusInfo{
		Paused:  m.paused,
		Samples: m.snap.Samples,
		Ignored: m.snap.Ignored,
		Frames:  m.snap.Loop.Frames,
		Dropped: m.snap.Loop.Dropped,
		FPS:     m.shared.meter.FPS(time.Now()),
		Err:     m.err,
	})

	return ui.ComposeLayout(menuBar, levelPanel, readout, statusBar)
}

func tickCmd() tea.Cmd {
	return tea.Tick(config.HistoryTick, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// waitForFrame turns the next surface post into a FrameMsg. Posts that
// arrive while one is pending are coalesced.
func waitForFrame(frames <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-frames
		return FrameMsg{}
	}
}
