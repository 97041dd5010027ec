package ui

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/snapkit/internal/engine"
	"github.com/olivier-w/snapkit/internal/gesture"
	"github.com/olivier-w/snapkit/internal/snap"
)

const (
	flickVelocity = 1200
	pulseFlash    = 150 * time.Millisecond
)

// Model is the Bubbletea model for the interactive rail. The mouse is the
// gesture source and frame ticks drive the engine.
type Model struct {
	eng     *engine.Engine
	cfg     snap.Config
	drag    *gesture.Drag
	reduced *atomic.Bool

	interval  time.Duration
	lastFrame time.Time
	now       func() time.Time

	rail     rail
	progress progress.Model
	width    int
	quitting bool

	pulses     int
	pulseUntil time.Time
	errMsg     string
}

// New creates a Model driving e. reduced is the flag e polls for reduced
// motion; the model toggles it. fps sets the frame tick rate.
func New(e *engine.Engine, reduced *atomic.Bool, fps int) Model {
	if fps <= 0 {
		fps = engine.DefaultFPS
	}
	if reduced == nil {
		reduced = new(atomic.Bool)
	}
	p := progress.New(
		progress.WithScaledGradient("#FF8C00", "#FF5F1F"),
		progress.WithoutPercentage(),
	)
	cfg := e.Config()
	return Model{
		eng:      e,
		cfg:      cfg,
		drag:     gesture.NewDrag(e, gesture.DefaultWindow),
		reduced:  reduced,
		interval: time.Second / time.Duration(fps),
		now:      time.Now,
		rail:     newRail(cfg, 0),
		progress: p,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(frameCmd(m.interval), tea.SetWindowTitle("snapkit"))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isQuit(msg) {
			m.quitting = true
			m.eng.Dispose()
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
		if i, ok := snapKey(msg); ok {
			m.setErr(m.eng.SnapTo(i))
			return m, nil
		}
		switch msg.String() {
		case "m":
			m.reduced.Store(!m.reduced.Load())
		case "h", "left":
			m.flick(-flickVelocity)
		case "l", "right":
			m.flick(flickVelocity)
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case frameMsg:
		t := time.Time(msg)
		dt := m.interval
		if !m.lastFrame.IsZero() {
			dt = t.Sub(m.lastFrame)
		}
		m.lastFrame = t
		m.eng.Step(dt)
		if n := m.eng.HapticsFired(); n != m.pulses {
			m.pulses = n
			m.pulseUntil = t.Add(pulseFlash)
		}
		return m, frameCmd(m.interval)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.rail = newRail(m.cfg, msg.Width)
		barWidth := msg.Width - 2*railLeft
		if barWidth < minRailWidth {
			barWidth = minRailWidth
		}
		m.progress.Width = barWidth
		return m, nil
	}

	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	pos := m.rail.position(msg.X)
	now := m.now()
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || m.drag.Active() {
			return m
		}
		m.setErr(m.drag.Begin(now, pos))
	case tea.MouseActionMotion:
		m.setErr(m.drag.Move(now, pos))
	case tea.MouseActionRelease:
		_, err := m.drag.End(now)
		m.setErr(err)
	}
	return m
}

// flick releases a zero-length drag with velocity, as a keyboard stand-in
// for a fast swipe.
func (m *Model) flick(velocity float64) {
	if m.drag.Active() {
		return
	}
	if err := m.eng.DragStart(); err != nil {
		m.setErr(err)
		return
	}
	m.setErr(m.eng.DragEnd(velocity))
}

func (m *Model) setErr(err error) {
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	s := m.eng.State()

	header := headerStyle.Render(fmt.Sprintf("snapkit  %s axis", m.cfg.Axis))
	railLine := m.rail.render(m.cfg.Points, s.ActiveSnapIndex, s.Position)
	labels := statusStyle.Render(m.rail.labels(m.cfg.Points))

	pct := 0.0
	if b, ok := m.cfg.DragBounds(); ok && b.Span() > 0 {
		pct = snap.Interpolate(s.Position, []float64{b.Min, b.Max}, []float64{0, 1}, snap.ExtrapolateClamp)
	}
	bar := m.progress.ViewAs(pct)

	status := statusLine(s, m.reduced.Load())
	if m.lastFrame.Before(m.pulseUntil) {
		status += "  " + pulseStyle.Render("● pulse")
	}

	lines := "\n"
	lines += "  " + header + "\n"
	lines += "\n"
	lines += "  " + railLine + "\n"
	lines += "  " + labels + "\n"
	lines += "\n"
	lines += "  " + bar + "\n"
	lines += "\n"
	lines += "  " + statusStyle.Render(status) + "\n"
	if m.errMsg != "" {
		lines += "  " + helpStyle.Render(m.errMsg) + "\n"
	}
	lines += "\n"
	lines += "  " + helpStyle.Render(helpText(len(m.cfg.Points), m.reduced.Load())) + "\n"
	return lines
}

func statusLine(s engine.State, reduced bool) string {
	active := "-"
	if s.ActiveSnapIndex >= 0 {
		active = fmt.Sprint(s.ActiveSnapIndex + 1)
	}
	line := fmt.Sprintf("%-8s  pos %7.1f  vel %7.1f  snap %s", s.Phase, s.Position, roundVelocity(s.Velocity), active)
	if reduced {
		line += "  [reduced motion]"
	}
	return line
}

// roundVelocity hides sub-unit jitter as the integrators come to rest.
func roundVelocity(v float64) float64 {
	if math.Abs(v) < 0.05 {
		return 0
	}
	return v
}
