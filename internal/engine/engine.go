// Package engine runs the gesture lifecycle of one scalar surface: it
// follows the drag, picks a snap target on release, and drives the spring
// or decay that settles the surface one frame at a time.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/olivier-w/snapkit/internal/anim"
	"github.com/olivier-w/snapkit/internal/haptic"
	"github.com/olivier-w/snapkit/internal/snap"
)

// Option configures an Engine at construction.
type Option func(*Engine)

// WithHaptics sets the pulse capability fired on settle.
func WithHaptics(p haptic.Pulser) Option {
	return func(e *Engine) { e.pulser = p }
}

// WithReducedMotion injects the accessibility flag. It is polled each time
// an animation starts.
func WithReducedMotion(enabled func() bool) Option {
	return func(e *Engine) { e.reducedFlag = enabled }
}

// WithLogger sets the logger for phase transitions and dropped input. The
// default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithSpringModel selects the settle integrator.
func WithSpringModel(m anim.Model) Option {
	return func(e *Engine) { e.springOpts.Model = m }
}

// WithSettleFrames sets how many calm frames complete a settle.
func WithSettleFrames(n int) Option {
	return func(e *Engine) { e.springOpts.SettleFrames = n }
}

// WithListener registers fn to receive every committed state. Calls are
// made outside the engine lock in commit order; fn may read the engine but
// must not call its mutating methods.
func WithListener(fn func(State)) Option {
	return func(e *Engine) { e.listener = fn }
}

// Engine is one gesture surface. All methods are safe for concurrent use:
// gesture calls and frame steps may arrive on different goroutines.
type Engine struct {
	cfg         snap.Config
	log         *slog.Logger
	pulser      haptic.Pulser
	reducedFlag func() bool
	springOpts  anim.SpringOptions
	listener    func(State)

	coord   *haptic.Coordinator
	reduced *anim.ReducedMotion

	mu       sync.Mutex
	notifyMu sync.Mutex
	spring   *anim.Spring
	decay    *anim.Decay
	active   anim.Animator
	state    State
	disposed bool

	snapshot atomic.Pointer[State]
}

// New validates cfg and returns an idle engine resting on the first snap
// point (or 0 when there are none).
func New(cfg snap.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg: cfg.Clone(),
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.coord = haptic.NewCoordinator(e.pulser)
	e.reduced = anim.NewReducedMotion(e.reducedFlag, anim.DefaultRestSpeed)
	e.spring = anim.NewSpring(e.springOpts)
	e.decay = anim.NewDecay(anim.DefaultRestSpeed)

	var start float64
	if len(e.cfg.Points) > 0 {
		start = e.cfg.Points[0]
	}
	e.state = State{
		Position:        start,
		ActiveSnapIndex: -1,
		Phase:           Idle,
		Target:          -1,
	}
	s := e.state
	e.snapshot.Store(&s)
	return e, nil
}

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() snap.Config {
	return e.cfg.Clone()
}

// DragStart enters Dragging. An in-flight settle or decay is cancelled and
// its last emitted frame becomes the drag origin.
func (e *Engine) DragStart() error {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return ErrDisposed
	}
	if e.state.Phase == Dragging {
		e.mu.Unlock()
		return ErrAlreadyDragging
	}

	if e.active != nil {
		last := e.cancelLocked()
		e.log.Debug("interrupted", "phase", e.state.Phase, "position", last.Value, "velocity", last.Velocity)
	}
	e.coord.Arm()
	e.setPhaseLocked(Dragging)
	e.state.Target = -1
	e.unlockAndNotify(e.commitLocked())
	return nil
}

// DragUpdate applies one frame of movement. A non-finite delta is dropped
// and a non-finite velocity keeps the last good value.
func (e *Engine) DragUpdate(delta, velocity float64) error {
	e.mu.Lock()
	if err := e.requireDraggingLocked(); err != nil {
		e.mu.Unlock()
		return err
	}

	if snap.Finite(velocity) {
		e.state.Velocity = velocity
	}
	from := e.state.Position
	if snap.Finite(delta) {
		next := snap.ApplyDrag(from, delta, e.cfg)
		if snap.Finite(next) {
			e.state.Position = next
		}
	} else {
		e.log.Debug("dropped non-finite drag delta")
	}

	if e.cfg.HapticOnCrossing {
		if idx := snap.Crossed(from, e.state.Position, e.cfg); idx >= 0 {
			e.coord.Cross(idx, e.cfg.Points[idx])
		}
		e.coord.Track(e.state.Position, max(e.cfg.SnapThreshold, haptic.DefaultCrossBand))
	}
	e.state.Frame++
	e.unlockAndNotify(e.commitLocked())
	return nil
}

// DragEnd releases the drag. With snap points and an engaging release the
// surface settles on the resolved point; otherwise it decays freely.
func (e *Engine) DragEnd(velocity float64) error {
	e.mu.Lock()
	if err := e.requireDraggingLocked(); err != nil {
		e.mu.Unlock()
		return err
	}

	if !snap.Finite(velocity) {
		velocity = e.state.Velocity
	}
	pos := e.state.Position
	if len(e.cfg.Points) > 0 && e.cfg.Engages(pos, velocity) {
		idx := snap.Resolve(pos, velocity, e.state.ActiveSnapIndex, e.cfg)
		e.log.Debug("release", "position", pos, "velocity", velocity, "target", idx)
		e.startSettleLocked(idx, velocity)
	} else {
		e.log.Debug("release", "position", pos, "velocity", velocity, "target", "free")
		e.startDecayLocked(velocity)
	}
	e.unlockAndNotify(e.commitLocked())
	return nil
}

// SnapTo settles on points[index] without a gesture. A running settle is
// retargeted from its in-flight state; a running decay is cancelled first.
func (e *Engine) SnapTo(index int) error {
	e.mu.Lock()
	switch {
	case e.disposed:
		e.mu.Unlock()
		return ErrDisposed
	case len(e.cfg.Points) == 0:
		e.mu.Unlock()
		return ErrNoSnapPoints
	case index < 0 || index >= len(e.cfg.Points):
		e.mu.Unlock()
		return fmt.Errorf("%w: %d not in [0, %d)", ErrSnapIndex, index, len(e.cfg.Points))
	case e.state.Phase == Dragging:
		e.mu.Unlock()
		return ErrAlreadyDragging
	}

	velocity := e.state.Velocity
	if e.state.Phase == Decaying {
		last := e.cancelLocked()
		velocity = last.Velocity
	}
	e.coord.Arm()
	e.startSettleLocked(index, velocity)
	e.unlockAndNotify(e.commitLocked())
	return nil
}

// Step advances the active animation by dt and returns the new state.
// Outside Settling and Decaying, and for non-positive dt, it is a no-op.
func (e *Engine) Step(dt time.Duration) State {
	e.mu.Lock()
	if e.disposed || e.active == nil || dt <= 0 {
		s := e.state
		e.mu.Unlock()
		return s
	}

	f := e.active.Step(dt)
	e.state.Position = f.Value
	e.state.Velocity = f.Velocity
	e.state.Frame++
	if f.Done {
		e.active = nil
		if e.state.Phase == Settling {
			e.state.ActiveSnapIndex = e.state.Target
			e.coord.Pulse()
		}
		e.state.Velocity = 0
		e.state.Target = -1
		e.setPhaseLocked(Idle)
	}
	s := e.commitLocked()
	e.unlockAndNotify(s)
	return s
}

// Dispose cancels any in-flight animation and rejects further gestures.
// It is idempotent.
func (e *Engine) Dispose() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	if e.active != nil {
		e.cancelLocked()
	}
	e.disposed = true
	e.state.Target = -1
	e.setPhaseLocked(Idle)
	e.unlockAndNotify(e.commitLocked())
}

// State returns the latest committed snapshot without locking.
func (e *Engine) State() State { return *e.snapshot.Load() }

func (e *Engine) Position() float64    { return e.State().Position }
func (e *Engine) Velocity() float64    { return e.State().Velocity }
func (e *Engine) Phase() Phase         { return e.State().Phase }
func (e *Engine) ActiveSnapIndex() int { return e.State().ActiveSnapIndex }

// HapticsFired returns how many pulses the engine has passed to its
// haptic capability.
func (e *Engine) HapticsFired() int { return e.coord.Fired() }

func (e *Engine) requireDraggingLocked() error {
	if e.disposed {
		return ErrDisposed
	}
	if e.state.Phase != Dragging {
		return ErrNotDragging
	}
	return nil
}

func (e *Engine) startSettleLocked(index int, velocity float64) {
	to := e.cfg.Points[index]
	e.active = e.reduced.StartSpring(e.spring, e.state.Position, velocity, to, e.cfg.Spring)
	e.state.Velocity = velocity
	e.state.Target = index
	e.setPhaseLocked(Settling)
}

func (e *Engine) startDecayLocked(velocity float64) {
	e.active = e.reduced.StartDecay(e.decay, e.state.Position, velocity, e.cfg.Friction, e.cfg.DecayClamp)
	e.state.Velocity = velocity
	e.state.Target = -1
	e.setPhaseLocked(Decaying)
}

// cancelLocked stops the active animator and adopts its last frame.
func (e *Engine) cancelLocked() anim.Frame {
	last, _ := e.active.Cancel(e.active.Handle())
	e.active = nil
	e.state.Position = last.Value
	e.state.Velocity = last.Velocity
	return last
}

func (e *Engine) setPhaseLocked(p Phase) {
	if e.state.Phase == p {
		return
	}
	e.log.Debug("phase", "from", e.state.Phase, "to", p, "position", e.state.Position)
	e.state.Phase = p
}

func (e *Engine) commitLocked() State {
	s := e.state
	e.snapshot.Store(&s)
	return s
}

// unlockAndNotify releases the state lock and hands s to the listener.
// notifyMu is taken before mu is released so listener calls keep commit
// order across goroutines.
func (e *Engine) unlockAndNotify(s State) {
	if e.listener == nil {
		e.mu.Unlock()
		return
	}
	e.notifyMu.Lock()
	e.mu.Unlock()
	e.listener(s)
	e.notifyMu.Unlock()
}
