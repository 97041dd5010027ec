package anim

import (
	"time"

	"github.com/olivier-w/snapkit/internal/snap"
)

// Jump is the zero-motion animator: its first frame is the terminal value
// and it completes immediately.
type Jump struct {
	to      float64
	running bool
	handle  Handle
	last    Frame
}

// Start arms the jump toward to.
func (j *Jump) Start(from, to float64) Handle {
	j.to = to
	j.running = true
	j.handle = nextHandle()
	j.last = Frame{Value: from}
	return j.handle
}

// Step emits the terminal value and completes, regardless of dt.
func (j *Jump) Step(time.Duration) Frame {
	if !j.running {
		return j.last
	}
	j.running = false
	j.last = Frame{Value: j.to, Done: true}
	return j.last
}

// Cancel stops the run identified by h.
func (j *Jump) Cancel(h Handle) (Frame, bool) {
	if !j.running || h != j.handle {
		return j.last, false
	}
	j.running = false
	return j.last, true
}

func (j *Jump) Handle() Handle { return j.handle }
func (j *Jump) Running() bool  { return j.running }
func (j *Jump) Last() Frame    { return j.last }

// ReducedMotion decides at each start whether a settle or decay animates or
// collapses into a Jump. The flag is polled on every start, never cached.
type ReducedMotion struct {
	enabled   func() bool
	restSpeed float64
	jump      Jump
}

// NewReducedMotion wraps the injected accessibility flag. A nil flag never
// reduces motion.
func NewReducedMotion(enabled func() bool, restSpeed float64) *ReducedMotion {
	return &ReducedMotion{enabled: enabled, restSpeed: restSpeed}
}

// Active polls the flag.
func (r *ReducedMotion) Active() bool {
	return r != nil && r.enabled != nil && r.enabled()
}

// StartSpring starts s, or a jump to the same target when motion is reduced.
func (r *ReducedMotion) StartSpring(s *Spring, from, velocity, to float64, cfg snap.SpringConfig) Animator {
	if r.Active() {
		if s.Running() {
			last, _ := s.Cancel(s.Handle())
			from = last.Value
		}
		r.jump.Start(from, to)
		return &r.jump
	}
	s.Start(from, velocity, to, cfg)
	return s
}

// StartDecay starts d, or a jump to its projected resting point when motion
// is reduced.
func (r *ReducedMotion) StartDecay(d *Decay, from, velocity, friction float64, clamp *snap.Bounds) Animator {
	if r.Active() {
		r.jump.Start(from, DecayRest(from, velocity, friction, clamp, r.restSpeed))
		return &r.jump
	}
	d.Start(from, velocity, friction, clamp)
	return d
}
