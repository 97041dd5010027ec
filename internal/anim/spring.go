package anim

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/olivier-w/snapkit/internal/snap"
)

// Model selects how a Spring integrates.
type Model int

const (
	// ModelEuler integrates F = -k·x - c·v with semi-implicit Euler.
	ModelEuler Model = iota
	// ModelAnalytic uses the closed-form damped harmonic oscillator.
	ModelAnalytic
)

// String returns the model name.
func (m Model) String() string {
	switch m {
	case ModelAnalytic:
		return "analytic"
	default:
		return "euler"
	}
}

// ParseModel converts a model name.
func ParseModel(s string) (Model, bool) {
	switch s {
	case "euler", "":
		return ModelEuler, true
	case "analytic":
		return ModelAnalytic, true
	}
	return ModelEuler, false
}

const (
	// maxSubstep keeps stiff springs stable when the host drops frames.
	maxSubstep = 4 * time.Millisecond
	// maxEulerSubsteps bounds the work per frame for very stiff or heavily
	// damped springs; beyond it the closed form takes over.
	maxEulerSubsteps = 2000

	restDisplacementRatio = 0.001
	restSpeedRatio        = 0.01
	minRestDisplacement   = 0.01
	minRestSpeed          = 0.1

	DefaultSettleFrames = 3
)

// SpringOptions tunes completion detection.
type SpringOptions struct {
	Model Model
	// SettleFrames is how many consecutive frames must satisfy both rest
	// epsilons before the spring completes.
	SettleFrames int
	// RestDisplacement and RestSpeed override the distance-derived epsilons.
	RestDisplacement float64
	RestSpeed        float64
}

// Spring converges a scalar toward a target under mass-spring dynamics.
// A Spring is reused across settles; it is not safe for concurrent use.
type Spring struct {
	opts SpringOptions

	cfg  snap.SpringConfig
	to   float64
	pos  float64
	vel  float64
	epsP float64
	epsV float64

	calm      int
	immediate bool
	running   bool
	handle    Handle
	last      Frame

	osc   harmonica.Spring
	oscDt float64
}

// NewSpring returns an idle spring.
func NewSpring(opts SpringOptions) *Spring {
	if opts.SettleFrames <= 0 {
		opts.SettleFrames = DefaultSettleFrames
	}
	return &Spring{opts: opts}
}

// Start begins a settle toward to. When the spring is already running, from
// and velocity are ignored and the in-flight position and velocity carry over,
// so retargeting never jumps.
func (s *Spring) Start(from, velocity, to float64, cfg snap.SpringConfig) Handle {
	if s.running {
		from, velocity = s.pos, s.vel
	}
	if !finite(velocity) {
		velocity = 0
	}
	if !finite(from) {
		from = to
	}

	s.cfg = cfg
	s.to = to
	s.pos = from
	s.vel = velocity
	s.calm = 0
	s.oscDt = 0

	dist := math.Abs(to - from)
	s.epsP = s.opts.RestDisplacement
	if s.epsP <= 0 {
		s.epsP = math.Max(dist*restDisplacementRatio, minRestDisplacement)
	}
	s.epsV = s.opts.RestSpeed
	if s.epsV <= 0 {
		s.epsV = math.Max(dist*restSpeedRatio, minRestSpeed)
	}

	s.immediate = from == to && velocity == 0
	s.running = true
	s.handle = nextHandle()
	s.last = Frame{Value: from, Velocity: velocity}
	return s.handle
}

// Step advances the spring by dt.
func (s *Spring) Step(dt time.Duration) Frame {
	if !s.running {
		return s.last
	}
	if s.immediate {
		return s.finish()
	}
	secs, ok := seconds(dt)
	if !ok {
		return s.last
	}

	switch s.opts.Model {
	case ModelAnalytic:
		s.stepAnalytic(secs)
	default:
		s.stepEuler(secs)
	}

	if !finite(s.pos) || !finite(s.vel) {
		return s.finish()
	}

	if math.Abs(s.pos-s.to) < s.epsP && math.Abs(s.vel) < s.epsV {
		s.calm++
	} else {
		s.calm = 0
	}
	if s.calm >= s.opts.SettleFrames {
		return s.finish()
	}

	s.last = Frame{Value: s.pos, Velocity: s.vel}
	return s.last
}

// eulerStep returns the largest substep semi-implicit Euler stays stable at
// for cfg: c·h/m and ω·h must both stay at or below 1.
func eulerStep(cfg snap.SpringConfig) float64 {
	h := maxSubstep.Seconds()
	if r := cfg.Mass / cfg.Damping; r < h {
		h = r
	}
	if r := 1 / cfg.AngularFrequency(); r < h {
		h = r
	}
	return h
}

func (s *Spring) stepEuler(secs float64) {
	n := math.Ceil(secs / eulerStep(s.cfg))
	if n > maxEulerSubsteps {
		s.stepAnalytic(secs)
		return
	}
	h := secs / n
	k, c, m := s.cfg.Stiffness, s.cfg.Damping, s.cfg.Mass
	for range int(n) {
		a := (-k*(s.pos-s.to) - c*s.vel) / m
		s.vel += a * h
		s.pos += s.vel * h
	}
}

func (s *Spring) stepAnalytic(secs float64) {
	if s.oscDt != secs {
		s.osc = harmonica.NewSpring(secs, s.cfg.AngularFrequency(), s.cfg.DampingRatio())
		s.oscDt = secs
	}
	s.pos, s.vel = s.osc.Update(s.pos, s.vel, s.to)
}

func (s *Spring) finish() Frame {
	s.pos, s.vel = s.to, 0
	s.running = false
	s.immediate = false
	s.last = Frame{Value: s.to, Done: true}
	return s.last
}

// Cancel stops the run identified by h.
func (s *Spring) Cancel(h Handle) (Frame, bool) {
	if !s.running || h != s.handle {
		return s.last, false
	}
	s.running = false
	return s.last, true
}

func (s *Spring) Handle() Handle { return s.handle }
func (s *Spring) Running() bool  { return s.running }
func (s *Spring) Last() Frame    { return s.last }

// Target returns the current settle target.
func (s *Spring) Target() float64 { return s.to }
