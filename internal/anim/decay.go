package anim

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/olivier-w/snapkit/internal/snap"
)

// DefaultRestSpeed is the speed, in units per second, below which a decay stops.
const DefaultRestSpeed = 1.0

// Decay evolves a scalar under exponentially decaying velocity, stopping
// naturally or on contact with a clamp bound. It never bounces.
type Decay struct {
	restSpeed float64

	pos      float64
	vel      float64
	friction float64
	clamp    *snap.Bounds

	immediate bool
	running   bool
	handle    Handle
	last      Frame
}

// NewDecay returns an idle decay. restSpeed <= 0 selects DefaultRestSpeed.
func NewDecay(restSpeed float64) *Decay {
	if restSpeed <= 0 {
		restSpeed = DefaultRestSpeed
	}
	return &Decay{restSpeed: restSpeed}
}

// Start begins a decay from from with the given velocity. friction is the
// velocity retained per 60 Hz frame. A start outside clamp pins to the
// nearest bound and completes on the first frame.
func (d *Decay) Start(from, velocity, friction float64, clamp *snap.Bounds) Handle {
	if d.running {
		from, velocity = d.pos, d.vel
	}
	if !finite(velocity) {
		velocity = 0
	}
	d.friction = friction
	d.clamp = nil
	if clamp != nil {
		c := *clamp
		d.clamp = &c
	}

	d.immediate = math.Abs(velocity) < d.restSpeed
	if d.clamp != nil && !d.clamp.Contains(from) {
		from = mgl64.Clamp(from, d.clamp.Min, d.clamp.Max)
		velocity = 0
		d.immediate = true
	}

	d.pos = from
	d.vel = velocity
	d.running = true
	d.handle = nextHandle()
	d.last = Frame{Value: from, Velocity: velocity}
	return d.handle
}

// Step advances the decay by dt.
func (d *Decay) Step(dt time.Duration) Frame {
	if !d.running {
		return d.last
	}
	if d.immediate {
		return d.finish()
	}
	secs, ok := seconds(dt)
	if !ok {
		return d.last
	}

	d.vel *= math.Pow(d.friction, secs*frameRate)
	d.pos += d.vel * secs

	if d.clamp != nil {
		if d.pos >= d.clamp.Max {
			d.pos = d.clamp.Max
			return d.finish()
		}
		if d.pos <= d.clamp.Min {
			d.pos = d.clamp.Min
			return d.finish()
		}
	}
	if !finite(d.pos) {
		d.pos = d.last.Value
		return d.finish()
	}
	if math.Abs(d.vel) < d.restSpeed {
		return d.finish()
	}

	d.last = Frame{Value: d.pos, Velocity: d.vel}
	return d.last
}

func (d *Decay) finish() Frame {
	d.vel = 0
	d.running = false
	d.immediate = false
	d.last = Frame{Value: d.pos, Done: true}
	return d.last
}

// Cancel stops the run identified by h.
func (d *Decay) Cancel(h Handle) (Frame, bool) {
	if !d.running || h != d.handle {
		return d.last, false
	}
	d.running = false
	return d.last, true
}

func (d *Decay) Handle() Handle { return d.handle }
func (d *Decay) Running() bool  { return d.running }
func (d *Decay) Last() Frame    { return d.last }

// DecayRest projects where a decay started with these arguments comes to
// rest, using the continuous-time limit of the per-frame integrator.
func DecayRest(from, velocity, friction float64, clamp *snap.Bounds, restSpeed float64) float64 {
	if restSpeed <= 0 {
		restSpeed = DefaultRestSpeed
	}
	rest := from
	speed := math.Abs(velocity)
	if finite(velocity) && speed >= restSpeed && friction > 0 && friction < 1 {
		lambda := -frameRate * math.Log(friction)
		travel := (speed - restSpeed) / lambda
		rest += math.Copysign(travel, velocity)
	}
	if clamp != nil {
		rest = mgl64.Clamp(rest, clamp.Min, clamp.Max)
	}
	return rest
}
