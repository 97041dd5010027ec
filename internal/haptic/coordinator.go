package haptic

import (
	"math"
	"sync"
)

// DefaultCrossBand is the distance a drag must move away from a crossed
// point before crossing it again pulses.
const DefaultCrossBand = 2.0

// Coordinator debounces pulses so each settle fires at most once, however
// many completion frames report it. A settle pulse is armed by Arm (the
// engine calls it on every drag start) and consumed by the first Pulse.
type Coordinator struct {
	mu    sync.Mutex
	out   Pulser
	armed bool
	fired int

	// latch is the last crossed point index, -1 when released.
	latch      int
	latchPoint float64
}

// NewCoordinator wraps out. A nil out discards pulses.
func NewCoordinator(out Pulser) *Coordinator {
	if out == nil {
		out = Nop{}
	}
	return &Coordinator{out: out, latch: -1}
}

// Arm allows the next settle pulse and releases the crossing latch.
func (c *Coordinator) Arm() {
	c.mu.Lock()
	c.armed = true
	c.latch = -1
	c.mu.Unlock()
}

// Pulse fires once per armed settle. It reports whether the pulse fired.
func (c *Coordinator) Pulse() bool {
	c.mu.Lock()
	if !c.armed {
		c.mu.Unlock()
		return false
	}
	c.armed = false
	c.fired++
	c.mu.Unlock()

	c.out.Pulse()
	return true
}

// Cross fires when a drag crosses the snap point at index, located at point.
// The point then stays latched: crossing it again is quiet until Track sees
// the drag leave its band.
func (c *Coordinator) Cross(index int, point float64) bool {
	if index < 0 {
		return false
	}
	c.mu.Lock()
	if index == c.latch {
		c.mu.Unlock()
		return false
	}
	c.latch = index
	c.latchPoint = point
	c.fired++
	c.mu.Unlock()

	c.out.Pulse()
	return true
}

// Track releases the crossing latch once pos is more than band away from the
// latched point.
func (c *Coordinator) Track(pos, band float64) {
	c.mu.Lock()
	if c.latch >= 0 && math.Abs(pos-c.latchPoint) > band {
		c.latch = -1
	}
	c.mu.Unlock()
}

// Fired returns the number of pulses passed through.
func (c *Coordinator) Fired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fired
}
