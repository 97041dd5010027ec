// Package gesture turns timestamped pointer positions into the drag calls
// an engine consumes, and composes two engines into a 2D surface.
package gesture

import (
	"math"
	"time"
)

// Sink receives a gesture one frame at a time. *engine.Engine satisfies it.
type Sink interface {
	DragStart() error
	DragUpdate(delta, velocity float64) error
	DragEnd(velocity float64) error
}

// DefaultWindow is how far back the tracker looks when estimating release
// velocity.
const DefaultWindow = 100 * time.Millisecond

const maxSamples = 32

type sample struct {
	at  time.Time
	pos float64
}

// Tracker estimates pointer velocity as distance over duration across a
// short trailing window of samples.
type Tracker struct {
	window  time.Duration
	samples [maxSamples]sample
	head    int // next write slot
	n       int
}

// NewTracker returns a tracker that averages over window. Non-positive
// window selects DefaultWindow.
func NewTracker(window time.Duration) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{window: window}
}

// Reset drops all samples and seeds the tracker with one.
func (t *Tracker) Reset(at time.Time, pos float64) {
	t.head, t.n = 0, 0
	t.push(at, pos)
}

// Add records a sample. Samples that go back in time are ignored.
func (t *Tracker) Add(at time.Time, pos float64) {
	if t.n > 0 && at.Before(t.newest().at) {
		return
	}
	t.push(at, pos)
}

func (t *Tracker) push(at time.Time, pos float64) {
	t.samples[t.head] = sample{at: at, pos: pos}
	t.head = (t.head + 1) % maxSamples
	if t.n < maxSamples {
		t.n++
	}
}

// at returns the i-th most recent sample.
func (t *Tracker) at(i int) sample {
	return t.samples[(t.head-1-i+maxSamples)%maxSamples]
}

func (t *Tracker) newest() sample { return t.at(0) }

// Velocity returns units per second at now. A pointer that has not moved
// within the window has zero velocity.
func (t *Tracker) Velocity(now time.Time) float64 {
	if t.n < 2 {
		return 0
	}
	newest := t.newest()
	if now.Sub(newest.at) > t.window {
		return 0
	}
	oldest := newest
	for i := 1; i < t.n; i++ {
		s := t.at(i)
		if newest.at.Sub(s.at) > t.window {
			break
		}
		oldest = s
	}
	dt := newest.at.Sub(oldest.at).Seconds()
	if dt <= 0 {
		return 0
	}
	v := (newest.pos - oldest.pos) / dt
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Drag adapts absolute pointer positions to a Sink's per-frame deltas.
type Drag struct {
	sink    Sink
	tracker *Tracker
	last    float64
	active  bool
}

// NewDrag binds a tracker with the given window to sink.
func NewDrag(sink Sink, window time.Duration) *Drag {
	return &Drag{sink: sink, tracker: NewTracker(window)}
}

// Active reports whether a drag is in progress.
func (d *Drag) Active() bool { return d.active }

// Begin starts a drag with the pointer at pos.
func (d *Drag) Begin(at time.Time, pos float64) error {
	if err := d.sink.DragStart(); err != nil {
		return err
	}
	d.tracker.Reset(at, pos)
	d.last = pos
	d.active = true
	return nil
}

// Move forwards the movement since the previous sample.
func (d *Drag) Move(at time.Time, pos float64) error {
	if !d.active {
		return nil
	}
	d.tracker.Add(at, pos)
	delta := pos - d.last
	d.last = pos
	return d.sink.DragUpdate(delta, d.tracker.Velocity(at))
}

// End releases the drag with the tracked velocity and returns it.
func (d *Drag) End(at time.Time) (float64, error) {
	if !d.active {
		return 0, nil
	}
	d.active = false
	v := d.tracker.Velocity(at)
	return v, d.sink.DragEnd(v)
}
