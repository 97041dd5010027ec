package gesture

import (
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/olivier-w/snapkit/internal/engine"
)

// Pair moves a 2D surface with one engine per axis. The axes snap
// independently; Pair only fans calls out and joins results.
type Pair struct {
	X, Y *engine.Engine
}

// NewPair builds engines for the horizontal and vertical configurations.
func NewPair(x, y *engine.Engine) *Pair {
	return &Pair{X: x, Y: y}
}

// DragStart starts both axes or neither. When Y refuses, X is released with
// zero velocity so it settles instead of staying in Dragging.
func (p *Pair) DragStart() error {
	if err := p.X.DragStart(); err != nil {
		return err
	}
	if err := p.Y.DragStart(); err != nil {
		return errors.Join(err, p.X.DragEnd(0))
	}
	return nil
}

func (p *Pair) DragUpdate(delta, velocity mgl64.Vec2) error {
	return errors.Join(
		p.X.DragUpdate(delta.X(), velocity.X()),
		p.Y.DragUpdate(delta.Y(), velocity.Y()),
	)
}

func (p *Pair) DragEnd(velocity mgl64.Vec2) error {
	return errors.Join(p.X.DragEnd(velocity.X()), p.Y.DragEnd(velocity.Y()))
}

// Step advances both axes by dt.
func (p *Pair) Step(dt time.Duration) (x, y engine.State) {
	return p.X.Step(dt), p.Y.Step(dt)
}

func (p *Pair) Position() mgl64.Vec2 {
	return mgl64.Vec2{p.X.Position(), p.Y.Position()}
}

func (p *Pair) Velocity() mgl64.Vec2 {
	return mgl64.Vec2{p.X.Velocity(), p.Y.Velocity()}
}

// Idle reports whether both axes are at rest.
func (p *Pair) Idle() bool {
	return p.X.Phase() == engine.Idle && p.Y.Phase() == engine.Idle
}

// Dispose disposes both axes.
func (p *Pair) Dispose() {
	p.X.Dispose()
	p.Y.Dispose()
}

// Drag2D adapts absolute 2D pointer positions to a Pair.
type Drag2D struct {
	pair   *Pair
	x, y   *Tracker
	last   mgl64.Vec2
	active bool
}

func NewDrag2D(p *Pair, window time.Duration) *Drag2D {
	return &Drag2D{pair: p, x: NewTracker(window), y: NewTracker(window)}
}

func (d *Drag2D) Begin(at time.Time, pos mgl64.Vec2) error {
	if err := d.pair.DragStart(); err != nil {
		return err
	}
	d.x.Reset(at, pos.X())
	d.y.Reset(at, pos.Y())
	d.last = pos
	d.active = true
	return nil
}

func (d *Drag2D) Move(at time.Time, pos mgl64.Vec2) error {
	if !d.active {
		return nil
	}
	d.x.Add(at, pos.X())
	d.y.Add(at, pos.Y())
	delta := pos.Sub(d.last)
	d.last = pos
	return d.pair.DragUpdate(delta, d.velocity(at))
}

func (d *Drag2D) End(at time.Time) (mgl64.Vec2, error) {
	if !d.active {
		return mgl64.Vec2{}, nil
	}
	d.active = false
	v := d.velocity(at)
	return v, d.pair.DragEnd(v)
}

func (d *Drag2D) velocity(at time.Time) mgl64.Vec2 {
	return mgl64.Vec2{d.x.Velocity(at), d.y.Velocity(at)}
}
