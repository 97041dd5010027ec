package snap

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid snap configuration")

// Axis names the screen axis an engine moves along. The engine itself is 1-D.
type Axis int

const (
	AxisY Axis = iota
	AxisX
)

// String returns the axis name.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	default:
		return "y"
	}
}

// ParseAxis converts "x" or "y" to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y", "":
		return AxisY, nil
	default:
		return AxisY, fmt.Errorf("%w: unknown axis %q", ErrInvalidConfig, s)
	}
}

// Bounds is a closed interval [Min, Max].
type Bounds struct {
	Min float64
	Max float64
}

// Contains reports whether v lies inside the interval.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Span returns Max - Min.
func (b Bounds) Span() float64 {
	return b.Max - b.Min
}

func (b Bounds) validate(name string) error {
	if !Finite(b.Min) || !Finite(b.Max) {
		return fmt.Errorf("%w: %s must be finite", ErrInvalidConfig, name)
	}
	if b.Min > b.Max {
		return fmt.Errorf("%w: %s min %g > max %g", ErrInvalidConfig, name, b.Min, b.Max)
	}
	return nil
}

const (
	DefaultVelocityThreshold = 500
	DefaultFriction          = 0.95
	DefaultReferenceSpan     = 100
)

// Config describes one gesture surface. It is treated as immutable once an
// engine has been built from it.
type Config struct {
	// Points are the candidate settle targets, strictly ascending.
	Points []float64

	SnapThreshold     float64
	VelocityThreshold float64
	Spring            SpringConfig

	// Resistance is the rubber-band factor for out-of-bounds drag:
	// 0 stops exactly at the bound, 1 is unresisted.
	Resistance float64
	Axis       Axis

	// Bounds overrides the drag bounds derived from Points.
	Bounds *Bounds
	// ReferenceSpan scales the resistance exponent. Zero derives it from the bounds.
	ReferenceSpan float64
	// MaxOverdrag caps travel past a bound. Zero means uncapped.
	MaxOverdrag float64

	// Friction is the per-frame (60 Hz normalized) velocity retention for free decay.
	Friction float64
	// DecayClamp bounds free decay. Nil leaves decay unclamped.
	DecayClamp *Bounds

	// EngageVelocity turns releases at or above this speed into free flicks.
	// Zero disables the check.
	EngageVelocity float64
	// EngageRange turns releases outside it into free flicks. Nil engages everywhere.
	EngageRange *Bounds

	// HapticOnCrossing pulses whenever a drag crosses a snap point.
	HapticOnCrossing bool
}

// DefaultConfig returns a three-point configuration with the standard spring.
func DefaultConfig() Config {
	return Config{
		Points:            []float64{0, 100, 200},
		SnapThreshold:     1,
		VelocityThreshold: DefaultVelocityThreshold,
		Spring:            Standard,
		Resistance:        0.55,
		Axis:              AxisY,
		Friction:          DefaultFriction,
	}
}

// Validate checks the configuration once. It never coerces a bad value.
func (c Config) Validate() error {
	for i, p := range c.Points {
		if !Finite(p) {
			return fmt.Errorf("%w: point %d is not finite", ErrInvalidConfig, i)
		}
		if i > 0 && p <= c.Points[i-1] {
			return fmt.Errorf("%w: points must be strictly ascending (point %d = %g after %g)", ErrInvalidConfig, i, p, c.Points[i-1])
		}
	}
	if !Finite(c.SnapThreshold) || c.SnapThreshold < 0 {
		return fmt.Errorf("%w: snap threshold %g must be >= 0", ErrInvalidConfig, c.SnapThreshold)
	}
	if !Finite(c.VelocityThreshold) || c.VelocityThreshold < 0 {
		return fmt.Errorf("%w: velocity threshold %g must be >= 0", ErrInvalidConfig, c.VelocityThreshold)
	}
	if err := c.Spring.Validate(); err != nil {
		return err
	}
	if !(c.Resistance >= 0 && c.Resistance <= 1) {
		return fmt.Errorf("%w: resistance %g outside [0,1]", ErrInvalidConfig, c.Resistance)
	}
	if c.Axis != AxisX && c.Axis != AxisY {
		return fmt.Errorf("%w: unknown axis %d", ErrInvalidConfig, int(c.Axis))
	}
	if c.Bounds != nil {
		if err := c.Bounds.validate("bounds"); err != nil {
			return err
		}
	}
	if !Finite(c.ReferenceSpan) || c.ReferenceSpan < 0 {
		return fmt.Errorf("%w: reference span %g must be >= 0", ErrInvalidConfig, c.ReferenceSpan)
	}
	if !Finite(c.MaxOverdrag) || c.MaxOverdrag < 0 {
		return fmt.Errorf("%w: max overdrag %g must be >= 0", ErrInvalidConfig, c.MaxOverdrag)
	}
	if !(c.Friction > 0 && c.Friction < 1) {
		return fmt.Errorf("%w: friction %g outside (0,1)", ErrInvalidConfig, c.Friction)
	}
	if c.DecayClamp != nil {
		if err := c.DecayClamp.validate("decay clamp"); err != nil {
			return err
		}
	}
	if !Finite(c.EngageVelocity) || c.EngageVelocity < 0 {
		return fmt.Errorf("%w: engage velocity %g must be >= 0", ErrInvalidConfig, c.EngageVelocity)
	}
	if c.EngageRange != nil {
		if err := c.EngageRange.validate("engage range"); err != nil {
			return err
		}
	}
	return nil
}

// DragBounds returns the explicit bounds, or [first point, last point].
// ok is false when there is nothing to bound against.
func (c Config) DragBounds() (Bounds, bool) {
	if c.Bounds != nil {
		return *c.Bounds, true
	}
	if len(c.Points) == 0 {
		return Bounds{}, false
	}
	return Bounds{Min: c.Points[0], Max: c.Points[len(c.Points)-1]}, true
}

// Span returns the reference span used by the resistance exponent.
func (c Config) Span() float64 {
	if c.ReferenceSpan > 0 {
		return c.ReferenceSpan
	}
	if b, ok := c.DragBounds(); ok && b.Span() > 0 {
		return b.Span()
	}
	return DefaultReferenceSpan
}

// Engages reports whether a release at position with velocity should settle
// onto a snap point rather than decay freely.
func (c Config) Engages(position, velocity float64) bool {
	if len(c.Points) == 0 {
		return false
	}
	if c.EngageVelocity > 0 && math.Abs(velocity) >= c.EngageVelocity {
		return false
	}
	if c.EngageRange != nil && !c.EngageRange.Contains(position) {
		return false
	}
	return true
}

// Clone returns a deep copy so callers cannot mutate an engine's points.
func (c Config) Clone() Config {
	out := c
	out.Points = append([]float64(nil), c.Points...)
	if c.Bounds != nil {
		b := *c.Bounds
		out.Bounds = &b
	}
	if c.DecayClamp != nil {
		b := *c.DecayClamp
		out.DecayClamp = &b
	}
	if c.EngageRange != nil {
		b := *c.EngageRange
		out.EngageRange = &b
	}
	return out
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
