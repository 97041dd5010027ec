package snap

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Resist damps a drag delta that would carry the position beyond a bound.
// The multiplier resistance^(1 + beyond/span) shrinks the further past the
// bound the drag already is. Callers must pass finite values.
func Resist(rawDelta, beyond, resistance, span float64) float64 {
	if resistance >= 1 {
		return rawDelta
	}
	if resistance <= 0 {
		return 0
	}
	if span <= 0 {
		span = DefaultReferenceSpan
	}
	return rawDelta * math.Pow(resistance, 1+math.Max(beyond, 0)/span)
}

// ApplyDrag moves position by delta under the configuration's drag bounds.
// Travel inside the bounds is 1:1; only the part of the move past a bound is
// resisted, and MaxOverdrag caps the result.
func ApplyDrag(position, delta float64, cfg Config) float64 {
	b, ok := cfg.DragBounds()
	if !ok {
		return position + delta
	}
	next := position + delta
	if b.Contains(next) {
		return next
	}

	span := cfg.Span()
	if next > b.Max {
		if position <= b.Max {
			return capOverdrag(b.Max+Resist(next-b.Max, 0, cfg.Resistance, span), b, cfg.MaxOverdrag)
		}
		return capOverdrag(position+Resist(delta, position-b.Max, cfg.Resistance, span), b, cfg.MaxOverdrag)
	}
	if position >= b.Min {
		return capOverdrag(b.Min+Resist(next-b.Min, 0, cfg.Resistance, span), b, cfg.MaxOverdrag)
	}
	return capOverdrag(position+Resist(delta, b.Min-position, cfg.Resistance, span), b, cfg.MaxOverdrag)
}

func capOverdrag(v float64, b Bounds, limit float64) float64 {
	if limit <= 0 {
		return v
	}
	return mgl64.Clamp(v, b.Min-limit, b.Max+limit)
}
