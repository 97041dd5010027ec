package snap

import "github.com/go-gl/mathgl/mgl64"

// Extrapolation controls Interpolate outside the input range.
type Extrapolation int

const (
	ExtrapolateExtend Extrapolation = iota
	ExtrapolateClamp
)

// Interpolate maps v through the piecewise-linear curve defined by in -> out.
// in must be ascending and the same length as out (at least two entries);
// otherwise v is returned unchanged. Consumers use it to derive secondary
// visuals (tilt, opacity, progress) from the engine's position.
func Interpolate(v float64, in, out []float64, ex Extrapolation) float64 {
	if len(in) < 2 || len(in) != len(out) {
		return v
	}
	if ex == ExtrapolateClamp {
		v = mgl64.Clamp(v, in[0], in[len(in)-1])
	}

	seg := len(in) - 2
	for i := 1; i < len(in); i++ {
		if v <= in[i] {
			seg = i - 1
			break
		}
	}
	x0, x1 := in[seg], in[seg+1]
	y0, y1 := out[seg], out[seg+1]
	if x1 == x0 {
		return y1
	}
	return y0 + (v-x0)*(y1-y0)/(x1-x0)
}
