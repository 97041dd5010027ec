package snap

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// SpringConfig holds the mass-spring parameters for a settle.
type SpringConfig struct {
	Stiffness float64
	Damping   float64
	Mass      float64
}

// Spring presets tuned for card and sheet motion.
var (
	Standard = SpringConfig{Stiffness: 400, Damping: 20, Mass: 0.8}
	Gentle   = SpringConfig{Stiffness: 300, Damping: 25, Mass: 1}
	Snappy   = SpringConfig{Stiffness: 500, Damping: 15, Mass: 0.6}
	Bouncy   = SpringConfig{Stiffness: 600, Damping: 10, Mass: 0.5}
)

var presets = map[string]SpringConfig{
	"standard": Standard,
	"gentle":   Gentle,
	"snappy":   Snappy,
	"bouncy":   Bouncy,
}

// Preset looks up a named spring preset.
func Preset(name string) (SpringConfig, error) {
	cfg, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return SpringConfig{}, fmt.Errorf("%w: unknown spring preset %q (have %s)", ErrInvalidConfig, name, strings.Join(PresetNames(), ", "))
	}
	return cfg, nil
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate rejects non-positive or non-finite parameters.
func (s SpringConfig) Validate() error {
	if !(s.Stiffness > 0) || !Finite(s.Stiffness) {
		return fmt.Errorf("%w: spring stiffness %g must be > 0", ErrInvalidConfig, s.Stiffness)
	}
	if !(s.Damping > 0) || !Finite(s.Damping) {
		return fmt.Errorf("%w: spring damping %g must be > 0", ErrInvalidConfig, s.Damping)
	}
	if !(s.Mass > 0) || !Finite(s.Mass) {
		return fmt.Errorf("%w: spring mass %g must be > 0", ErrInvalidConfig, s.Mass)
	}
	return nil
}

// AngularFrequency returns the undamped natural frequency sqrt(k/m) in rad/s.
func (s SpringConfig) AngularFrequency() float64 {
	return math.Sqrt(s.Stiffness / s.Mass)
}

// DampingRatio returns c / (2 sqrt(k m)). 1 is critical damping.
func (s SpringConfig) DampingRatio() float64 {
	return s.Damping / (2 * math.Sqrt(s.Stiffness*s.Mass))
}
