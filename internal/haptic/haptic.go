// Package haptic fires discrete feedback pulses for settle and crossing
// events. The engine only ever sees the Pulser interface; backends decide
// what a pulse is.
package haptic

import (
	"fmt"
	"strings"
)

// Pulser is the injected feedback capability. Pulse is fire-and-forget.
type Pulser interface {
	Pulse()
}

// Func adapts a plain function to Pulser.
type Func func()

func (f Func) Pulse() {
	if f != nil {
		f()
	}
}

// Nop discards pulses.
type Nop struct{}

func (Nop) Pulse() {}

// Multi fans a pulse out to every non-nil Pulser in order.
type Multi []Pulser

func (m Multi) Pulse() {
	for _, p := range m {
		if p != nil {
			p.Pulse()
		}
	}
}

// Style is the pulse intensity.
type Style int

const (
	Light Style = iota
	Medium
	Heavy
)

// String returns the style name.
func (s Style) String() string {
	switch s {
	case Medium:
		return "medium"
	case Heavy:
		return "heavy"
	default:
		return "light"
	}
}

// ParseStyle converts a style name.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light", "":
		return Light, nil
	case "medium":
		return Medium, nil
	case "heavy":
		return Heavy, nil
	default:
		return Light, fmt.Errorf("unknown haptic style %q (must be light, medium, or heavy)", s)
	}
}
