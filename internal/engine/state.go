package engine

import (
	"errors"
	"fmt"
)

// Phase is the lifecycle state of a gesture surface.
type Phase int

const (
	Idle Phase = iota
	Dragging
	Settling
	Decaying
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Settling:
		return "settling"
	case Decaying:
		return "decaying"
	default:
		return "unknown"
	}
}

// MarshalText renders the phase by name in JSON and YAML output.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	v, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	for _, p := range []Phase{Idle, Dragging, Settling, Decaying} {
		if p.String() == s {
			return p, nil
		}
	}
	return Idle, fmt.Errorf("unknown phase %q", s)
}

// Animating reports whether an integrator owns the position.
func (p Phase) Animating() bool {
	return p == Settling || p == Decaying
}

// State is an immutable snapshot of a surface.
type State struct {
	Position float64 `json:"position"`
	// Velocity is the gesture source's instantaneous velocity while
	// dragging and the integrator's velocity otherwise.
	Velocity float64 `json:"velocity"`
	// ActiveSnapIndex is the last settled snap point, or -1.
	ActiveSnapIndex int   `json:"activeSnapIndex"`
	Phase           Phase `json:"phase"`
	// Target is the snap point being settled toward, or -1.
	Target int    `json:"target"`
	Frame  uint64 `json:"frame"`
}

var (
	ErrNotDragging     = errors.New("engine: no drag in progress")
	ErrAlreadyDragging = errors.New("engine: drag already in progress")
	ErrDisposed        = errors.New("engine: disposed")
	ErrNoSnapPoints    = errors.New("engine: no snap points configured")
	ErrSnapIndex       = errors.New("engine: snap index out of range")
)
