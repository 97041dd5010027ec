// Package script replays a recorded or hand-written gesture against an
// engine without a terminal, printing one line per frame.
package script

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrExpectation is returned when an expect step does not match.
var ErrExpectation = errors.New("expectation failed")

// Script is a sequence of gesture steps.
type Script struct {
	// FPS is the virtual frame rate. Zero uses the caller's default.
	FPS   int    `yaml:"fps,omitempty"`
	Steps []Step `yaml:"steps"`
}

// Step holds exactly one action.
type Step struct {
	Start   bool     `yaml:"start,omitempty"`
	Move    *Move    `yaml:"move,omitempty"`
	Release *float64 `yaml:"release,omitempty"`
	Snap    *int     `yaml:"snap,omitempty"`
	Frames  int      `yaml:"frames,omitempty"`
	Settle  bool     `yaml:"settle,omitempty"`
	Reduced *bool    `yaml:"reduced,omitempty"`
	Expect  *Expect  `yaml:"expect,omitempty"`
}

// Move is one drag update. Repeat sends it that many times, one frame apart.
type Move struct {
	Delta    float64 `yaml:"delta"`
	Velocity float64 `yaml:"velocity"`
	Repeat   int     `yaml:"repeat,omitempty"`
}

// Expect checks the engine state. Unset fields are not checked.
type Expect struct {
	Phase     string   `yaml:"phase,omitempty"`
	Index     *int     `yaml:"index,omitempty"`
	Target    *int     `yaml:"target,omitempty"`
	Position  *float64 `yaml:"position,omitempty"`
	Tolerance float64  `yaml:"tolerance,omitempty"`
	// Below and Above bound the position.
	Below *float64 `yaml:"below,omitempty"`
	Above *float64 `yaml:"above,omitempty"`
	// Pulses is the total number of haptic pulses so far.
	Pulses *int `yaml:"pulses,omitempty"`
}

func (s Step) actions() int {
	n := 0
	for _, set := range []bool{s.Start, s.Move != nil, s.Release != nil, s.Snap != nil, s.Frames > 0, s.Settle, s.Reduced != nil, s.Expect != nil} {
		if set {
			n++
		}
	}
	return n
}

// Validate checks that every step holds exactly one action.
func (s Script) Validate() error {
	if s.FPS < 0 || s.FPS > 1000 {
		return fmt.Errorf("fps %d must be between 0 and 1000", s.FPS)
	}
	if len(s.Steps) == 0 {
		return errors.New("script has no steps")
	}
	for i, st := range s.Steps {
		if n := st.actions(); n != 1 {
			return fmt.Errorf("step %d: expected exactly one action, got %d", i, n)
		}
		if st.Frames < 0 {
			return fmt.Errorf("step %d: frames must be >= 0", i)
		}
		if st.Move != nil && st.Move.Repeat < 0 {
			return fmt.Errorf("step %d: repeat must be >= 0", i)
		}
	}
	return nil
}

// Load reads and validates a script file.
func Load(path string) (Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}
	s, err := Parse(b)
	if err != nil {
		return Script{}, fmt.Errorf("script %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a YAML script. Unknown fields are rejected.
func Parse(b []byte) (Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Script{}, fmt.Errorf("decode script yaml: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}
