// Package config loads the snapkit YAML file and turns it into the values
// the engine, haptics and telemetry are built from.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/olivier-w/snapkit/internal/anim"
	"github.com/olivier-w/snapkit/internal/haptic"
	"github.com/olivier-w/snapkit/internal/snap"
)

// Config is the top-level YAML configuration.
//
// Defaults and validation live here so the rest of the code can assume a
// well-formed config. Flags override individual values after loading.
type Config struct {
	Surface   SurfaceConfig   `yaml:"surface"`
	Spring    SpringConfig    `yaml:"spring"`
	Motion    MotionConfig    `yaml:"motion"`
	Haptics   HapticsConfig   `yaml:"haptics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Range is a YAML [min, max] pair.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (r *Range) bounds() *snap.Bounds {
	if r == nil {
		return nil
	}
	return &snap.Bounds{Min: r.Min, Max: r.Max}
}

type SurfaceConfig struct {
	Points            []float64 `yaml:"points"`
	Axis              string    `yaml:"axis"`
	SnapThreshold     float64   `yaml:"snap_threshold"`
	VelocityThreshold float64   `yaml:"velocity_threshold"`
	Resistance        float64   `yaml:"resistance"`
	ReferenceSpan     float64   `yaml:"reference_span,omitempty"`
	MaxOverdrag       float64   `yaml:"max_overdrag,omitempty"`
	Bounds            *Range    `yaml:"bounds,omitempty"`
	Friction          float64   `yaml:"friction"`
	DecayClamp        *Range    `yaml:"decay_clamp,omitempty"`
	EngageVelocity    float64   `yaml:"engage_velocity,omitempty"`
	EngageRange       *Range    `yaml:"engage_range,omitempty"`
	HapticOnCrossing  bool      `yaml:"haptic_on_crossing,omitempty"`
}

// SpringConfig names a preset; any non-zero coefficient overrides it.
type SpringConfig struct {
	Preset    string  `yaml:"preset"`
	Stiffness float64 `yaml:"stiffness,omitempty"`
	Damping   float64 `yaml:"damping,omitempty"`
	Mass      float64 `yaml:"mass,omitempty"`
}

type MotionConfig struct {
	Reduced      bool   `yaml:"reduced"`
	Model        string `yaml:"model"`
	SettleFrames int    `yaml:"settle_frames"`
	FPS          int    `yaml:"fps"`
}

type HapticsConfig struct {
	Enabled bool    `yaml:"enabled"`
	Style   string  `yaml:"style"`
	Volume  float64 `yaml:"volume"`
	// Sample is an optional WAV, MP3, Ogg or FLAC file played instead of the
	// synthesized click.
	Sample string `yaml:"sample,omitempty"`
}

type TelemetryConfig struct {
	Listen     string `yaml:"listen,omitempty"`
	CoalesceMS int    `yaml:"coalesce_ms"`
	MaxClients int    `yaml:"max_clients"`
	SendBuffer int    `yaml:"send_buffer"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// DefaultConfig returns a fully-populated Config matching snap.DefaultConfig.
func DefaultConfig() Config {
	d := snap.DefaultConfig()
	return Config{
		Surface: SurfaceConfig{
			Points:            d.Points,
			Axis:              d.Axis.String(),
			SnapThreshold:     d.SnapThreshold,
			VelocityThreshold: d.VelocityThreshold,
			Resistance:        d.Resistance,
			Friction:          d.Friction,
		},
		Spring: SpringConfig{
			Preset: "standard",
		},
		Motion: MotionConfig{
			Model:        anim.ModelEuler.String(),
			SettleFrames: anim.DefaultSettleFrames,
			FPS:          60,
		},
		Haptics: HapticsConfig{
			Enabled: true,
			Style:   haptic.Medium.String(),
			Volume:  0.6,
		},
		Telemetry: TelemetryConfig{
			CoalesceMS: 16,
			MaxClients: 16,
			SendBuffer: 64,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFile reads and parses a YAML config file on top of DefaultConfig.
// Unknown fields are rejected.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return Config{}, fmt.Errorf("loading config %s: %w", path, err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return Config{}, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML bytes on top of DefaultConfig.
func Parse(b []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); err == nil {
		return Config{}, fmt.Errorf("decode config yaml: unexpected trailing document")
	}
	return cfg, nil
}

// FlagOverrides carries flag values that replace file values when non-nil.
type FlagOverrides struct {
	ReducedMotion *bool
	SpringPreset  *string
	SpringModel   *string
	FPS           *int
	Haptics       *bool
	HapticStyle   *string
	Listen        *string
	LogLevel      *string
	LogFile       *string
}

// Apply merges the overrides into cfg.
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.ReducedMotion != nil {
		cfg.Motion.Reduced = *o.ReducedMotion
	}
	if o.SpringPreset != nil {
		cfg.Spring = SpringConfig{Preset: *o.SpringPreset}
	}
	if o.SpringModel != nil {
		cfg.Motion.Model = *o.SpringModel
	}
	if o.FPS != nil {
		cfg.Motion.FPS = *o.FPS
	}
	if o.Haptics != nil {
		cfg.Haptics.Enabled = *o.Haptics
	}
	if o.HapticStyle != nil {
		cfg.Haptics.Style = *o.HapticStyle
	}
	if o.Listen != nil {
		cfg.Telemetry.Listen = *o.Listen
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
	if o.LogFile != nil {
		cfg.Logging.File = *o.LogFile
	}
}

// Validate checks config invariants. It is meant to run after defaults,
// file and flag overrides are applied.
func (c *Config) Validate() error {
	sc, err := c.Snap()
	if err != nil {
		return err
	}
	if err := sc.Validate(); err != nil {
		return err
	}

	if _, ok := anim.ParseModel(c.Motion.Model); !ok {
		return fmt.Errorf("motion.model must be %q or %q", anim.ModelEuler, anim.ModelAnalytic)
	}
	if c.Motion.SettleFrames <= 0 {
		return errors.New("motion.settle_frames must be > 0")
	}
	if c.Motion.FPS <= 0 || c.Motion.FPS > 1000 {
		return errors.New("motion.fps must be between 1 and 1000")
	}

	if _, err := haptic.ParseStyle(c.Haptics.Style); err != nil {
		return fmt.Errorf("haptics.style: %w", err)
	}
	if c.Haptics.Volume < 0 || c.Haptics.Volume > 1 {
		return errors.New("haptics.volume must be between 0 and 1")
	}

	if c.Telemetry.CoalesceMS < 0 {
		return errors.New("telemetry.coalesce_ms must be >= 0")
	}
	if c.Telemetry.MaxClients < 0 {
		return errors.New("telemetry.max_clients must be >= 0")
	}
	if c.Telemetry.SendBuffer <= 0 {
		return errors.New("telemetry.send_buffer must be > 0")
	}

	if _, err := ParseLogLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// Snap converts the surface and spring sections into an engine config.
// The result is not validated.
func (c *Config) Snap() (snap.Config, error) {
	spring, err := c.Spring.resolve()
	if err != nil {
		return snap.Config{}, err
	}
	axis, err := snap.ParseAxis(c.Surface.Axis)
	if err != nil {
		return snap.Config{}, fmt.Errorf("surface.axis: %w", err)
	}
	s := c.Surface
	return snap.Config{
		Points:            append([]float64(nil), s.Points...),
		SnapThreshold:     s.SnapThreshold,
		VelocityThreshold: s.VelocityThreshold,
		Spring:            spring,
		Resistance:        s.Resistance,
		Axis:              axis,
		Bounds:            s.Bounds.bounds(),
		ReferenceSpan:     s.ReferenceSpan,
		MaxOverdrag:       s.MaxOverdrag,
		Friction:          s.Friction,
		DecayClamp:        s.DecayClamp.bounds(),
		EngageVelocity:    s.EngageVelocity,
		EngageRange:       s.EngageRange.bounds(),
		HapticOnCrossing:  s.HapticOnCrossing,
	}, nil
}

func (s SpringConfig) resolve() (snap.SpringConfig, error) {
	name := s.Preset
	if name == "" {
		name = "standard"
	}
	out, err := snap.Preset(name)
	if err != nil {
		return snap.SpringConfig{}, fmt.Errorf("spring.preset: %w", err)
	}
	if s.Stiffness != 0 {
		out.Stiffness = s.Stiffness
	}
	if s.Damping != 0 {
		out.Damping = s.Damping
	}
	if s.Mass != 0 {
		out.Mass = s.Mass
	}
	return out, nil
}

// SpringModel returns the parsed integrator model, defaulting to Euler.
func (c *Config) SpringModel() anim.Model {
	m, _ := anim.ParseModel(c.Motion.Model)
	return m
}

// HapticStyle returns the parsed pulse style, defaulting to Medium.
func (c *Config) HapticStyle() haptic.Style {
	s, err := haptic.ParseStyle(c.Haptics.Style)
	if err != nil {
		return haptic.Medium
	}
	return s
}

// Coalesce returns the telemetry frame coalescing window.
func (c *Config) Coalesce() time.Duration {
	return time.Duration(c.Telemetry.CoalesceMS) * time.Millisecond
}

// FrameInterval returns the duration of one frame at Motion.FPS.
func (c *Config) FrameInterval() time.Duration {
	if c.Motion.FPS <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.Motion.FPS)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) string {
	if p == "" || p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	if len(p) >= 2 && (p[1] == '/' || p[1] == '\\') {
		return filepath.Join(home, p[2:])
	}
	return p
}
