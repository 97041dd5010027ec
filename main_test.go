package main

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/olivier-w/snapkit/internal/anim"
	"github.com/olivier-w/snapkit/internal/haptic"
)

func TestParseArgsOnlySetFlagsOverride(t *testing.T) {
	opts, err := parseArgs([]string{"-spring", "bouncy", "-haptics=false"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs returned error: %v", err)
	}
	o := opts.overrides
	if o.SpringPreset == nil || *o.SpringPreset != "bouncy" {
		t.Fatalf("expected spring override, got %v", o.SpringPreset)
	}
	if o.Haptics == nil || *o.Haptics {
		t.Fatal("expected haptics override to be false")
	}
	if o.ReducedMotion != nil || o.FPS != nil || o.LogLevel != nil || o.Listen != nil {
		t.Fatalf("expected unset flags to stay nil, got %+v", o)
	}
}

func TestParseArgsRejectsStrayArgsAndRealtimeWithoutScript(t *testing.T) {
	if _, err := parseArgs([]string{"song.mp3"}, io.Discard); err == nil {
		t.Fatal("expected positional argument to be rejected")
	}
	if _, err := parseArgs([]string{"-realtime"}, io.Discard); err == nil {
		t.Fatal("expected -realtime without -script to be rejected")
	}
	if _, err := parseArgs([]string{"-help"}, io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
}

func TestLoadConfigLayersFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapkit.yaml")
	yaml := "spring:\n  preset: gentle\nmotion:\n  model: analytic\n  fps: 30\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := parseArgs([]string{"-config", path, "-fps", "120", "-haptic-style", "heavy"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs returned error: %v", err)
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	if cfg.Spring.Preset != "gentle" {
		t.Fatalf("expected file preset gentle, got %q", cfg.Spring.Preset)
	}
	if cfg.SpringModel() != anim.ModelAnalytic {
		t.Fatalf("expected analytic model, got %v", cfg.SpringModel())
	}
	if cfg.Motion.FPS != 120 {
		t.Fatalf("expected flag fps 120 to win, got %d", cfg.Motion.FPS)
	}
	if cfg.HapticStyle() != haptic.Heavy {
		t.Fatalf("expected heavy style, got %v", cfg.HapticStyle())
	}
}

func TestLoadConfigRejectsInvalidOverride(t *testing.T) {
	opts, err := parseArgs([]string{"-spring", "wobbly"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs returned error: %v", err)
	}
	_, err = loadConfig(opts)
	if err == nil || !strings.Contains(err.Error(), "wobbly") {
		t.Fatalf("expected unknown preset error, got %v", err)
	}
}

func TestOpenLogDestinations(t *testing.T) {
	w, closeLog, err := openLog("", false)
	if err != nil || w != io.Discard {
		t.Fatalf("expected discard for interactive runs, got %v %v", w, err)
	}
	closeLog()

	w, closeLog, err = openLog("", true)
	if err != nil || w != os.Stderr {
		t.Fatalf("expected stderr for headless runs, got %v %v", w, err)
	}
	closeLog()

	path := filepath.Join(t.TempDir(), "snapkit.log")
	w, closeLog, err = openLog(path, false)
	if err != nil {
		t.Fatalf("openLog returned error: %v", err)
	}
	io.WriteString(w, "hello\n")
	closeLog()
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "hello\n" {
		t.Fatalf("expected log file contents, got %q %v", b, err)
	}
}
