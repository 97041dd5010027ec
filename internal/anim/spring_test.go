package anim

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/olivier-w/snapkit/internal/snap"
)

const frame = time.Second / 60

func runSpring(t *testing.T, s *Spring, maxFrames int) (frames int, last Frame) {
	t.Helper()
	for frames = 1; frames <= maxFrames; frames++ {
		last = s.Step(frame)
		if last.Done {
			return frames, last
		}
	}
	t.Fatalf("spring did not settle within %d frames (pos %g vel %g)", maxFrames, s.pos, s.vel)
	return 0, last
}

func TestSpringPresetsConverge(t *testing.T) {
	presets := map[string]snap.SpringConfig{
		"standard": snap.Standard,
		"gentle":   snap.Gentle,
		"snappy":   snap.Snappy,
		"bouncy":   snap.Bouncy,
	}
	for _, model := range []Model{ModelEuler, ModelAnalytic} {
		for name, cfg := range presets {
			s := NewSpring(SpringOptions{Model: model})
			s.Start(60, 0, 100, cfg)
			_, last := runSpring(t, s, 600)
			if last.Value != 100 || last.Velocity != 0 {
				t.Fatalf("%s/%s: expected exact rest at 100, got %+v", model, name, last)
			}
		}
	}
}

func TestSpringConvergesForRealisticParameters(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for range 200 {
		cfg := snap.SpringConfig{
			Stiffness: 100 + rng.Float64()*900,
			Damping:   5 + rng.Float64()*55,
			Mass:      0.3 + rng.Float64()*1.7,
		}
		from := rng.Float64()*400 - 200
		vel := rng.Float64()*4000 - 2000
		s := NewSpring(SpringOptions{})
		s.Start(from, vel, 0, cfg)
		runSpring(t, s, 1200)
	}
}

func TestEulerStepBoundsStability(t *testing.T) {
	cfg := snap.SpringConfig{Stiffness: 400, Damping: 60, Mass: 0.1}
	h := eulerStep(cfg)
	if cfg.Damping*h/cfg.Mass > 1 || cfg.AngularFrequency()*h > 1 {
		t.Fatalf("expected c·h/m and ω·h <= 1, got h %g", h)
	}
	if got := eulerStep(snap.Standard); got != maxSubstep.Seconds() {
		t.Fatalf("expected presets to keep the %v substep, got %gs", maxSubstep, got)
	}
}

func TestSpringEulerStaysStableForStiffOrHeavilyDampedConfigs(t *testing.T) {
	tests := []struct {
		name string
		cfg  snap.SpringConfig
	}{
		{"overdamped light mass", snap.SpringConfig{Stiffness: 400, Damping: 60, Mass: 0.1}},
		{"stiff light mass", snap.SpringConfig{Stiffness: 40000, Damping: 10, Mass: 0.01}},
		{"tiny mass", snap.SpringConfig{Stiffness: 400, Damping: 50, Mass: 0.001}},
		{"beyond substep budget", snap.SpringConfig{Stiffness: 4000, Damping: 500, Mass: 0.0001}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSpring(SpringOptions{Model: ModelEuler})
			s.Start(60, 0, 100, tt.cfg)
			for i := 1; i <= 600; i++ {
				f := s.Step(frame)
				if f.Value < 59 || f.Value > 141 {
					t.Fatalf("frame %d: expected position to stay near [60, 100], got %g (vel %g)", i, f.Value, f.Velocity)
				}
				if f.Done {
					if f.Value != 100 {
						t.Fatalf("expected rest at 100, got %g", f.Value)
					}
					return
				}
			}
			t.Fatalf("expected convergence within 600 frames, got pos %g vel %g", s.pos, s.vel)
		})
	}
}

func TestSpringStartAtTargetCompletesOnFirstFrame(t *testing.T) {
	s := NewSpring(SpringOptions{})
	s.Start(100, 0, 100, snap.Standard)
	f := s.Step(frame)
	if !f.Done || f.Value != 100 {
		t.Fatalf("expected immediate completion at 100, got %+v", f)
	}
	if s.Running() {
		t.Fatal("expected spring to be idle after completion")
	}
}

func TestSpringRetargetKeepsInFlightState(t *testing.T) {
	s := NewSpring(SpringOptions{})
	s.Start(60, 0, 100, snap.Standard)
	for range 5 {
		s.Step(frame)
	}
	before := s.Last()

	s.Start(0, 0, 200, snap.Standard)
	if got := s.Last(); got.Value != before.Value || got.Velocity != before.Velocity {
		t.Fatalf("expected retarget to keep %+v, got %+v", before, got)
	}
	next := s.Step(frame)
	if jump := math.Abs(next.Value - before.Value); jump > math.Abs(before.Velocity)*frame.Seconds()+50 {
		t.Fatalf("retarget jumped by %g", jump)
	}
	if s.Target() != 200 {
		t.Fatalf("expected new target 200, got %g", s.Target())
	}
}

func TestSpringCancelLeavesLastValue(t *testing.T) {
	s := NewSpring(SpringOptions{})
	h := s.Start(60, 0, 100, snap.Standard)
	var last Frame
	for range 4 {
		last = s.Step(frame)
	}

	got, ok := s.Cancel(h)
	if !ok {
		t.Fatal("expected cancel of live handle to succeed")
	}
	if got != last {
		t.Fatalf("expected cancel to return last frame %+v, got %+v", last, got)
	}
	if f := s.Step(frame); f != last {
		t.Fatalf("expected cancelled spring to stop emitting, got %+v", f)
	}
	if _, ok := s.Cancel(h); ok {
		t.Fatal("expected second cancel to be a no-op")
	}
}

func TestSpringStaleHandleDoesNotCancel(t *testing.T) {
	s := NewSpring(SpringOptions{})
	old := s.Start(0, 0, 100, snap.Standard)
	s.Step(frame)
	s.Start(0, 0, 50, snap.Standard)
	if _, ok := s.Cancel(old); ok {
		t.Fatal("expected stale handle to be rejected")
	}
	if !s.Running() {
		t.Fatal("expected spring to keep running")
	}
}

func TestSpringIgnoresUnusableSteps(t *testing.T) {
	s := NewSpring(SpringOptions{})
	s.Start(0, 0, 100, snap.Standard)
	first := s.Step(frame)
	if got := s.Step(0); got != first {
		t.Fatalf("expected zero dt to be ignored, got %+v", got)
	}
	if got := s.Step(-frame); got != first {
		t.Fatalf("expected negative dt to be ignored, got %+v", got)
	}
}

func TestSpringSurvivesLongFrames(t *testing.T) {
	s := NewSpring(SpringOptions{})
	s.Start(0, 0, 100, snap.Bouncy)
	for range 40 {
		f := s.Step(250 * time.Millisecond)
		if !finite(f.Value) || math.Abs(f.Value) > 1000 {
			t.Fatalf("expected stable integration under long frames, got %+v", f)
		}
		if f.Done {
			return
		}
	}
	t.Fatal("expected spring to settle under long frames")
}
