package anim

import (
	"testing"

	"github.com/olivier-w/snapkit/internal/snap"
)

func TestReducedMotionJumpsSpring(t *testing.T) {
	enabled := true
	r := NewReducedMotion(func() bool { return enabled }, 0)
	s := NewSpring(SpringOptions{})

	a := r.StartSpring(s, 60, 0, 100, snap.Standard)
	if _, ok := a.(*Jump); !ok {
		t.Fatalf("expected a jump animator, got %T", a)
	}
	f := a.Step(frame)
	if !f.Done || f.Value != 100 {
		t.Fatalf("expected single terminal frame at 100, got %+v", f)
	}
	if s.Running() {
		t.Fatal("expected the spring to stay idle")
	}
}

func TestReducedMotionPolledAtEachStart(t *testing.T) {
	enabled := false
	r := NewReducedMotion(func() bool { return enabled }, 0)
	s := NewSpring(SpringOptions{})

	if a := r.StartSpring(s, 0, 0, 100, snap.Standard); a != Animator(s) {
		t.Fatalf("expected the spring while motion is allowed, got %T", a)
	}
	enabled = true
	a := r.StartSpring(s, 0, 0, 200, snap.Standard)
	if _, ok := a.(*Jump); !ok {
		t.Fatalf("expected a jump after the flag flipped, got %T", a)
	}
	if s.Running() {
		t.Fatal("expected the in-flight spring to be cancelled")
	}
}

func TestReducedMotionJumpsDecayToProjection(t *testing.T) {
	r := NewReducedMotion(func() bool { return true }, 0)
	d := NewDecay(0)
	clamp := &snap.Bounds{Min: 0, Max: 300}

	a := r.StartDecay(d, 0, 1000, 0.95, clamp)
	f := a.Step(frame)
	if !f.Done || f.Value != 300 {
		t.Fatalf("expected jump to clamped rest 300, got %+v", f)
	}
}

func TestNilReducedMotionNeverActive(t *testing.T) {
	var r *ReducedMotion
	if r.Active() {
		t.Fatal("expected nil policy to be inactive")
	}
	if NewReducedMotion(nil, 0).Active() {
		t.Fatal("expected nil flag to be inactive")
	}
}
