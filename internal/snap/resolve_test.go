package snap

import (
	"math/rand"
	"testing"
)

func threePoints() Config {
	cfg := DefaultConfig()
	cfg.Points = []float64{0, 100, 200}
	return cfg
}

func TestResolveNearestAtRest(t *testing.T) {
	cfg := threePoints()
	if got := Resolve(60, 0, -1, cfg); got != 1 {
		t.Fatalf("expected index 1 for release at 60, got %d", got)
	}
	if got := Resolve(40, 0, -1, cfg); got != 0 {
		t.Fatalf("expected index 0 for release at 40, got %d", got)
	}
	if got := Resolve(260, 0, -1, cfg); got != 2 {
		t.Fatalf("expected index 2 for release beyond max, got %d", got)
	}
}

func TestResolveFastReleaseCarriesPastNearest(t *testing.T) {
	cfg := threePoints()
	if got := Resolve(60, 900, -1, cfg); got != 2 {
		t.Fatalf("expected flick at +900 to reach index 2, got %d", got)
	}
	if got := Resolve(60, -900, -1, cfg); got != 0 {
		t.Fatalf("expected flick at -900 to reach index 0, got %d", got)
	}
	if got := Resolve(140, 900, -1, cfg); got != 2 {
		t.Fatalf("expected flick from 140 to reach index 2, got %d", got)
	}
}

func TestResolveFastReleaseSkipsNearestOnlyWhenItLiesAhead(t *testing.T) {
	cfg := threePoints()
	tests := []struct {
		name     string
		position float64
		velocity float64
		want     int
	}{
		{"nearest just ahead is skipped", 95, 900, 2},
		{"nearest just behind is passed", 105, 900, 2},
		{"nearest behind, next ahead", 40, 900, 1},
		{"nearest just ahead going down is skipped", 105, -900, 0},
		{"nearest just behind going down is passed", 95, -900, 0},
		{"nearest ahead is the last point", 190, 900, 2},
		{"resting exactly on a point", 100, 900, 2},
	}
	for _, tt := range tests {
		if got := Resolve(tt.position, tt.velocity, -1, cfg); got != tt.want {
			t.Fatalf("%s: expected index %d for release at %g with velocity %g, got %d", tt.name, tt.want, tt.position, tt.velocity, got)
		}
	}
}

func TestResolveVelocityAtThresholdCountsAsFast(t *testing.T) {
	cfg := threePoints()
	if got := Resolve(10, cfg.VelocityThreshold, -1, cfg); got != 1 {
		t.Fatalf("expected threshold velocity to override proximity, got %d", got)
	}
	if got := Resolve(10, cfg.VelocityThreshold-1, -1, cfg); got != 0 {
		t.Fatalf("expected sub-threshold velocity to use proximity, got %d", got)
	}
}

func TestResolveFallsBackWhenNothingAhead(t *testing.T) {
	cfg := threePoints()
	if got := Resolve(230, 2000, -1, cfg); got != 2 {
		t.Fatalf("expected fallback to nearest at the extreme, got %d", got)
	}
	if got := Resolve(-30, -2000, -1, cfg); got != 0 {
		t.Fatalf("expected fallback to nearest at the extreme, got %d", got)
	}
}

func TestResolveSinglePoint(t *testing.T) {
	cfg := threePoints()
	cfg.Points = []float64{42}
	for _, v := range []float64{-5000, 0, 5000} {
		if got := Resolve(-300, v, -1, cfg); got != 0 {
			t.Fatalf("expected single point to resolve to 0, got %d", got)
		}
	}
}

func TestResolveEmpty(t *testing.T) {
	cfg := threePoints()
	cfg.Points = nil
	if got := Resolve(10, 0, -1, cfg); got != -1 {
		t.Fatalf("expected -1 without points, got %d", got)
	}
}

func TestResolveHysteresisPrefersPrevious(t *testing.T) {
	cfg := threePoints()
	cfg.SnapThreshold = 2

	if got := Resolve(50, 0, 0, cfg); got != 0 {
		t.Fatalf("expected midpoint release to stay at previous index 0, got %d", got)
	}
	if got := Resolve(50, 0, 1, cfg); got != 1 {
		t.Fatalf("expected midpoint release to stay at previous index 1, got %d", got)
	}
	if got := Resolve(50.5, 0, 0, cfg); got != 0 {
		t.Fatalf("expected near-midpoint release within threshold to keep index 0, got %d", got)
	}
	if got := Resolve(55, 0, 0, cfg); got != 1 {
		t.Fatalf("expected release outside threshold to use proximity, got %d", got)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cfg := threePoints()
	cfg.Points = []float64{-120, -40, 0, 35, 90, 300}
	cfg.SnapThreshold = 5

	for range 2000 {
		pos := rng.Float64()*600 - 250
		vel := rng.Float64()*2400 - 1200
		prev := rng.Intn(len(cfg.Points)+1) - 1
		first := Resolve(pos, vel, prev, cfg)
		for range 3 {
			if got := Resolve(pos, vel, prev, cfg); got != first {
				t.Fatalf("resolve(%g, %g, %d) not deterministic: %d then %d", pos, vel, prev, first, got)
			}
		}
	}
}

func TestResolveFastReleaseMovesInTravelDirection(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	cfg := threePoints()
	cfg.Points = []float64{0, 80, 130, 400, 410}

	for range 2000 {
		pos := rng.Float64()*500 - 50
		speed := cfg.VelocityThreshold + rng.Float64()*3000
		vel := speed
		if rng.Intn(2) == 0 {
			vel = -speed
		}

		ahead := false
		for _, p := range cfg.Points {
			if (vel > 0 && p > pos) || (vel < 0 && p < pos) {
				ahead = true
				break
			}
		}
		if !ahead {
			continue
		}

		got := cfg.Points[Resolve(pos, vel, -1, cfg)]
		if vel > 0 && got <= pos {
			t.Fatalf("release at %g with %g resolved behind travel to %g", pos, vel, got)
		}
		if vel < 0 && got >= pos {
			t.Fatalf("release at %g with %g resolved behind travel to %g", pos, vel, got)
		}
	}
}

func TestCrossed(t *testing.T) {
	cfg := threePoints()
	tests := []struct {
		from, to float64
		want     int
	}{
		{90, 110, 1},
		{110, 90, 1},
		{100, 120, -1},
		{-10, 250, 2},
		{250, -10, 0},
		{20, 30, -1},
	}
	for _, tt := range tests {
		if got := Crossed(tt.from, tt.to, cfg); got != tt.want {
			t.Fatalf("Crossed(%g, %g) = %d, want %d", tt.from, tt.to, got, tt.want)
		}
	}
}
