package snap

import "math"

// Resolve picks the index of the point a release at position with velocity
// should settle on. prev is the last committed index (-1 for none) and is
// only consulted to break near-ties. Resolve is pure: identical inputs give
// identical results. It returns -1 when the configuration has no points.
//
// A release at or above VelocityThreshold is decided by direction: it skips
// past the nearest point when that point lies ahead, so a flick always carries
// the surface to the next stop rather than the one it is already hovering
// over. When nothing lies ahead the release falls back to proximity.
func Resolve(position, velocity float64, prev int, cfg Config) int {
	points := cfg.Points
	switch len(points) {
	case 0:
		return -1
	case 1:
		return 0
	}

	nearest := nearestIndex(position, points)
	if velocity != 0 && math.Abs(velocity) >= cfg.VelocityThreshold {
		if i, ok := directional(position, velocity, nearest, points); ok {
			return i
		}
	}
	return proximity(position, nearest, prev, cfg)
}

// directional returns the point the flick carries to, if any lies ahead.
func directional(position, velocity float64, nearest int, points []float64) (int, bool) {
	if velocity > 0 {
		if points[nearest] > position {
			if nearest+1 < len(points) {
				return nearest + 1, true
			}
			return nearest, true
		}
		for i, p := range points {
			if p > position {
				return i, true
			}
		}
		return -1, false
	}
	if points[nearest] < position {
		if nearest > 0 {
			return nearest - 1, true
		}
		return nearest, true
	}
	for i := len(points) - 1; i >= 0; i-- {
		if points[i] < position {
			return i, true
		}
	}
	return -1, false
}

// proximity returns the nearest point, preferring the neighbour closer to prev
// when the two best candidates are within SnapThreshold of each other.
func proximity(position float64, nearest, prev int, cfg Config) int {
	points := cfg.Points
	if prev < 0 || prev >= len(points) {
		return nearest
	}

	var runnerUp int
	switch {
	case nearest == 0:
		runnerUp = 1
	case nearest == len(points)-1:
		runnerUp = nearest - 1
	case math.Abs(points[nearest-1]-position) <= math.Abs(points[nearest+1]-position):
		runnerUp = nearest - 1
	default:
		runnerUp = nearest + 1
	}

	gap := math.Abs(points[runnerUp]-position) - math.Abs(points[nearest]-position)
	if gap > cfg.SnapThreshold {
		return nearest
	}
	anchor := points[prev]
	if math.Abs(points[runnerUp]-anchor) < math.Abs(points[nearest]-anchor) {
		return runnerUp
	}
	return nearest
}

// nearestIndex returns the index minimizing |p - position|. Exact ties go to
// the lower index.
func nearestIndex(position float64, points []float64) int {
	best := 0
	bestDist := math.Abs(points[0] - position)
	for i := 1; i < len(points); i++ {
		d := math.Abs(points[i] - position)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// Nearest returns the index of the point closest to position, or -1 when
// there are no points.
func Nearest(position float64, cfg Config) int {
	if len(cfg.Points) == 0 {
		return -1
	}
	return nearestIndex(position, cfg.Points)
}

// Crossed returns the index of a snap point lying in the half-open interval
// between from and to (from excluded), or -1. When several are crossed in one
// move the last one reached is returned.
func Crossed(from, to float64, cfg Config) int {
	hit := -1
	if to > from {
		for i, p := range cfg.Points {
			if p > from && p <= to {
				hit = i
			}
		}
		return hit
	}
	if to < from {
		for i := len(cfg.Points) - 1; i >= 0; i-- {
			p := cfg.Points[i]
			if p < from && p >= to {
				hit = i
			}
		}
	}
	return hit
}
