// Package anim holds the per-frame integrators that move a settled surface:
// a mass-spring toward a fixed target and a friction decay with optional
// clamping. Neither integrator knows about gestures or accessibility; the
// engine drives them one frame at a time.
package anim

import (
	"math"
	"sync/atomic"
	"time"
)

// Frame is one emitted integrator sample.
type Frame struct {
	Value    float64
	Velocity float64
	Done     bool
}

// Handle identifies one started animation. Handles are unique across all
// animators in the process, so a stale handle never cancels a newer run.
type Handle uint64

var handleSeq atomic.Uint64

func nextHandle() Handle {
	return Handle(handleSeq.Add(1))
}

// Animator is the contract shared by every integrator and by the
// reduced-motion jump.
type Animator interface {
	// Step advances the animation by dt and returns the emitted frame.
	// The frame that completes the animation has Done set; later calls
	// return it again without advancing.
	Step(dt time.Duration) Frame
	// Cancel stops the run identified by h. The last emitted frame stays
	// authoritative. ok is false when h is not the live run.
	Cancel(h Handle) (last Frame, ok bool)
	Handle() Handle
	Running() bool
	Last() Frame
}

// frameRate is the rate friction and other per-frame constants are
// normalized to.
const frameRate = 60

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// seconds converts dt to seconds, reporting false for unusable steps.
func seconds(dt time.Duration) (float64, bool) {
	s := dt.Seconds()
	if !(s > 0) || !finite(s) {
		return 0, false
	}
	return s, true
}
