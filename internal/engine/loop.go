package engine

import (
	"context"
	"time"
)

// DefaultFPS is the frame rate Loop uses when none is given.
const DefaultFPS = 60

// Stepper is anything advanced once per display frame.
type Stepper interface {
	Step(dt time.Duration) State
}

// Loop steps s from a ticker at fps until ctx is done. Each step receives
// the measured time since the previous tick, so a stalled goroutine
// produces one long step rather than a burst of short ones.
func Loop(ctx context.Context, s Stepper, fps int) error {
	if fps <= 0 {
		fps = DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			s.Step(dt)
		}
	}
}
