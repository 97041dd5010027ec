package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/olivier-w/snapkit/internal/engine"
)

// maxSettleFrames bounds a settle step so a misconfigured surface cannot
// spin forever.
const maxSettleFrames = 10000

// Options controls a replay.
type Options struct {
	Out io.Writer
	// FPS is used when the script does not set one.
	FPS int
	// Realtime paces frames with engine.Loop instead of a virtual clock.
	Realtime bool
	// Reduced is the flag the engine polls; reduced steps toggle it.
	Reduced *atomic.Bool
}

// Runner replays scripts against one engine.
type Runner struct {
	eng  *engine.Engine
	opts Options
	dt   time.Duration
	// clock is the virtual time since the replay started.
	clock time.Duration
}

// NewRunner binds a runner to e.
func NewRunner(e *engine.Engine, opts Options) *Runner {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.FPS <= 0 {
		opts.FPS = engine.DefaultFPS
	}
	return &Runner{eng: e, opts: opts}
}

// Run executes s. It stops at the first failing step and names it in the
// error.
func (r *Runner) Run(ctx context.Context, s Script) error {
	fps := s.FPS
	if fps <= 0 {
		fps = r.opts.FPS
	}
	r.dt = time.Second / time.Duration(fps)

	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.step(ctx, st, fps); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func (r *Runner) step(ctx context.Context, st Step, fps int) error {
	switch {
	case st.Start:
		r.note("start")
		return r.eng.DragStart()

	case st.Move != nil:
		n := max(st.Move.Repeat, 1)
		for range n {
			if err := r.eng.DragUpdate(st.Move.Delta, st.Move.Velocity); err != nil {
				return err
			}
			r.clock += r.dt
			r.print(r.eng.State())
		}
		return nil

	case st.Release != nil:
		r.note(fmt.Sprintf("release velocity=%g", *st.Release))
		return r.eng.DragEnd(*st.Release)

	case st.Snap != nil:
		r.note(fmt.Sprintf("snap %d", *st.Snap))
		return r.eng.SnapTo(*st.Snap)

	case st.Frames > 0:
		return r.frames(ctx, st.Frames, false, fps)

	case st.Settle:
		if !r.eng.Phase().Animating() {
			return nil
		}
		if err := r.frames(ctx, maxSettleFrames, true, fps); err != nil {
			return err
		}
		if r.eng.Phase().Animating() {
			return fmt.Errorf("did not settle within %d frames", maxSettleFrames)
		}
		return nil

	case st.Reduced != nil:
		if r.opts.Reduced == nil {
			return errors.New("reduced motion is not controllable in this run")
		}
		r.note(fmt.Sprintf("reduced motion=%t", *st.Reduced))
		r.opts.Reduced.Store(*st.Reduced)
		return nil

	case st.Expect != nil:
		return check(r.eng, *st.Expect)
	}
	return errors.New("empty step")
}

func (r *Runner) frames(ctx context.Context, n int, untilIdle bool, fps int) error {
	if !r.opts.Realtime {
		for range n {
			s := r.eng.Step(r.dt)
			r.clock += r.dt
			r.print(s)
			if untilIdle && s.Phase == engine.Idle {
				break
			}
		}
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	p := &pacer{r: r, remaining: n, untilIdle: untilIdle, stop: cancel}
	err := engine.Loop(loopCtx, p, fps)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// pacer adapts the runner to engine.Loop, stopping the loop once its frame
// budget is spent.
type pacer struct {
	r         *Runner
	remaining int
	untilIdle bool
	done      bool
	stop      func()
}

func (p *pacer) Step(dt time.Duration) engine.State {
	if p.done {
		return p.r.eng.State()
	}
	s := p.r.eng.Step(dt)
	p.r.clock += dt
	p.r.print(s)
	p.remaining--
	if p.remaining <= 0 || (p.untilIdle && s.Phase == engine.Idle) {
		p.done = true
		p.stop()
	}
	return s
}

func (r *Runner) print(s engine.State) {
	fmt.Fprintf(r.opts.Out, "t=%8.3f frame=%-5d phase=%-8s pos=%10.3f vel=%10.3f index=%d target=%d\n",
		r.clock.Seconds(), s.Frame, s.Phase, s.Position, s.Velocity, s.ActiveSnapIndex, s.Target)
}

func (r *Runner) note(msg string) {
	fmt.Fprintf(r.opts.Out, "# %s\n", msg)
}

func check(e *engine.Engine, want Expect) error {
	s := e.State()
	if want.Phase != "" && s.Phase.String() != want.Phase {
		return fmt.Errorf("%w: phase %s, want %s", ErrExpectation, s.Phase, want.Phase)
	}
	if want.Index != nil && s.ActiveSnapIndex != *want.Index {
		return fmt.Errorf("%w: index %d, want %d", ErrExpectation, s.ActiveSnapIndex, *want.Index)
	}
	if want.Target != nil && s.Target != *want.Target {
		return fmt.Errorf("%w: target %d, want %d", ErrExpectation, s.Target, *want.Target)
	}
	if want.Position != nil && math.Abs(s.Position-*want.Position) > want.Tolerance {
		return fmt.Errorf("%w: position %g, want %g±%g", ErrExpectation, s.Position, *want.Position, want.Tolerance)
	}
	if want.Below != nil && !(s.Position < *want.Below) {
		return fmt.Errorf("%w: position %g, want below %g", ErrExpectation, s.Position, *want.Below)
	}
	if want.Above != nil && !(s.Position > *want.Above) {
		return fmt.Errorf("%w: position %g, want above %g", ErrExpectation, s.Position, *want.Above)
	}
	if want.Pulses != nil && e.HapticsFired() != *want.Pulses {
		return fmt.Errorf("%w: %d pulses, want %d", ErrExpectation, e.HapticsFired(), *want.Pulses)
	}
	return nil
}
