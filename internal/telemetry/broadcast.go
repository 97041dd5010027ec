package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/olivier-w/snapkit/internal/engine"
)

// Envelope types.
const (
	TypeInit    = "state_init"
	TypeFrame   = "frame"
	TypePhase   = "phase"
	TypeSettled = "settled"
)

type envelope struct {
	Type string     `json:"type"`
	Ts   *time.Time `json:"ts,omitempty"`
	Data any        `json:"data,omitempty"`
}

type frameData struct {
	Position float64 `json:"position"`
	Velocity float64 `json:"velocity"`
	Frame    uint64  `json:"frame"`
}

type phaseData struct {
	From     engine.Phase `json:"from"`
	To       engine.Phase `json:"to"`
	Position float64      `json:"position"`
	Target   int          `json:"target"`
}

type settledData struct {
	Index    int     `json:"index"`
	Position float64 `json:"position"`
}

// Sink receives serialized envelopes. *Hub satisfies it.
type Sink interface {
	BroadcastBytes(msg []byte)
}

// Broadcaster turns the engine's committed states into envelopes. Frame
// envelopes are coalesced latest-wins and flushed at most once per window;
// phase and settled envelopes go out immediately, after any pending frame.
type Broadcaster struct {
	logger *slog.Logger
	sink   Sink
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	last    engine.State
	primed  bool
	pending *frameData
	pendAt  time.Time
}

// NewBroadcaster returns a broadcaster writing to sink. A zero window sends
// every frame.
func NewBroadcaster(logger *slog.Logger, sink Sink, window time.Duration) *Broadcaster {
	return &Broadcaster{logger: logger, sink: sink, window: window, now: time.Now}
}

// Observe records one committed state. It never blocks and is meant to be
// passed to engine.WithListener.
func (b *Broadcaster) Observe(s engine.State) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev, primed := b.last, b.primed
	b.last, b.primed = s, true
	at := b.now().UTC()

	if primed && s.Phase != prev.Phase {
		b.flushLocked()
		b.sendLocked(TypePhase, at, phaseData{From: prev.Phase, To: s.Phase, Position: s.Position, Target: s.Target})
		if s.Phase == engine.Idle && prev.Phase == engine.Settling {
			b.sendLocked(TypeSettled, at, settledData{Index: s.ActiveSnapIndex, Position: s.Position})
		}
		return
	}
	if primed && s.Frame == prev.Frame {
		return
	}

	b.pending = &frameData{Position: s.Position, Velocity: s.Velocity, Frame: s.Frame}
	b.pendAt = at
	if b.window <= 0 {
		b.flushLocked()
	}
}

// Flush sends the pending frame, if any.
func (b *Broadcaster) Flush() {
	b.mu.Lock()
	b.flushLocked()
	b.mu.Unlock()
}

// Run flushes coalesced frames every window until ctx is canceled.
func (b *Broadcaster) Run(ctx context.Context) {
	if b.window <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(b.window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			b.Flush()
			return
		case <-ticker.C:
			b.Flush()
		}
	}
}

func (b *Broadcaster) flushLocked() {
	if b.pending == nil {
		return
	}
	b.sendLocked(TypeFrame, b.pendAt, *b.pending)
	b.pending = nil
}

func (b *Broadcaster) sendLocked(typ string, at time.Time, data any) {
	msg, err := json.Marshal(envelope{Type: typ, Ts: &at, Data: data})
	if err != nil {
		b.logger.Warn("telemetry marshal failed", "error", err, "type", typ)
		return
	}
	b.sink.BroadcastBytes(msg)
}
