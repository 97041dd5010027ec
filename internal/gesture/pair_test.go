package gesture

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/olivier-w/snapkit/internal/engine"
	"github.com/olivier-w/snapkit/internal/snap"
)

func newAxis(t *testing.T, points ...float64) *engine.Engine {
	t.Helper()
	cfg := snap.DefaultConfig()
	cfg.Points = points
	e, err := engine.New(cfg)
	if err != nil {
		t.Fatalf("engine.New returned error: %v", err)
	}
	return e
}

func TestPairSnapsEachAxisIndependently(t *testing.T) {
	p := NewPair(newAxis(t, -100, 0, 100), newAxis(t, 0, 200))
	if err := p.X.SnapTo(1); err != nil {
		t.Fatalf("SnapTo returned error: %v", err)
	}
	for !p.Idle() {
		p.Step(time.Second / 60)
	}

	t0 := time.Unix(0, 0)
	d := NewDrag2D(p, 0)
	if err := d.Begin(t0, mgl64.Vec2{0, 0}); err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if err := d.Move(t0.Add(16*time.Millisecond), mgl64.Vec2{-70, 40}); err != nil {
		t.Fatalf("Move returned error: %v", err)
	}
	if got := p.Position(); !got.ApproxEqual(mgl64.Vec2{-70, 40}) {
		t.Fatalf("expected {-70 40}, got %v", got)
	}
	if _, err := d.End(t0.Add(500 * time.Millisecond)); err != nil {
		t.Fatalf("End returned error: %v", err)
	}

	for i := 0; !p.Idle(); i++ {
		if i > 1200 {
			t.Fatal("pair did not settle")
		}
		p.Step(time.Second / 60)
	}
	if got := p.Position(); !got.ApproxEqual(mgl64.Vec2{-100, 0}) {
		t.Fatalf("expected {-100 0}, got %v", got)
	}
	if p.X.ActiveSnapIndex() != 0 || p.Y.ActiveSnapIndex() != 0 {
		t.Fatalf("unexpected indexes %d, %d", p.X.ActiveSnapIndex(), p.Y.ActiveSnapIndex())
	}
}

func TestPairJoinsAxisErrors(t *testing.T) {
	p := NewPair(newAxis(t, 0, 100), newAxis(t, 0, 100))
	p.Dispose()
	err := p.DragStart()
	if !errors.Is(err, engine.ErrDisposed) {
		t.Fatalf("expected ErrDisposed, got %v", err)
	}
}

func TestPairDragStartLeavesNoAxisDragging(t *testing.T) {
	t0 := time.Unix(0, 0)

	x, y := newAxis(t, 0, 100), newAxis(t, 0, 100)
	x.Dispose()
	d := NewDrag2D(NewPair(x, y), 0)
	if err := d.Begin(t0, mgl64.Vec2{}); !errors.Is(err, engine.ErrDisposed) {
		t.Fatalf("expected ErrDisposed, got %v", err)
	}
	if d.active {
		t.Fatal("expected drag to stay inactive")
	}
	if y.Phase() == engine.Dragging {
		t.Fatal("expected live Y axis not to be left dragging")
	}

	x, y = newAxis(t, 0, 100), newAxis(t, 0, 100)
	y.Dispose()
	p := NewPair(x, y)
	if err := NewDrag2D(p, 0).Begin(t0, mgl64.Vec2{}); !errors.Is(err, engine.ErrDisposed) {
		t.Fatalf("expected ErrDisposed, got %v", err)
	}
	if x.Phase() == engine.Dragging {
		t.Fatal("expected X axis to be released when Y refuses")
	}
	for i := 0; x.Phase() != engine.Idle; i++ {
		if i > 600 {
			t.Fatal("released X axis did not come to rest")
		}
		x.Step(time.Second / 60)
	}
}
