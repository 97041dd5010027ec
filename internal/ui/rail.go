package ui

import (
	"math"
	"strings"

	"github.com/olivier-w/snapkit/internal/snap"
)

const (
	railLeft     = 2 // matches the two-space indent of every view line
	minRailWidth = 20
)

// rail maps surface units onto terminal columns.
type rail struct {
	lo, hi float64
	width  int
}

// newRail sizes the visible range to the drag bounds plus room for overdrag.
func newRail(cfg snap.Config, termWidth int) rail {
	b, ok := cfg.DragBounds()
	if !ok {
		if cfg.DecayClamp != nil {
			b = *cfg.DecayClamp
		} else {
			b = snap.Bounds{Min: 0, Max: 100}
		}
	}
	pad := b.Span() * 0.25
	if cfg.MaxOverdrag > 0 {
		pad = math.Min(pad, cfg.MaxOverdrag)
	}
	if pad <= 0 {
		pad = 10
	}
	w := termWidth - 2*railLeft
	if w < minRailWidth {
		w = minRailWidth
	}
	return rail{lo: b.Min - pad, hi: b.Max + pad, width: w}
}

// cell returns the column for position, clamped onto the rail.
func (r rail) cell(pos float64) int {
	v := snap.Interpolate(pos, []float64{r.lo, r.hi}, []float64{0, float64(r.width - 1)}, snap.ExtrapolateClamp)
	return int(math.Round(v))
}

// position returns the surface position under terminal column x.
func (r rail) position(x int) float64 {
	return snap.Interpolate(float64(x-railLeft), []float64{0, float64(r.width - 1)}, []float64{r.lo, r.hi}, snap.ExtrapolateExtend)
}

// render draws snap points and the knob. active is highlighted.
func (r rail) render(points []float64, active int, pos float64) string {
	cells := make([]string, r.width)
	for i := range cells {
		cells[i] = railStyle.Render("─")
	}
	for i, p := range points {
		c := r.cell(p)
		if i == active {
			cells[c] = activePointStyle.Render("┃")
		} else {
			cells[c] = pointStyle.Render("│")
		}
	}
	cells[r.cell(pos)] = knobStyle.Render("●")
	return strings.Join(cells, "")
}

// labels writes each snap index under its column.
func (r rail) labels(points []float64) string {
	line := []rune(strings.Repeat(" ", r.width))
	for i, p := range points {
		if i > 8 {
			break
		}
		line[r.cell(p)] = rune('1' + i)
	}
	return string(line)
}
