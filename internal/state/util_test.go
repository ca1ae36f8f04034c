package state

import (
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var black2 = StrokeStyle{Color: color.NRGBA{A: 255}, Width: 2}

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	opts = append(opts, cmpopts.EquateEmpty())
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func pt(x, y float32) fyne.Position { return fyne.NewPos(x, y) }

func seg(ax, ay, bx, by float32) Segment { return NewSegment(pt(ax, ay), pt(bx, by)) }

func strokesOf(c *Canvas) []Stroke {
	var out []Stroke
	for _, s := range c.Strokes() {
		out = append(out, s.Clone())
	}
	return out
}

func drag(positions ...fyne.Position) []Pointer {
	frames := make([]Pointer, 0, len(positions)+1)
	for _, p := range positions {
		frames = append(frames, Pointer{Pos: p, Present: true, Dragging: true})
	}
	return append(frames, Pointer{Present: true, DragStopped: true})
}

// canvasWith returns a canvas holding the given strokes, added without
// going through a history.
func canvasWith(strokes ...Stroke) *Canvas {
	c := NewCanvas(fyne.NewSize(100, 100))
	for _, s := range strokes {
		AddStroke{Stroke: s}.Execute(c)
	}
	return c
}
