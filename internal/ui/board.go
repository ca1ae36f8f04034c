package ui

import (
	"image/color"

	"InkBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

var (
	deskColor   = color.NRGBA{R: 245, G: 246, B: 248, A: 255}
	paperColor  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	eraserColor = color.NRGBA{R: 120, G: 120, B: 120, A: 200}
)

// Board draws a session and turns pointer input into session frames.
// Dragging feeds the active tool, scrolling pans the viewport.
type Board struct {
	widget.BaseWidget
	session *state.Session

	// ReadOnly boards only pan and zoom.
	ReadOnly bool

	hover   bool
	cursor  fyne.Position // widget coordinates, valid while hover
	drawing bool
}

var _ fyne.Widget = (*Board)(nil)
var _ fyne.Draggable = (*Board)(nil)
var _ fyne.Scrollable = (*Board)(nil)
var _ desktop.Hoverable = (*Board)(nil)
var _ desktop.Mouseable = (*Board)(nil)

// NewBoard returns a board widget for session.
func NewBoard(session *state.Session) *Board {
	b := &Board{session: session}
	b.ExtendBaseWidget(b)
	return b
}

func (b *Board) toCanvas(p fyne.Position) fyne.Position {
	var out fyne.Position
	size := b.Size()
	b.session.View(func(c *state.Canvas) { out = c.ToCanvas(p, size) })
	return out
}

func (b *Board) Dragged(e *fyne.DragEvent) {
	if b.ReadOnly {
		return
	}
	b.drawing = true
	b.cursor = e.Position
	b.session.Frame(state.Pointer{
		Pos:      b.toCanvas(e.Position),
		Present:  true,
		Dragging: true,
	})
	b.Refresh()
}

func (b *Board) DragEnd() {
	if b.ReadOnly {
		return
	}
	b.drawing = false
	b.session.Frame(state.Pointer{
		Pos:         b.toCanvas(b.cursor),
		Present:     b.hover,
		DragStopped: true,
	})
	b.Refresh()
}

// MouseDown starts the stroke at the press position rather than at the first
// drag event.
func (b *Board) MouseDown(e *desktop.MouseEvent) {
	if b.ReadOnly || e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.cursor = e.Position
	b.session.Frame(state.Pointer{
		Pos:      b.toCanvas(e.Position),
		Present:  true,
		Dragging: true,
	})
	b.Refresh()
}

// MouseUp ends the gesture. After a drag this repeats DragEnd, which is
// harmless; after a plain click it drops the pressed position.
func (b *Board) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.DragEnd()
}

func (b *Board) Scrolled(e *fyne.ScrollEvent) {
	origin := b.toCanvas(fyne.NewPos(0, 0))
	moved := b.toCanvas(fyne.NewPos(e.Scrolled.DX, e.Scrolled.DY))
	b.session.Pan(origin.X-moved.X, origin.Y-moved.Y)
	b.Refresh()
}

func (b *Board) MouseIn(e *desktop.MouseEvent) {
	b.hover = true
	b.cursor = e.Position
	b.Refresh()
}

func (b *Board) MouseMoved(e *desktop.MouseEvent) {
	b.cursor = e.Position
	if b.session.Tool() == state.ToolErase {
		b.Refresh()
	}
}

func (b *Board) MouseOut() {
	b.hover = false
	b.Refresh()
}

func (b *Board) CreateRenderer() fyne.WidgetRenderer {
	r := &boardRenderer{
		board:  b,
		desk:   canvas.NewRectangle(deskColor),
		paper:  canvas.NewRectangle(paperColor),
		eraser: canvas.NewCircle(color.Transparent),
	}
	r.eraser.StrokeColor = eraserColor
	r.eraser.StrokeWidth = 1
	r.build(b.Size())
	return r
}

type boardRenderer struct {
	board   *Board
	desk    *canvas.Rectangle
	paper   *canvas.Rectangle
	eraser  *canvas.Circle
	objects []fyne.CanvasObject
}

// build lays out every object for a widget of the given size. Strokes are
// rebuilt as plain lines each time, one per segment.
func (r *boardRenderer) build(size fyne.Size) {
	style := r.board.session.Style()
	tool := r.board.session.Tool()

	r.desk.Resize(size)
	r.desk.Move(fyne.NewPos(0, 0))
	objects := []fyne.CanvasObject{r.desk, r.paper}

	r.board.session.View(func(c *state.Canvas) {
		scale := c.ScreenScale(size)
		area := c.Area()
		topLeft := c.ToScreen(area.Min, size)
		bottomRight := c.ToScreen(area.Max, size)
		r.paper.Move(topLeft)
		r.paper.Resize(fyne.NewSize(bottomRight.X-topLeft.X, bottomRight.Y-topLeft.Y))

		for _, st := range c.Strokes() {
			for _, seg := range st.Segments {
				objects = append(objects, segmentLine(c, seg, st.Style, scale, size))
			}
		}
		// Ink in progress is painted with the style it will be committed with.
		for _, seg := range c.InProgress() {
			objects = append(objects, segmentLine(c, seg, style, scale, size))
		}

		if tool == state.ToolErase && r.board.hover && !r.board.ReadOnly {
			radius := style.Width * scale
			r.eraser.Move(r.board.cursor.SubtractXY(radius, radius))
			r.eraser.Resize(fyne.NewSize(2*radius, 2*radius))
			objects = append(objects, r.eraser)
		}
	})
	r.objects = objects
}

func segmentLine(c *state.Canvas, seg state.Segment, style state.StrokeStyle, scale float32, size fyne.Size) *canvas.Line {
	line := canvas.NewLine(style.Color)
	line.StrokeWidth = max(style.Width*scale, 1)
	line.Position1 = c.ToScreen(seg.A, size)
	line.Position2 = c.ToScreen(seg.B, size)
	return line
}

func (r *boardRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *boardRenderer) Layout(size fyne.Size) { r.build(size) }

func (r *boardRenderer) MinSize() fyne.Size { return fyne.NewSize(300, 300) }

func (r *boardRenderer) Refresh() {
	r.build(r.board.Size())
	canvas.Refresh(r.board)
}

func (r *boardRenderer) Destroy() {}
