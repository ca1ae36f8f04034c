package state

import (
	"encoding/json"
	"fmt"
	"iter"

	"InkBoard/internal/geom"

	"fyne.io/fyne/v2"
)

const (
	MinZoom     = 0.01
	MaxZoom     = 10.0
	DefaultZoom = 0.85

	// eraseSlack widens the per-stroke bounding box in the erase broad phase
	// so float rounding can never skip a segment the exact test would hit.
	eraseSlack = 1e-3
)

// Pointer is the already-resolved input for one frame.
type Pointer struct {
	Pos         fyne.Position // logical canvas coordinates, valid when Present
	Present     bool
	Dragging    bool
	DragStopped bool
}

// Canvas owns the committed strokes, the stroke being drawn and the
// viewport into a fixed logical area.
type Canvas struct {
	area     geom.Rect
	viewport geom.Rect
	zoom     float32
	strokes  []Stroke

	inProgress []Segment
	lastPos    *fyne.Position
}

// NewCanvas returns an empty canvas of the given logical size, viewed at
// DefaultZoom.
func NewCanvas(size fyne.Size) *Canvas {
	c := &Canvas{
		area:     geom.RectFromMinSize(fyne.NewPos(0, 0), size),
		viewport: BuildViewport(size, DefaultZoom),
	}
	c.UpdateZoom()
	return c
}

// BuildViewport returns the rectangle of logical space visible at zoom,
// centered on the canvas. Zoom above 1 shows less of the canvas.
func BuildViewport(size fyne.Size, zoom float32) geom.Rect {
	center := fyne.NewPos(size.Width/2, size.Height/2)
	return geom.RectFromCenterSize(center, fyne.NewSize(size.Width/zoom, size.Height/zoom))
}

func (c *Canvas) Area() geom.Rect     { return c.area }
func (c *Canvas) Viewport() geom.Rect { return c.viewport }
func (c *Canvas) Zoom() float32       { return c.zoom }

// UpdateZoom recomputes zoom from the area and viewport widths. Call it
// after anything changes the viewport directly.
func (c *Canvas) UpdateZoom() {
	c.zoom = c.area.Width() / c.viewport.Width()
}

// SetViewport replaces the viewport, as a pan or pinch gesture would, and
// keeps zoom consistent with it.
func (c *Canvas) SetViewport(r geom.Rect) {
	c.viewport = r
	c.UpdateZoom()
}

// SetZoom clamps z to [MinZoom, MaxZoom] and recenters the viewport at that
// zoom level.
func (c *Canvas) SetZoom(z float32) {
	z = max(MinZoom, min(z, MaxZoom))
	c.SetViewport(BuildViewport(c.area.Size(), z))
}

// Pan moves the viewport by (dx, dy) logical units.
func (c *Canvas) Pan(dx, dy float32) {
	c.SetViewport(c.viewport.Translate(dx, dy))
}

// ScreenScale returns the uniform logical-to-screen scale that fits the
// viewport into a widget of the given size.
func (c *Canvas) ScreenScale(screen fyne.Size) float32 {
	if c.viewport.Width() <= 0 || c.viewport.Height() <= 0 {
		return 0
	}
	return min(screen.Width/c.viewport.Width(), screen.Height/c.viewport.Height())
}

// ToScreen maps a logical canvas position to a position inside a widget of
// size screen showing the viewport.
func (c *Canvas) ToScreen(p fyne.Position, screen fyne.Size) fyne.Position {
	s := c.ScreenScale(screen)
	center := c.viewport.Center()
	return fyne.NewPos(
		(p.X-center.X)*s+screen.Width/2,
		(p.Y-center.Y)*s+screen.Height/2,
	)
}

// ToCanvas is the inverse of ToScreen.
func (c *Canvas) ToCanvas(p fyne.Position, screen fyne.Size) fyne.Position {
	s := c.ScreenScale(screen)
	center := c.viewport.Center()
	if s == 0 {
		return center
	}
	return fyne.NewPos(
		(p.X-screen.Width/2)/s+center.X,
		(p.Y-screen.Height/2)/s+center.Y,
	)
}

// Len returns the number of strokes, empty ones included.
func (c *Canvas) Len() int { return len(c.strokes) }

// Stroke returns the stroke at index i.
func (c *Canvas) Stroke(i int) Stroke { return c.strokes[i] }

// Strokes iterates the strokes in append order.
func (c *Canvas) Strokes() iter.Seq2[int, Stroke] {
	return func(yield func(int, Stroke) bool) {
		for i, s := range c.strokes {
			if !yield(i, s) {
				return
			}
		}
	}
}

// InProgress returns the segments of the stroke currently being drawn. The
// slice is only valid until the next capture call.
func (c *Canvas) InProgress() []Segment { return c.inProgress }

// Clone returns a deep copy of the committed state. The in-progress stroke
// is not copied.
func (c *Canvas) Clone() *Canvas {
	out := &Canvas{
		area:     c.area,
		viewport: c.viewport,
		zoom:     c.zoom,
		strokes:  make([]Stroke, len(c.strokes)),
	}
	for i, s := range c.strokes {
		out.strokes[i] = s.Clone()
	}
	return out
}

// CapturePen feeds one frame of pen input. While dragging, every movement
// to a new position appends a segment from the previous position. When the
// drag stops the collected segments become a stroke with the given style,
// returned as an AddStroke action that the caller must run. A drag that
// never moved produces no action.
func (c *Canvas) CapturePen(p Pointer, style StrokeStyle) Action {
	if p.Present && p.Dragging {
		if c.lastPos != nil && geom.Distance(*c.lastPos, p.Pos) > 0 {
			c.inProgress = append(c.inProgress, NewSegment(*c.lastPos, p.Pos))
		}
		pos := p.Pos
		c.lastPos = &pos
	}

	if !p.DragStopped {
		return nil
	}
	c.lastPos = nil
	if len(c.inProgress) == 0 {
		return nil
	}

	segments := c.inProgress
	c.inProgress = nil
	return AddStroke{Stroke: Stroke{
		ID:       newID(),
		Style:    style,
		Segments: segments,
	}}
}

// CaptureErase hit-tests an eraser of the given radius centered on the
// pointer against every stroke. Each stroke that loses at least one segment
// yields a ModifyStroke action, in stroke order. Segments farther than
// radius are kept. The canvas is not modified.
func (c *Canvas) CaptureErase(p Pointer, radius float32) []Action {
	if !p.Present || !p.Dragging {
		return nil
	}

	var actions []Action
	for i, s := range c.strokes {
		bounds, ok := s.Bounds()
		if !ok || !geom.CircleTouchesRect(p.Pos, radius, bounds.Expand(eraseSlack)) {
			continue
		}

		kept := make([]Segment, 0, len(s.Segments))
		for _, seg := range s.Segments {
			if seg.Distance(p.Pos) > radius {
				kept = append(kept, seg)
			}
		}
		if len(kept) == len(s.Segments) {
			continue
		}

		before := s.Clone()
		after := Stroke{ID: s.ID, Style: s.Style, Segments: kept}
		actions = append(actions, ModifyStroke{Before: &before, After: &after, Index: i})
	}
	return actions
}

func (c *Canvas) checkIndex(i int, op string) {
	if i < 0 || i >= len(c.strokes) {
		panic(fmt.Sprintf("state: %s: stroke index %d out of range [0, %d)", op, i, len(c.strokes)))
	}
}

type canvasJSON struct {
	Area     geom.Rect `json:"area"`
	Viewport geom.Rect `json:"viewport"`
	Zoom     float32   `json:"zoom"`
	Strokes  []Stroke  `json:"strokes"`
}

func (c *Canvas) MarshalJSON() ([]byte, error) {
	strokes := c.strokes
	if strokes == nil {
		strokes = []Stroke{}
	}
	return json.Marshal(canvasJSON{
		Area:     c.area,
		Viewport: c.viewport,
		Zoom:     c.zoom,
		Strokes:  strokes,
	})
}

func (c *Canvas) UnmarshalJSON(data []byte) error {
	var v canvasJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Area.Width() <= 0 || v.Area.Height() <= 0 {
		return fmt.Errorf("%w: canvas area %v is empty", ErrBadSnapshot, v.Area)
	}
	if v.Viewport.Width() <= 0 || v.Viewport.Height() <= 0 {
		return fmt.Errorf("%w: viewport %v is empty", ErrBadSnapshot, v.Viewport)
	}
	*c = Canvas{
		area:     v.Area,
		viewport: v.Viewport,
		strokes:  v.Strokes,
	}
	// zoom is derived; the stored value is only informational.
	c.UpdateZoom()
	return nil
}
