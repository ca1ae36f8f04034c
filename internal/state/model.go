package state

import (
	"image/color"

	"InkBoard/internal/geom"

	"fyne.io/fyne/v2"
)

// StrokeStyle is the pen a stroke is painted with.
type StrokeStyle struct {
	Color color.NRGBA `json:"color"`
	Width float32     `json:"width"`
}

// DefaultStyle is a 2px black pen.
var DefaultStyle = StrokeStyle{
	Color: color.NRGBA{A: 255},
	Width: 2,
}

// Segment is one drawn micro-segment from A to B. Segments are the unit of
// erasure: the eraser removes whole segments, never parts of one.
type Segment struct {
	A fyne.Position `json:"a"`
	B fyne.Position `json:"b"`
}

// NewSegment returns the segment a-b.
func NewSegment(a, b fyne.Position) Segment {
	return Segment{A: a, B: b}
}

// Distance returns the distance from p to the closest point of the segment.
func (s Segment) Distance(p fyne.Position) float32 {
	return geom.SegmentDistance(p, s.A, s.B)
}

// Stroke is a committed, styled run of segments.
type Stroke struct {
	ID       string      `json:"id"`
	Style    StrokeStyle `json:"style"`
	Segments []Segment   `json:"segments"`
}

// Clone returns a copy of the stroke that shares no memory with s.
func (s Stroke) Clone() Stroke {
	if s.Segments != nil {
		s.Segments = append(make([]Segment, 0, len(s.Segments)), s.Segments...)
	}
	return s
}

// Empty reports whether the stroke has no segments left, which happens when
// the eraser removed all of them.
func (s Stroke) Empty() bool {
	return len(s.Segments) == 0
}

// Bounds returns the bounding box of the stroke's segment endpoints. ok is
// false for an empty stroke.
func (s Stroke) Bounds() (r geom.Rect, ok bool) {
	points := make([]fyne.Position, 0, 2*len(s.Segments))
	for _, seg := range s.Segments {
		points = append(points, seg.A, seg.B)
	}
	return geom.Bounds(points...)
}
