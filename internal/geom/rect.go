// Package geom holds the small amount of plane geometry the board needs on
// top of fyne's Position and Size types.
package geom

import (
	"fmt"

	"fyne.io/fyne/v2"
)

// Rect is an axis-aligned rectangle in logical canvas space.
type Rect struct {
	Min fyne.Position `json:"min"`
	Max fyne.Position `json:"max"`
}

// RectFromMinSize returns the rectangle starting at min and extending by size.
func RectFromMinSize(min fyne.Position, size fyne.Size) Rect {
	return Rect{
		Min: min,
		Max: fyne.NewPos(min.X+size.Width, min.Y+size.Height),
	}
}

// RectFromCenterSize returns the rectangle of the given size centered on center.
func RectFromCenterSize(center fyne.Position, size fyne.Size) Rect {
	hw, hh := size.Width/2, size.Height/2
	return Rect{
		Min: fyne.NewPos(center.X-hw, center.Y-hh),
		Max: fyne.NewPos(center.X+hw, center.Y+hh),
	}
}

// Bounds returns the smallest rectangle containing every point. ok is false
// when no points are given.
func Bounds(points ...fyne.Position) (r Rect, ok bool) {
	if len(points) == 0 {
		return Rect{}, false
	}
	r = Rect{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	return r, true
}

func (r Rect) String() string {
	return fmt.Sprintf("[(%g, %g) - (%g, %g)]", r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}

func (r Rect) Width() float32  { return r.Max.X - r.Min.X }
func (r Rect) Height() float32 { return r.Max.Y - r.Min.Y }

// Size returns the width and height of the rectangle.
func (r Rect) Size() fyne.Size {
	return fyne.NewSize(r.Width(), r.Height())
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() fyne.Position {
	return fyne.NewPos((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

// Translate moves the rectangle by (dx, dy) without changing its size.
func (r Rect) Translate(dx, dy float32) Rect {
	return Rect{
		Min: r.Min.AddXY(dx, dy),
		Max: r.Max.AddXY(dx, dy),
	}
}

// Expand grows the rectangle by pad on every side.
func (r Rect) Expand(pad float32) Rect {
	return Rect{
		Min: r.Min.SubtractXY(pad, pad),
		Max: r.Max.AddXY(pad, pad),
	}
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: fyne.NewPos(min(r.Min.X, o.Min.X), min(r.Min.Y, o.Min.Y)),
		Max: fyne.NewPos(max(r.Max.X, o.Max.X), max(r.Max.Y, o.Max.Y)),
	}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p fyne.Position) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Overlaps reports whether the two rectangles share at least one point.
func (r Rect) Overlaps(o Rect) bool {
	return !(r.Max.X < o.Min.X || o.Max.X < r.Min.X ||
		r.Max.Y < o.Min.Y || o.Max.Y < r.Min.Y)
}

// CircleTouchesRect reports whether any point of r is within radius of
// center.
func CircleTouchesRect(center fyne.Position, radius float32, r Rect) bool {
	nearest := fyne.NewPos(clamp(center.X, r.Min.X, r.Max.X), clamp(center.Y, r.Min.Y, r.Max.Y))
	return Distance(center, nearest) <= radius
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}
