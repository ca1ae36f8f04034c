package geom

import (
	"math"

	"fyne.io/fyne/v2"
)

// Distance returns the euclidean distance between two points.
func Distance(p, q fyne.Position) float32 {
	return float32(math.Hypot(float64(p.X-q.X), float64(p.Y-q.Y)))
}

// SegmentDistance returns the distance from p to the closest point of the
// closed segment a-b. A zero-length segment is treated as the point a.
func SegmentDistance(p, a, b fyne.Position) float32 {
	abx, aby := float64(b.X-a.X), float64(b.Y-a.Y)
	apx, apy := float64(p.X-a.X), float64(p.Y-a.Y)

	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return Distance(p, a)
	}

	t := (apx*abx + apy*aby) / lenSq
	t = math.Max(0, math.Min(1, t))

	cx := float64(a.X) + t*abx
	cy := float64(a.Y) + t*aby
	return float32(math.Hypot(float64(p.X)-cx, float64(p.Y)-cy))
}
