package export

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"

	"InkBoard/internal/state"

	"fyne.io/fyne/v2"
	"golang.org/x/image/vector"
)

// capSides is the number of sides of the polygon approximating a round cap.
const capSides = 12

var ErrBadScale = errors.New("export: scale must be positive")

// Raster paints the canvas at scale pixels per logical unit onto a white
// image. Each segment becomes a quad of the stroke's width with a round cap
// at both ends, so consecutive segments join without gaps.
func Raster(c *state.Canvas, scale float32) (*image.RGBA, error) {
	if scale <= 0 || math.IsInf(float64(scale), 0) || math.IsNaN(float64(scale)) {
		return nil, ErrBadScale
	}
	area := c.Area()
	w := int(math.Ceil(float64(area.Width() * scale)))
	h := int(math.Ceil(float64(area.Height() * scale)))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("export: empty image %dx%d", w, h)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	for _, st := range c.Strokes() {
		if st.Empty() {
			continue
		}
		z := vector.NewRasterizer(w, h)
		radius := st.Style.Width * scale / 2
		for _, seg := range st.Segments {
			a := seg.A.Subtract(area.Min)
			b := seg.B.Subtract(area.Min)
			a = fyne.NewPos(a.X*scale, a.Y*scale)
			b = fyne.NewPos(b.X*scale, b.Y*scale)
			addQuad(z, a, b, radius)
			addDisc(z, a, radius)
			addDisc(z, b, radius)
		}
		z.Draw(img, img.Bounds(), image.NewUniform(st.Style.Color), image.Point{})
	}
	return img, nil
}

// PNG encodes Raster(c, scale) to w.
func PNG(w io.Writer, c *state.Canvas, scale float32) error {
	img, err := Raster(c, scale)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// addQuad adds the rectangle of half-width r around a-b. Degenerate
// segments add nothing; their caps cover them.
func addQuad(z *vector.Rasterizer, a, b fyne.Position, r float32) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return
	}
	nx, ny := -dy/l*r, dx/l*r
	// Same winding as addDisc so overlapping coverage adds up.
	z.MoveTo(a.X-nx, a.Y-ny)
	z.LineTo(b.X-nx, b.Y-ny)
	z.LineTo(b.X+nx, b.Y+ny)
	z.LineTo(a.X+nx, a.Y+ny)
	z.ClosePath()
}

func addDisc(z *vector.Rasterizer, c fyne.Position, r float32) {
	for i := 0; i <= capSides; i++ {
		t := 2 * math.Pi * float64(i) / capSides
		x := c.X + r*float32(math.Cos(t))
		y := c.Y + r*float32(math.Sin(t))
		if i == 0 {
			z.MoveTo(x, y)
			continue
		}
		z.LineTo(x, y)
	}
	z.ClosePath()
}
