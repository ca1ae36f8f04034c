// Package export renders the committed strokes of a canvas to files.
package export

import (
	"fmt"
	"io"

	"InkBoard/internal/state"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth  = 297.0 // A4 landscape, mm
	pageHeight = 210.0
	pageMargin = 10.0
)

// PDF writes the canvas onto a single A4 landscape page, scaled to fit inside
// the margins. Empty strokes are skipped.
func PDF(w io.Writer, c *state.Canvas) error {
	area := c.Area()
	scale := fitScale(float64(area.Width()), float64(area.Height()),
		pageWidth-2*pageMargin, pageHeight-2*pageMargin)

	p := gofpdf.New("L", "mm", "A4", "")
	p.SetTitle("InkBoard", true)
	p.AddPage()
	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")

	for _, st := range c.Strokes() {
		if st.Empty() {
			continue
		}
		col := st.Style.Color
		p.SetDrawColor(int(col.R), int(col.G), int(col.B))
		if col.A < 255 {
			p.SetAlpha(float64(col.A)/255, "Normal")
		} else {
			p.SetAlpha(1, "Normal")
		}
		p.SetLineWidth(float64(st.Style.Width) * scale)

		for _, seg := range st.Segments {
			x1, y1 := toPage(seg.A.X-area.Min.X, seg.A.Y-area.Min.Y, scale)
			x2, y2 := toPage(seg.B.X-area.Min.X, seg.B.Y-area.Min.Y, scale)
			p.Line(x1, y1, x2, y2)
		}
	}

	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func toPage(x, y float32, scale float64) (float64, float64) {
	return pageMargin + float64(x)*scale, pageMargin + float64(y)*scale
}

// fitScale returns the largest uniform scale that fits a w x h box into
// maxW x maxH.
func fitScale(w, h, maxW, maxH float64) float64 {
	if w <= 0 || h <= 0 {
		return 1
	}
	return min(maxW/w, maxH/h)
}
