// Package overlay draws removed seams on top of the source image.
//
// Seams come from [carve.Carver.History], whose points are already in
// source coordinates, so the overlay lines up with the unmodified input.
// Vertical seams are drawn in red and horizontal seams in blue.
package overlay

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"

	"github.com/matzehuels/seamcarver/pkg/carve"
)

// Default seam colors.
var (
	VerticalColor   = color.RGBA{R: 0xff, A: 0xff}
	HorizontalColor = color.RGBA{B: 0xff, A: 0xff}
)

// Options control how seams are drawn.
type Options struct {
	// LineWidth above 1 strokes each seam as an anti-aliased polyline.
	// At 1 or below every seam pixel is set exactly.
	LineWidth float64
	// Dim in [0, 1) darkens the background so dense seams stay readable.
	Dim float64
}

// Draw returns a copy of src with every seam in history drawn on top.
// Seam points are relative to the top-left of src, so the copy starts at
// (0,0) whatever the bounds of src.
func Draw(src image.Image, history []carve.Seam, opts Options) image.Image {
	b := src.Bounds()
	base := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(base, base.Bounds(), src, b.Min, draw.Src)
	dc := gg.NewContextForRGBA(base)

	if opts.Dim > 0 && opts.Dim < 1 {
		dc.SetRGBA(0, 0, 0, opts.Dim)
		dc.DrawRectangle(0, 0, float64(dc.Width()), float64(dc.Height()))
		dc.Fill()
	}

	for _, s := range history {
		if s.Empty() {
			continue
		}
		c := VerticalColor
		if s.Axis == carve.Horizontal {
			c = HorizontalColor
		}
		dc.SetColor(c)

		if opts.LineWidth <= 1 {
			for _, p := range s.Points {
				dc.SetPixel(p.X, p.Y)
			}
			continue
		}

		dc.SetLineWidth(opts.LineWidth)
		dc.SetLineCap(gg.LineCapRound)
		for i, p := range s.Points {
			x, y := float64(p.X)+0.5, float64(p.Y)+0.5
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
	}
	return dc.Image()
}
