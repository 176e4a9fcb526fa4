package carve

import (
	"image"
	"image/color"
)

// SeamColor paints the marked seam in rendered frames.
var SeamColor = color.RGBA{R: 0xff, A: 0xff}

// Image renders the grid in its true colours.
func (g *Grid) Image() *image.RGBA {
	img := image.NewRGBA(g.Bounds())
	for y := 0; y < g.height; y++ {
		for x, id := range g.rows[y] {
			img.SetRGBA(x, y, g.nodes[id].Color)
		}
	}
	return img
}

// EnergyImage renders the stored energies as a greyscale ramp.
func (g *Grid) EnergyImage() *image.RGBA {
	img := image.NewRGBA(g.Bounds())
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			v := EnergyGray(g.EnergyAt(x, y))
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 0xff})
		}
	}
	return img
}

// Image renders the current frame in the selected view, with the marked seam
// painted in SeamColor.
func (c *Carver) Image() *image.RGBA {
	var img *image.RGBA
	if c.view == ViewEnergy {
		img = c.grid.EnergyImage()
	} else {
		img = c.grid.Image()
	}
	if c.state == Marked {
		for _, p := range c.marked.Points {
			img.SetRGBA(p.X, p.Y, SeamColor)
		}
	}
	return img
}
