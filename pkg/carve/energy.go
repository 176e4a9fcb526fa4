package carve

import (
	"image"
	"math"
)

// Gradients returns the horizontal and vertical Sobel-style brightness
// gradients around id. Missing neighbours count as Border, i.e. brightness 0.
func (g *Grid) Gradients(id NodeID) (horizontal, vertical float64) {
	b := func(l Link) float64 { return g.Brightness(g.Neighbor(id, l)) }
	horizontal = (b(TopLeft) + 2*b(Left) + b(BottomLeft)) - (b(TopRight) + 2*b(Right) + b(BottomRight))
	vertical = (b(TopLeft) + 2*b(Top) + b(TopRight)) - (b(BottomLeft) + 2*b(Bottom) + b(BottomRight))
	return horizontal, vertical
}

// ComputeEnergy evaluates the energy of id from its current neighbours without
// touching any cache. Border always has BorderEnergy.
func (g *Grid) ComputeEnergy(id NodeID) float64 {
	if id == Border {
		return BorderEnergy
	}
	h, v := g.Gradients(id)
	return math.Sqrt(h*h + v*v)
}

// RefreshEnergy recomputes the stored energy of every live node and clears the
// energy cache.
func (g *Grid) RefreshEnergy() {
	for y := 0; y < g.height; y++ {
		for _, id := range g.rows[y] {
			g.nodes[id].energy = g.ComputeEnergy(id)
		}
	}
	g.energies.reset(g.width, g.height)
}

// Energy returns the stored energy of id as of the last refresh.
func (g *Grid) Energy(id NodeID) float64 {
	if id == Border {
		return BorderEnergy
	}
	return g.nodes[id].energy
}

// EnergyAt returns the stored energy at (x, y) through the coordinate cache.
// Out-of-range coordinates report BorderEnergy.
func (g *Grid) EnergyAt(x, y int) float64 {
	id := g.ID(x, y)
	if id == Border {
		return BorderEnergy
	}
	p := image.Pt(x, y)
	if e, ok := g.energies.get(p); ok {
		return e
	}
	e := g.nodes[id].energy
	g.energies.put(p, e)
	return e
}

// EnergyGray maps an energy onto the 0-255 grey ramp used for energy views.
func EnergyGray(e float64) uint8 {
	if e <= 0 || math.IsNaN(e) {
		return 0
	}
	gray := math.Floor(e * 225 / MaxEnergy)
	if gray > 255 {
		return 255
	}
	return uint8(gray)
}
