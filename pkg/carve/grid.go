package carve

import (
	"fmt"
	"image"
	"image/color"
)

// Grid is the 8-connected pixel mesh being carved. It owns every Node; nodes
// refer to each other through arena indices, and Border fills in for the frame.
//
// A Grid only ever shrinks. It is not safe for concurrent use.
type Grid struct {
	width, height int
	nodes         []Node
	rows          [][]NodeID

	energies memo
	version  uint64
}

// NewGrid builds a grid from row-major pixels. Every row must have the same,
// non-zero length.
//
// Energies are computed once on construction so that EnergyAt is meaningful
// before the first carving cycle.
func NewGrid(pixels [][]color.RGBA) (*Grid, error) {
	if len(pixels) == 0 || len(pixels[0]) == 0 {
		return nil, ErrEmptyImage
	}
	h, w := len(pixels), len(pixels[0])
	for _, row := range pixels {
		if len(row) != w {
			return nil, ErrNonRectangular
		}
	}

	g := &Grid{
		width:  w,
		height: h,
		nodes:  make([]Node, 0, w*h),
		rows:   make([][]NodeID, h),
	}
	for y, row := range pixels {
		g.rows[y] = make([]NodeID, w)
		for x, c := range row {
			g.rows[y][x] = NodeID(len(g.nodes))
			g.nodes = append(g.nodes, Node{Color: c, Origin: image.Pt(x, y)})
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.link(x, y)
		}
	}
	g.RefreshEnergy()
	return g, nil
}

// FromImage builds a grid from the pixels inside img.Bounds().
func FromImage(img image.Image) (*Grid, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	pixels := make([][]color.RGBA, b.Dy())
	for y := range pixels {
		pixels[y] = make([]color.RGBA, b.Dx())
		for x := range pixels[y] {
			pixels[y][x] = color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
		}
	}
	return NewGrid(pixels)
}

// Width returns the current number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the current number of rows.
func (g *Grid) Height() int { return g.height }

// Bounds returns the current extent of the grid as a rectangle at the origin.
func (g *Grid) Bounds() image.Rectangle { return image.Rect(0, 0, g.width, g.height) }

// ID returns the node at (x, y), or Border if the coordinate is outside the grid.
func (g *Grid) ID(x, y int) NodeID {
	if y < 0 || y >= g.height || x < 0 || x >= g.width {
		return Border
	}
	return g.rows[y][x]
}

// Node returns the node stored under id. It returns nil for Border.
func (g *Grid) Node(id NodeID) *Node {
	if id == Border || int(id) >= len(g.nodes) {
		return nil
	}
	return &g.nodes[id]
}

// Neighbor follows link l from id. Border links back to itself.
func (g *Grid) Neighbor(id NodeID, l Link) NodeID {
	if id == Border {
		return Border
	}
	return g.nodes[id].links[l]
}

// Brightness returns the brightness of id; Border is 0.
func (g *Grid) Brightness(id NodeID) float64 {
	if id == Border {
		return 0
	}
	return Brightness(g.nodes[id].Color)
}

// ColorAt returns the colour at (x, y). Out-of-range coordinates yield black.
func (g *Grid) ColorAt(x, y int) color.RGBA {
	id := g.ID(x, y)
	if id == Border {
		return color.RGBA{A: 0xff}
	}
	return g.nodes[id].Color
}

// OriginAt returns the source-image coordinate of the pixel now at (x, y).
func (g *Grid) OriginAt(x, y int) (image.Point, bool) {
	id := g.ID(x, y)
	if id == Border {
		return image.Point{}, false
	}
	return g.nodes[id].Origin, true
}

// Version counts completed seam removals. Caches built against an older
// version are stale.
func (g *Grid) Version() uint64 { return g.version }

// link rewires all eight neighbour slots of the cell at (x, y) from the row
// table.
func (g *Grid) link(x, y int) {
	n := &g.nodes[g.rows[y][x]]
	for _, l := range Links {
		off := l.Offset()
		n.links[l] = g.ID(x+off.X, y+off.Y)
	}
}

// RemoveSeam excises the seam from the grid and shrinks the matching
// dimension by one. Only the cells next to the excised path are rewired, and
// every coordinate-keyed cache is invalidated afterwards.
func (g *Grid) RemoveSeam(s Seam) error {
	if err := g.checkSeam(s); err != nil {
		return err
	}
	switch s.Axis {
	case Vertical:
		g.removeVertical(s)
	case Horizontal:
		g.removeHorizontal(s)
	}
	g.version++
	g.energies.reset(g.width, g.height)
	return nil
}

func (g *Grid) removeVertical(s Seam) {
	for y, p := range s.Points {
		row := g.rows[y]
		g.release(row[p.X])
		g.rows[y] = append(row[:p.X], row[p.X+1:]...)
	}
	g.width--

	for y := 0; y < g.height; y++ {
		lo, hi := s.window(y)
		for x := max(lo-1, 0); x <= min(hi+1, g.width-1); x++ {
			g.link(x, y)
		}
	}
}

func (g *Grid) removeHorizontal(s Seam) {
	for x, p := range s.Points {
		g.release(g.rows[p.Y][x])
		for y := p.Y; y < g.height-1; y++ {
			g.rows[y][x] = g.rows[y+1][x]
		}
	}
	g.rows = g.rows[:g.height-1]
	g.height--

	for x := 0; x < g.width; x++ {
		lo, hi := s.window(x)
		for y := max(lo-1, 0); y <= min(hi+1, g.height-1); y++ {
			g.link(x, y)
		}
	}
}

// release detaches an excised node from the mesh. Its arena slot is not reused.
func (g *Grid) release(id NodeID) {
	n := &g.nodes[id]
	for _, l := range Links {
		n.links[l] = Border
	}
}

// checkSeam verifies that s is a connected path that spans the grid along its
// axis and leaves at least one cell in the shrinking dimension.
func (g *Grid) checkSeam(s Seam) error {
	if s.Axis != Vertical && s.Axis != Horizontal {
		return fmt.Errorf("%w: unknown axis %d", ErrInvalidSeam, s.Axis)
	}
	length, lanes := s.Axis.dims(g.width, g.height)
	if lanes <= 1 {
		return fmt.Errorf("%w: %s seam on a grid with a single %s", ErrInvalidSeam, s.Axis, s.Axis.laneName())
	}
	if len(s.Points) != length {
		return fmt.Errorf("%w: %s seam has %d points, want %d", ErrInvalidSeam, s.Axis, len(s.Points), length)
	}
	prev := -1
	for i, p := range s.Points {
		step, lane := s.Axis.split(p)
		if step != i || lane < 0 || lane >= lanes {
			return fmt.Errorf("%w: point %d at %v is out of place", ErrInvalidSeam, i, p)
		}
		if prev >= 0 && (lane-prev > 1 || prev-lane > 1) {
			return fmt.Errorf("%w: point %d at %v is not adjacent to its predecessor", ErrInvalidSeam, i, p)
		}
		prev = lane
	}
	return nil
}
