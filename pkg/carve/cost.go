package carve

import (
	"image"
	"math"
)

// Axis is the orientation of a seam. A Vertical seam runs top to bottom and
// narrows the image; a Horizontal seam runs left to right and shortens it.
type Axis uint8

// Seam orientations.
const (
	Vertical Axis = iota
	Horizontal
)

func (a Axis) String() string {
	switch a {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	default:
		return "unknown"
	}
}

// Other returns the perpendicular axis.
func (a Axis) Other() Axis {
	if a == Vertical {
		return Horizontal
	}
	return Vertical
}

func (a Axis) laneName() string {
	if a == Vertical {
		return "column"
	}
	return "row"
}

// dims returns the seam length (steps) and the number of candidate lanes for a
// width×height grid.
func (a Axis) dims(width, height int) (length, lanes int) {
	if a == Horizontal {
		return width, height
	}
	return height, width
}

// point maps a (step, lane) pair onto grid coordinates.
func (a Axis) point(step, lane int) image.Point {
	if a == Horizontal {
		return image.Pt(step, lane)
	}
	return image.Pt(lane, step)
}

// split is the inverse of point.
func (a Axis) split(p image.Point) (step, lane int) {
	if a == Horizontal {
		return p.X, p.Y
	}
	return p.Y, p.X
}

// CostTable is the memoised dynamic program behind seam location. For a
// vertical table,
//
//	cost(0, x) = energy(0, x)
//	cost(y, x) = energy(y, x) + min(cost(y-1, x-1), cost(y-1, x), cost(y-1, x+1))
//
// and cost is +Inf outside the grid. The horizontal table is the same
// recurrence with rows and columns swapped.
//
// A table belongs to one grid version. Once the grid removes a seam, the next
// lookup discards every memoised cost.
type CostTable struct {
	g       *Grid
	axis    Axis
	version uint64
	costs   memo
	evals   int
}

// NewCostTable returns an empty table for seams along axis.
func NewCostTable(g *Grid, axis Axis) *CostTable {
	t := &CostTable{g: g, axis: axis}
	t.Reset()
	return t
}

// Axis returns the seam orientation the table was built for.
func (t *CostTable) Axis() Axis { return t.axis }

// Reset drops every memoised cost.
func (t *CostTable) Reset() {
	t.version = t.g.Version()
	t.costs.reset(t.g.Width(), t.g.Height())
	t.evals = 0
}

// Evaluations reports how many cells have been computed since the last reset.
func (t *CostTable) Evaluations() int { return t.evals }

// Cost returns the minimum cumulative energy of any seam prefix ending at p.
func (t *CostTable) Cost(p image.Point) float64 {
	if t.version != t.g.Version() {
		t.Reset()
	}
	return t.cost(p)
}

func (t *CostTable) cost(p image.Point) float64 {
	if !p.In(t.g.Bounds()) {
		return math.Inf(1)
	}
	if c, ok := t.costs.get(p); ok {
		return c
	}

	step, lane := t.axis.split(p)
	c := t.g.EnergyAt(p.X, p.Y)
	if step > 0 {
		best := t.cost(t.axis.point(step-1, lane))
		if left := t.cost(t.axis.point(step-1, lane-1)); left < best {
			best = left
		}
		if right := t.cost(t.axis.point(step-1, lane+1)); right < best {
			best = right
		}
		c += best
	}

	t.costs.put(p, c)
	t.evals++
	return c
}

// Build computes every cell in step order, so each cell only reads
// predecessors that are already memoised.
func (t *CostTable) Build() {
	if t.version != t.g.Version() {
		t.Reset()
	}
	length, lanes := t.axis.dims(t.g.Width(), t.g.Height())
	for step := 0; step < length; step++ {
		for lane := 0; lane < lanes; lane++ {
			t.cost(t.axis.point(step, lane))
		}
	}
}
