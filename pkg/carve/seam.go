package carve

import (
	"image"
	"math"
)

// Seam is a connected path of one pixel per row (Vertical) or per column
// (Horizontal). Points are ordered top to bottom or left to right, and
// consecutive points differ by at most one in the transverse direction.
type Seam struct {
	Axis   Axis
	Points []image.Point
}

// Len returns the number of pixels in the seam.
func (s Seam) Len() int { return len(s.Points) }

// Empty reports whether the seam has no points.
func (s Seam) Empty() bool { return len(s.Points) == 0 }

// lane returns the transverse coordinate of the seam at step i.
func (s Seam) lane(i int) int {
	_, lane := s.Axis.split(s.Points[i])
	return lane
}

// window returns the smallest and largest lane the seam touches at steps
// i-1, i and i+1.
func (s Seam) window(i int) (lo, hi int) {
	lo, hi = s.lane(i), s.lane(i)
	for _, j := range [2]int{i - 1, i + 1} {
		if j < 0 || j >= len(s.Points) {
			continue
		}
		l := s.lane(j)
		lo, hi = min(lo, l), max(hi, l)
	}
	return lo, hi
}

// FindMinimumTerminal scans the final row (vertical) or column (horizontal)
// and returns the cell with the lowest cost. Only a strictly lower cost
// replaces the current best, so ties go to the leftmost or topmost cell.
func (t *CostTable) FindMinimumTerminal() image.Point {
	length, lanes := t.axis.dims(t.g.Width(), t.g.Height())
	best, bestLane := math.Inf(1), 0
	for lane := 0; lane < lanes; lane++ {
		if c := t.Cost(t.axis.point(length-1, lane)); c < best {
			best, bestLane = c, lane
		}
	}
	return t.axis.point(length-1, bestLane)
}

// TraceSeam walks back from terminal to the first row or column. At every step
// it drifts to a diagonal predecessor only when that predecessor is strictly
// cheaper than both alternatives; any tie keeps the seam in its lane.
func (t *CostTable) TraceSeam(terminal image.Point) Seam {
	step, lane := t.axis.split(terminal)
	points := make([]image.Point, step+1)
	for {
		points[step] = t.axis.point(step, lane)
		if step == 0 {
			break
		}
		before := t.Cost(t.axis.point(step-1, lane-1))
		same := t.Cost(t.axis.point(step-1, lane))
		after := t.Cost(t.axis.point(step-1, lane+1))
		switch {
		case before < same && before < after:
			lane--
		case after < same && after < before:
			lane++
		}
		step--
	}
	return Seam{Axis: t.axis, Points: points}
}

// Locate builds a fresh cost table over the grid's stored energies and returns
// the cheapest seam along axis. It does not refresh the energies first.
func Locate(g *Grid, axis Axis) Seam {
	t := NewCostTable(g, axis)
	t.Build()
	return t.TraceSeam(t.FindMinimumTerminal())
}
