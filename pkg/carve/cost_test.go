package carve

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostTable_TwoByTwo(t *testing.T) {
	g := mustGrid(t, [][]color.RGBA{{red, green}, {blue, yellow}})
	tbl := NewCostTable(g, Vertical)

	assert.Equal(t, g.EnergyAt(0, 0), tbl.Cost(image.Pt(0, 0)), "first row is its own energy")

	left, right := tbl.Cost(image.Pt(0, 1)), tbl.Cost(image.Pt(1, 1))
	want := image.Pt(0, 1)
	if right < left {
		want = image.Pt(1, 1)
	}
	assert.Equal(t, want, tbl.FindMinimumTerminal())
}

func TestCostTable_Recurrence(t *testing.T) {
	for _, axis := range []Axis{Vertical, Horizontal} {
		t.Run(axis.String(), func(t *testing.T) {
			g := mustGrid(t, noise(21, 6, 5))
			tbl := NewCostTable(g, axis)
			tbl.Build()

			length, lanes := axis.dims(g.Width(), g.Height())
			for step := 0; step < length; step++ {
				for lane := 0; lane < lanes; lane++ {
					p := axis.point(step, lane)
					want := g.EnergyAt(p.X, p.Y)
					if step > 0 {
						best := math.Inf(1)
						for d := -1; d <= 1; d++ {
							best = math.Min(best, tbl.Cost(axis.point(step-1, lane+d)))
						}
						want += best
					}
					assert.InDelta(t, want, tbl.Cost(p), 1e-12, "%s %v", axis, p)
				}
			}
		})
	}
}

func TestCostTable_HorizontalIsTransposedVertical(t *testing.T) {
	pixels := noise(5, 5, 4)
	g := mustGrid(t, pixels)
	gt := mustGrid(t, transpose(pixels))

	h := NewCostTable(g, Horizontal)
	v := NewCostTable(gt, Vertical)
	h.Build()
	v.Build()

	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			assert.InDelta(t, v.Cost(image.Pt(y, x)), h.Cost(image.Pt(x, y)), 1e-12)
		}
	}

	vs := v.TraceSeam(v.FindMinimumTerminal())
	hs := h.TraceSeam(h.FindMinimumTerminal())
	require.Equal(t, vs.Len(), hs.Len())
	for i := range vs.Points {
		assert.Equal(t, image.Pt(vs.Points[i].Y, vs.Points[i].X), hs.Points[i])
	}
}

func TestCostTable_StableAcrossRebuilds(t *testing.T) {
	g := mustGrid(t, noise(8, 7, 7))
	first := NewCostTable(g, Vertical)
	first.Build()
	second := NewCostTable(g, Vertical)
	second.Build()
	second.Build()

	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			p := image.Pt(x, y)
			assert.Equal(t, first.Cost(p), second.Cost(p))
		}
	}
}

func TestCostTable_EachCellComputedOnce(t *testing.T) {
	g := mustGrid(t, noise(4, 8, 6))
	tbl := NewCostTable(g, Vertical)

	tbl.Cost(image.Pt(3, 5))
	lazy := tbl.Evaluations()
	assert.Less(t, lazy, 8*6, "a single lookup only computes its cone")

	tbl.Build()
	assert.Equal(t, 8*6, tbl.Evaluations())

	tbl.Build()
	tbl.Cost(image.Pt(0, 0))
	assert.Equal(t, 8*6, tbl.Evaluations())
}

func TestCostTable_OutOfRangeIsInfinite(t *testing.T) {
	g := mustGrid(t, noise(2, 3, 3))
	tbl := NewCostTable(g, Vertical)
	for _, p := range []image.Point{{X: -1, Y: 0}, {X: 0, Y: -1}, {X: 3, Y: 0}, {X: 0, Y: 3}} {
		assert.True(t, math.IsInf(tbl.Cost(p), 1), "%v", p)
	}
}

func TestCostTable_ResetsAfterRemoval(t *testing.T) {
	g := mustGrid(t, noise(6, 5, 5))
	tbl := NewCostTable(g, Vertical)
	tbl.Build()
	require.Equal(t, 25, tbl.Evaluations())

	require.NoError(t, g.RemoveSeam(randomSeam(rand.New(rand.NewPCG(6, 6)), g, Vertical)))
	tbl.Cost(image.Pt(0, 0))
	assert.Equal(t, 1, tbl.Evaluations(), "stale costs are discarded, not patched")
}
