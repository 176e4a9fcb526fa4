package carve

import (
	"image"
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	red    = color.RGBA{R: 255, A: 255}
	green  = color.RGBA{G: 255, A: 255}
	blue   = color.RGBA{B: 255, A: 255}
	yellow = color.RGBA{R: 255, G: 255, A: 255}
	white  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black  = color.RGBA{A: 255}
)

// mustGrid builds a grid or fails the test.
func mustGrid(t *testing.T, pixels [][]color.RGBA) *Grid {
	t.Helper()
	g, err := NewGrid(pixels)
	require.NoError(t, err)
	return g
}

// uniform returns a w×h block of one colour.
func uniform(w, h int, c color.RGBA) [][]color.RGBA {
	rows := make([][]color.RGBA, h)
	for y := range rows {
		rows[y] = make([]color.RGBA, w)
		for x := range rows[y] {
			rows[y][x] = c
		}
	}
	return rows
}

// noise returns a reproducible w×h block of random colours.
func noise(seed uint64, w, h int) [][]color.RGBA {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rows := make([][]color.RGBA, h)
	for y := range rows {
		rows[y] = make([]color.RGBA, w)
		for x := range rows[y] {
			rows[y][x] = color.RGBA{R: uint8(r.IntN(256)), G: uint8(r.IntN(256)), B: uint8(r.IntN(256)), A: 255}
		}
	}
	return rows
}

// transpose swaps rows and columns.
func transpose(pixels [][]color.RGBA) [][]color.RGBA {
	out := make([][]color.RGBA, len(pixels[0]))
	for x := range out {
		out[x] = make([]color.RGBA, len(pixels))
		for y := range pixels {
			out[x][y] = pixels[y][x]
		}
	}
	return out
}

// randomSeam returns a valid seam along axis with a random start and drift.
func randomSeam(r *rand.Rand, g *Grid, axis Axis) Seam {
	length, lanes := axis.dims(g.Width(), g.Height())
	lane := r.IntN(lanes)
	points := make([]image.Point, length)
	for i := range points {
		if i > 0 {
			lane = min(max(lane+r.IntN(3)-1, 0), lanes-1)
		}
		points[i] = axis.point(i, lane)
	}
	return Seam{Axis: axis, Points: points}
}

// requireConsistent checks the row table shape and that every link of every
// live cell resolves to the cell (or Border) at the expected coordinate.
func requireConsistent(t *testing.T, g *Grid) {
	t.Helper()
	require.Len(t, g.rows, g.Height(), "row count")
	for y, row := range g.rows {
		require.Len(t, row, g.Width(), "row %d length", y)
	}
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			id := g.ID(x, y)
			for _, l := range Links {
				off := l.Offset()
				require.Equal(t, g.ID(x+off.X, y+off.Y), g.Neighbor(id, l),
					"cell (%d,%d) link %s", x, y, l)
			}
		}
	}
}

// cached counts the coordinates holding a value in m.
func cached(m *memo) int {
	n := 0
	for _, ok := range m.set {
		if ok {
			n++
		}
	}
	return n
}
