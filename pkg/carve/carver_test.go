package carve

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	cases := map[string]Direction{
		"vertical":    DirectionVertical,
		"H":           DirectionHorizontal,
		"both":        DirectionRandom,
		"b":           DirectionRandom,
		"alternating": DirectionAlternating,
		"a":           DirectionAlternating,
		" random ":    DirectionRandom,
	}
	for in, want := range cases {
		got, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDirection("diagonal")
	assert.Error(t, err)
}

func TestCarver_StepAlternatesPhases(t *testing.T) {
	c := New(mustGrid(t, noise(3, 6, 4)))
	require.Equal(t, Ready, c.State())
	assert.Empty(t, c.MarkedSeam())

	require.True(t, c.Step())
	assert.Equal(t, Marked, c.State())
	assert.Len(t, c.MarkedSeam(), 4, "a vertical seam has one point per row")
	assert.Equal(t, 6, c.Width(), "locating does not shrink")

	require.True(t, c.Step())
	assert.Equal(t, Ready, c.State())
	assert.Empty(t, c.MarkedSeam())
	assert.Equal(t, 5, c.Width())
	assert.Equal(t, 4, c.Height())
	requireConsistent(t, c.Grid())
}

func TestCarver_SingleRowCarvesDownToOnePixel(t *testing.T) {
	c := New(mustGrid(t, noise(9, 5, 1)), WithDirection(DirectionVertical))

	for i := 0; i < 4; i++ {
		require.True(t, c.Step(), "locate %d", i)
		require.True(t, c.Step(), "remove %d", i)
		require.Equal(t, 4-i, c.Width())
	}
	assert.Equal(t, 1, c.Width())

	for i := 0; i < 10; i++ {
		assert.False(t, c.Step())
	}
	assert.Equal(t, 1, c.Width())
	assert.Equal(t, 1, c.Height())
	assert.Equal(t, Ready, c.State())
	assert.Equal(t, 4, c.Removed(Vertical))
}

func TestCarver_FloorIsNoOp(t *testing.T) {
	c := New(mustGrid(t, uniform(1, 1, red)), WithDirection(DirectionAlternating))
	for i := 0; i < 5; i++ {
		assert.NotPanics(t, func() { assert.False(t, c.Step()) })
	}

	tall := New(mustGrid(t, uniform(1, 3, red)), WithDirection(DirectionVertical))
	assert.False(t, tall.Step(), "vertical carving skips a one-column image")
	assert.Equal(t, 3, tall.Height())

	wide := New(mustGrid(t, uniform(3, 1, red)), WithDirection(DirectionHorizontal))
	assert.False(t, wide.Step(), "horizontal carving skips a one-row image")
	assert.Equal(t, 3, wide.Width())
}

func TestCarver_AlternatingSwitchesAxis(t *testing.T) {
	c := New(mustGrid(t, noise(4, 5, 5)), WithDirection(DirectionAlternating))

	var axes []Axis
	for i := 0; i < 4; i++ {
		require.True(t, c.Step())
		axis, ok := c.MarkedAxis()
		require.True(t, ok)
		axes = append(axes, axis)
		require.True(t, c.Step())
	}
	assert.Equal(t, []Axis{Vertical, Horizontal, Vertical, Horizontal}, axes)
	assert.Equal(t, 3, c.Width())
	assert.Equal(t, 3, c.Height())
}

func TestCarver_AlternatingFallsBackAtFloor(t *testing.T) {
	c := New(mustGrid(t, noise(4, 1, 4)), WithDirection(DirectionAlternating))
	for c.Step() {
	}
	assert.Equal(t, 1, c.Width())
	assert.Equal(t, 1, c.Height())
	assert.Equal(t, 3, c.Removed(Horizontal))
	assert.Equal(t, 0, c.Removed(Vertical))
}

func TestCarver_RandomIsReproducible(t *testing.T) {
	run := func() []Axis {
		c := New(mustGrid(t, noise(5, 8, 8)), WithDirection(DirectionRandom), WithSeed(7))
		var axes []Axis
		for i := 0; i < 6; i++ {
			c.Step()
			axis, _ := c.MarkedAxis()
			axes = append(axes, axis)
			c.Step()
		}
		return axes
	}
	assert.Equal(t, run(), run())
}

func TestCarver_DirectionChangeWhileMarked(t *testing.T) {
	c := New(mustGrid(t, noise(6, 4, 4)), WithDirection(DirectionVertical))
	require.True(t, c.Step())
	c.SetDirection(DirectionHorizontal)
	require.True(t, c.Step())

	assert.Equal(t, 3, c.Width(), "the marked vertical seam is still removed")
	assert.Equal(t, 4, c.Height())
}

func TestCarver_Deterministic(t *testing.T) {
	pixels := noise(12, 10, 8)
	a := New(mustGrid(t, pixels))
	b := New(mustGrid(t, pixels))
	for i := 0; i < 6; i++ {
		a.Step()
		b.Step()
		assert.Equal(t, a.MarkedSeam(), b.MarkedSeam(), "step %d", i)
	}
}

func TestCarver_Paused(t *testing.T) {
	c := New(mustGrid(t, noise(2, 4, 4)))
	assert.True(t, c.TogglePaused())
	assert.False(t, c.Step())
	assert.Equal(t, Ready, c.State())

	c.SetPaused(false)
	assert.True(t, c.Step())
}

func TestCarver_HistoryUsesSourceCoordinates(t *testing.T) {
	c := New(mustGrid(t, [][]color.RGBA{{white, black, white}}))

	require.True(t, c.Step())
	require.True(t, c.Step())
	require.True(t, c.Step())
	require.True(t, c.Step())

	h := c.History()
	require.Len(t, h, 2)
	assert.Equal(t, []image.Point{{X: 0, Y: 0}}, h[0].Points)
	assert.Equal(t, []image.Point{{X: 2, Y: 0}}, h[1].Points)
	assert.Equal(t, black, c.ColorAt(0, 0))
}

func TestCarver_ImagePaintsMarkedSeam(t *testing.T) {
	c := New(mustGrid(t, uniform(5, 3, white)))
	require.True(t, c.Step())

	img := c.Image()
	for _, p := range c.MarkedSeam() {
		assert.Equal(t, SeamColor, img.RGBAAt(p.X, p.Y))
	}
	assert.Equal(t, white, img.RGBAAt(3, 1))

	c.ToggleView()
	assert.Equal(t, ViewEnergy, c.View())
	energy := c.Image()
	v := EnergyGray(c.EnergyAt(3, 1))
	assert.Equal(t, color.RGBA{R: v, G: v, B: v, A: 255}, energy.RGBAAt(3, 1))
}

func TestCarver_CarveTo(t *testing.T) {
	c := New(mustGrid(t, noise(10, 6, 5)), WithDirection(DirectionAlternating))
	require.NoError(t, c.CarveTo(context.Background(), 3, 2))

	assert.Equal(t, 3, c.Width())
	assert.Equal(t, 2, c.Height())
	assert.Equal(t, 3, c.Removed(Vertical))
	assert.Equal(t, 3, c.Removed(Horizontal))
	assert.Len(t, c.History(), 6)
	assert.Equal(t, Ready, c.State())
	requireConsistent(t, c.Grid())
}

func TestCarver_CarveToDropsUnneededMark(t *testing.T) {
	c := New(mustGrid(t, noise(10, 4, 4)), WithDirection(DirectionVertical))
	require.True(t, c.Step())

	require.NoError(t, c.CarveTo(context.Background(), 4, 3))
	assert.Equal(t, 4, c.Width())
	assert.Equal(t, 3, c.Height())
}

func TestCarver_CarveToErrors(t *testing.T) {
	c := New(mustGrid(t, noise(1, 4, 4)))
	assert.ErrorIs(t, c.CarveTo(context.Background(), 5, 4), ErrInvalidTarget)
	assert.ErrorIs(t, c.CarveTo(context.Background(), 0, 4), ErrInvalidTarget)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.CarveTo(ctx, 2, 2), context.Canceled)
	assert.Equal(t, 4, c.Width())
}
