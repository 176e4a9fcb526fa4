package carve

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"strings"
)

// Direction selects which axis the Carver carves on each cycle.
type Direction uint8

// Direction policies.
const (
	// DirectionVertical removes vertical seams only.
	DirectionVertical Direction = iota
	// DirectionHorizontal removes horizontal seams only.
	DirectionHorizontal
	// DirectionAlternating switches axis every cycle, falling back to the
	// other axis when one dimension is at its floor.
	DirectionAlternating
	// DirectionRandom picks an axis by coin flip every cycle, with the same
	// fallback as DirectionAlternating.
	DirectionRandom
)

var directionNames = map[Direction]string{
	DirectionVertical:    "vertical",
	DirectionHorizontal:  "horizontal",
	DirectionAlternating: "alternating",
	DirectionRandom:      "random",
}

func (d Direction) String() string {
	if s, ok := directionNames[d]; ok {
		return s
	}
	return "unknown"
}

// ParseDirection parses a direction name. "both", a coin flip between the
// axes for every seam, is an alias of "random".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertical", "v":
		return DirectionVertical, nil
	case "horizontal", "h":
		return DirectionHorizontal, nil
	case "alternating", "a":
		return DirectionAlternating, nil
	case "random", "r", "both", "b":
		return DirectionRandom, nil
	}
	return 0, fmt.Errorf("invalid direction: %q (must be one of: vertical, horizontal, alternating, random)", s)
}

// State is the phase of the carving cycle.
type State uint8

// Carver states.
const (
	// Ready means no seam is marked; the next step locates one.
	Ready State = iota
	// Marked means a seam has been located; the next step removes it.
	Marked
)

func (s State) String() string {
	if s == Marked {
		return "marked"
	}
	return "ready"
}

// View selects what Carver.Image renders.
type View uint8

// Render views.
const (
	ViewColor View = iota
	ViewEnergy
)

func (v View) String() string {
	if v == ViewEnergy {
		return "energy"
	}
	return "color"
}

// DefaultSeed seeds DirectionRandom when no seed is given.
const DefaultSeed = uint64(42)

// Carver drives the two-phase carving cycle over a Grid. Each Step either
// marks the cheapest seam or removes the marked one, so hosts can show a seam
// before it disappears.
//
// A Carver is single-threaded: callers must not call into it concurrently.
type Carver struct {
	grid      *Grid
	costs     *CostTable
	direction Direction
	state     State
	marked    Seam
	next      Axis
	rng       *rand.Rand
	paused    bool
	view      View
	history   []Seam
	removed   [2]int
}

// Option configures a Carver.
type Option func(*Carver)

// WithDirection sets the initial direction policy.
func WithDirection(d Direction) Option {
	return func(c *Carver) { c.direction = d }
}

// WithSeed seeds the coin used by DirectionRandom.
func WithSeed(seed uint64) Option {
	return func(c *Carver) { c.rng = rand.New(rand.NewPCG(seed, seed)) }
}

// WithView sets the initial render view.
func WithView(v View) Option {
	return func(c *Carver) { c.view = v }
}

// New returns a Carver in the Ready state that owns g from now on.
func New(g *Grid, opts ...Option) *Carver {
	c := &Carver{grid: g}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(DefaultSeed, DefaultSeed))
	}
	return c
}

// Grid returns the grid being carved. Callers must not remove seams from it
// directly while the Carver is in use.
func (c *Carver) Grid() *Grid { return c.grid }

// Width returns the current image width.
func (c *Carver) Width() int { return c.grid.Width() }

// Height returns the current image height.
func (c *Carver) Height() int { return c.grid.Height() }

// ColorAt returns the colour at (x, y).
func (c *Carver) ColorAt(x, y int) color.RGBA { return c.grid.ColorAt(x, y) }

// EnergyAt returns the energy at (x, y) as of the last locate.
func (c *Carver) EnergyAt(x, y int) float64 { return c.grid.EnergyAt(x, y) }

// State returns the current phase.
func (c *Carver) State() State { return c.state }

// Direction returns the direction policy.
func (c *Carver) Direction() Direction { return c.direction }

// SetDirection changes the policy used by the next locate. A seam that is
// already marked is still removed along its own axis.
func (c *Carver) SetDirection(d Direction) { c.direction = d }

// Paused reports whether Step is suspended.
func (c *Carver) Paused() bool { return c.paused }

// SetPaused suspends or resumes Step.
func (c *Carver) SetPaused(p bool) { c.paused = p }

// TogglePaused flips the pause flag and returns the new value.
func (c *Carver) TogglePaused() bool {
	c.paused = !c.paused
	return c.paused
}

// View returns the render view.
func (c *Carver) View() View { return c.view }

// SetView selects the render view. It has no effect on carving.
func (c *Carver) SetView(v View) { c.view = v }

// ToggleView switches between the colour and energy views.
func (c *Carver) ToggleView() View {
	if c.view == ViewEnergy {
		c.view = ViewColor
	} else {
		c.view = ViewEnergy
	}
	return c.view
}

// MarkedSeam returns the coordinates of the located but not yet removed seam,
// or nil in the Ready state.
func (c *Carver) MarkedSeam() []image.Point {
	if c.state != Marked {
		return nil
	}
	return append([]image.Point(nil), c.marked.Points...)
}

// MarkedAxis returns the axis of the marked seam.
func (c *Carver) MarkedAxis() (Axis, bool) {
	return c.marked.Axis, c.state == Marked
}

// History returns every removed seam in source-image coordinates, oldest first.
func (c *Carver) History() []Seam { return c.history }

// Removed returns how many seams have been removed along axis.
func (c *Carver) Removed(axis Axis) int { return c.removed[axis] }

// Step advances the cycle by one transition: Ready locates and marks a seam,
// Marked removes it. Step reports whether anything happened; it is a no-op
// while paused or once every allowed dimension is at its one-pixel floor.
func (c *Carver) Step() bool {
	if c.paused {
		return false
	}
	if c.state == Marked {
		return c.remove()
	}
	axis, ok := c.choose(c.grid.Width() > 1, c.grid.Height() > 1, true)
	if !ok {
		return false
	}
	c.locate(axis)
	return true
}

// CarveTo removes seams until the grid is width×height, honouring the
// direction policy for the order of axes. A seam that is marked but not needed
// is dropped. The context is checked between cycles; each cycle runs to
// completion.
func (c *Carver) CarveTo(ctx context.Context, width, height int) error {
	if width < 1 || height < 1 || width > c.grid.Width() || height > c.grid.Height() {
		return fmt.Errorf("%w: %dx%d from %dx%d", ErrInvalidTarget, width, height, c.grid.Width(), c.grid.Height())
	}
	if c.state == Marked {
		if axis := c.marked.Axis; (axis == Vertical && c.grid.Width() > width) ||
			(axis == Horizontal && c.grid.Height() > height) {
			c.remove()
		} else {
			c.unmark()
		}
	}
	for {
		axis, ok := c.choose(c.grid.Width() > width, c.grid.Height() > height, false)
		if !ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		c.locate(axis)
		c.remove()
	}
}

// choose applies the direction policy. With strict set, the single-axis
// policies never fall back to the other axis.
func (c *Carver) choose(vertical, horizontal, strict bool) (Axis, bool) {
	allowed := func(a Axis) bool {
		if a == Vertical {
			return vertical
		}
		return horizontal
	}

	var want Axis
	switch c.direction {
	case DirectionVertical:
		want = Vertical
	case DirectionHorizontal:
		want = Horizontal
	case DirectionAlternating:
		want = c.next
	case DirectionRandom:
		want = Vertical
		if c.rng.IntN(2) == 0 {
			want = Horizontal
		}
	}

	single := c.direction == DirectionVertical || c.direction == DirectionHorizontal
	switch {
	case allowed(want):
	case (!single || !strict) && allowed(want.Other()):
		want = want.Other()
	default:
		return 0, false
	}
	c.next = want.Other()
	return want, true
}

// locate refreshes energies, rebuilds the cost table and marks the cheapest
// seam along axis.
func (c *Carver) locate(axis Axis) {
	c.grid.RefreshEnergy()
	c.costs = NewCostTable(c.grid, axis)
	c.costs.Build()
	c.marked = c.costs.TraceSeam(c.costs.FindMinimumTerminal())
	c.state = Marked
}

// remove excises the marked seam. A seam the grid rejects is dropped, leaving
// the grid untouched.
func (c *Carver) remove() bool {
	seam := c.marked
	origins := make([]image.Point, len(seam.Points))
	for i, p := range seam.Points {
		origins[i], _ = c.grid.OriginAt(p.X, p.Y)
	}
	if err := c.grid.RemoveSeam(seam); err != nil {
		c.unmark()
		return false
	}
	c.history = append(c.history, Seam{Axis: seam.Axis, Points: origins})
	c.removed[seam.Axis]++
	c.unmark()
	return true
}

func (c *Carver) unmark() {
	c.marked = Seam{}
	c.costs = nil
	c.state = Ready
}
