package carve

import (
	"image"
	"image/color"
	"math"
)

// NodeID indexes a Node in the arena owned by a Grid.
type NodeID int32

// Border is the shared sentinel that stands in for every position outside the
// grid. It has brightness 0 and energy BorderEnergy, and each of its neighbours
// is Border again.
const Border NodeID = -1

// BorderEnergy is the energy of Border. Interior energies never exceed sqrt(32),
// so a seam never prefers the frame around the image.
const BorderEnergy = math.MaxFloat64

// MaxEnergy is the largest energy an interior node can have: both gradients at
// their extreme of ±4.
var MaxEnergy = math.Sqrt(32)

// Link names one of the eight neighbour slots of a Node.
type Link uint8

// Neighbour slots.
const (
	Left Link = iota
	Right
	Top
	Bottom
	TopLeft
	TopRight
	BottomLeft
	BottomRight
)

// Links lists every neighbour slot in declaration order.
var Links = [8]Link{Left, Right, Top, Bottom, TopLeft, TopRight, BottomLeft, BottomRight}

var linkOffsets = [8]image.Point{
	Left:        {X: -1, Y: 0},
	Right:       {X: 1, Y: 0},
	Top:         {X: 0, Y: -1},
	Bottom:      {X: 0, Y: 1},
	TopLeft:     {X: -1, Y: -1},
	TopRight:    {X: 1, Y: -1},
	BottomLeft:  {X: -1, Y: 1},
	BottomRight: {X: 1, Y: 1},
}

var linkNames = [8]string{"left", "right", "top", "bottom", "top-left", "top-right", "bottom-left", "bottom-right"}

// Offset returns the coordinate delta from a node to the neighbour in slot l.
func (l Link) Offset() image.Point { return linkOffsets[l] }

func (l Link) String() string {
	if int(l) < len(linkNames) {
		return linkNames[l]
	}
	return "unknown"
}

// Node is a single pixel of a Grid.
type Node struct {
	// Color is the pixel colour. Only the three colour channels are read.
	Color color.RGBA

	// Origin is the coordinate the pixel had in the source image. It never
	// changes, so removed seams can be mapped back onto the original.
	Origin image.Point

	energy float64
	links  [8]NodeID
}

// Brightness returns the average of the colour channels normalised to [0,1].
func Brightness(c color.RGBA) float64 {
	return float64(int(c.R)+int(c.G)+int(c.B)) / (3 * 255)
}
