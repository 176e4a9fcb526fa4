package carve

import "errors"

// Sentinel errors returned by the carve package.
var (
	// ErrEmptyImage is returned when the source pixels have no rows or no columns.
	ErrEmptyImage = errors.New("carve: image must have at least one row and one column")

	// ErrNonRectangular is returned when source rows differ in length.
	ErrNonRectangular = errors.New("carve: all rows must have the same length")

	// ErrInvalidSeam is returned by Grid.RemoveSeam for a seam that does not
	// describe a connected path across the current grid.
	ErrInvalidSeam = errors.New("carve: seam does not fit the grid")

	// ErrInvalidTarget is returned by Carver.CarveTo when the requested size is
	// larger than the current image or smaller than one pixel.
	ErrInvalidTarget = errors.New("carve: target size must be between 1 and the current size")
)
