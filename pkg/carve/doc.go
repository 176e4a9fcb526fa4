// Package carve implements content-aware image shrinking by seam carving.
//
// An image is loaded into a [Grid]: an 8-connected mesh of pixel nodes whose
// neighbour links are arena indices, with the shared [Border] sentinel
// standing in for everything outside the image. Each node's energy is the
// magnitude of the Sobel-style brightness gradient over its eight neighbours.
//
// A [CostTable] is the dynamic program that accumulates the cheapest path
// energy from the first row (or column) to every cell. The cheapest cell in
// the last row is the seam's terminal; [CostTable.TraceSeam] walks back to the
// start, drifting diagonally only when a diagonal predecessor is strictly
// cheaper than both alternatives.
//
// # Carving
//
// [Carver] runs the two-phase cycle one transition per [Carver.Step]:
//
//	Ready  --locate--> Marked   refresh energies, build costs, mark the seam
//	Marked --remove--> Ready    excise the seam, rewire its neighbours
//
// Hosts that animate the process call Step once per tick and render
// [Carver.Image] in between, so the marked seam is visible before it goes.
// Batch hosts call [Carver.CarveTo].
//
// Once a dimension reaches one pixel the Carver stops carving along it; when
// nothing is left to carve Step is a no-op rather than an error.
//
// # Example
//
//	g, err := carve.FromImage(img)
//	if err != nil {
//	    return err
//	}
//	c := carve.New(g, carve.WithDirection(carve.DirectionAlternating))
//	if err := c.CarveTo(ctx, 320, 240); err != nil {
//	    return err
//	}
//	out := c.Grid().Image()
//
// Every coordinate-keyed cache is cleared after each removal; nothing is
// patched incrementally.
package carve
