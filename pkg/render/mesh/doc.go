// Package mesh renders the pixel link graph of a carve grid as a diagram.
//
// # Overview
//
// Every pixel in a [carve.Grid] holds links to its eight neighbors. After a
// seam is removed only the cells next to the seam are re-linked, so a wrong
// link shows up as a crossed or dangling arrow near where the seam ran.
// This package draws a square window of cells pinned to their grid
// positions, filled with their pixel color, with one arrow per link.
//
// # Usage
//
//	dot := mesh.ToDOT(g, mesh.Options{Center: image.Pt(10, 5), Radius: 2})
//	svg, err := mesh.Render(ctx, dot, mesh.FormatSVG)
//
// # Options
//
//   - Center, Radius: the window, clipped to the grid
//   - Diagonals: also draw the four diagonal links
//   - Origins: label cells with their source coordinates
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering
// with the neato engine, which honors pinned node positions.
package mesh
