// Package render groups the ways seamcarver draws carving state.
//
// # Overview
//
//   - [overlay]: draw removed seams on the source image with fogleman/gg
//   - [term]: render frames into terminal cells with lipgloss half blocks
//   - [mesh]: render the pixel link graph around a cell with Graphviz
//
// The carved image itself is produced by carve.Grid.Image and encoded by
// the imageio package; the renderers here are for inspection.
//
// [overlay]: https://pkg.go.dev/github.com/matzehuels/seamcarver/pkg/render/overlay
// [term]: https://pkg.go.dev/github.com/matzehuels/seamcarver/pkg/render/term
// [mesh]: https://pkg.go.dev/github.com/matzehuels/seamcarver/pkg/render/mesh
package render
