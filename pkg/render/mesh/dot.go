package mesh

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/seamcarver/pkg/carve"
)

// Options configures mesh rendering.
type Options struct {
	// Center is the cell the window is centered on.
	Center image.Point
	// Radius is the number of cells shown on each side of Center.
	Radius int
	// Diagonals includes the four diagonal links.
	Diagonals bool
	// Origins labels cells with their source image coordinates.
	Origins bool
}

// Format is an output format for Render.
type Format string

// Supported output formats.
const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat parses a mesh output format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatDOT, FormatSVG, FormatPNG:
		return f, nil
	}
	return "", fmt.Errorf("mesh: unsupported format %q (want dot, svg or png)", s)
}

// Window returns the cells drawn for opts, clipped to the grid.
func Window(g *carve.Grid, opts Options) image.Rectangle {
	r := max(opts.Radius, 0)
	win := image.Rect(opts.Center.X-r, opts.Center.Y-r, opts.Center.X+r+1, opts.Center.Y+r+1)
	return win.Intersect(g.Bounds())
}

// ToDOT converts a window of the grid to Graphviz DOT.
//
// Nodes are named after their arena index, so a link that points at the
// wrong cell after removal is drawn to that cell rather than silently
// dropped. Links leaving the window or pointing at the border are omitted.
func ToDOT(g *carve.Grid, opts Options) string {
	win := Window(g, opts)
	inWindow := make(map[carve.NodeID]bool, win.Dx()*win.Dy())
	for y := win.Min.Y; y < win.Max.Y; y++ {
		for x := win.Min.X; x < win.Max.X; x++ {
			inWindow[g.ID(x, y)] = true
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=10, width=0.9, height=0.6, fixedsize=true];\n")
	buf.WriteString("  edge [arrowsize=0.5];\n")
	buf.WriteString("\n")

	for y := win.Min.Y; y < win.Max.Y; y++ {
		for x := win.Min.X; x < win.Max.X; x++ {
			id := g.ID(x, y)
			fmt.Fprintf(&buf, "  %s [%s];\n", nodeName(id), strings.Join(fmtAttrs(g, x, y, opts), ", "))
		}
	}

	buf.WriteString("\n")
	for y := win.Min.Y; y < win.Max.Y; y++ {
		for x := win.Min.X; x < win.Max.X; x++ {
			id := g.ID(x, y)
			for _, l := range carve.Links {
				if isDiagonal(l) && !opts.Diagonals {
					continue
				}
				to := g.Neighbor(id, l)
				if to == carve.Border || !inWindow[to] {
					continue
				}
				fmt.Fprintf(&buf, "  %s -> %s [%s];\n", nodeName(id), nodeName(to), edgeAttrs(l))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(id carve.NodeID) string {
	return fmt.Sprintf("n%d", id)
}

func fmtLabel(g *carve.Grid, x, y int, origins bool) string {
	label := fmt.Sprintf("%d,%d\ne=%.2f", x, y, g.EnergyAt(x, y))
	if origins {
		if o, ok := g.OriginAt(x, y); ok {
			label += fmt.Sprintf("\nsrc %d,%d", o.X, o.Y)
		}
	}
	return label
}

func fmtAttrs(g *carve.Grid, x, y int, opts Options) []string {
	c := g.ColorAt(x, y)
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(g, x, y, opts.Origins)),
		// Pinned positions in inches; y grows downward in the image.
		fmt.Sprintf("pos=\"%d,%d!\"", x, -y),
		fmt.Sprintf("fillcolor=%q", hex(c)),
		fmt.Sprintf("fontcolor=%q", textColor(c)),
	}
	if image.Pt(x, y) == opts.Center {
		attrs = append(attrs, "penwidth=3")
	}
	return attrs
}

func edgeAttrs(l carve.Link) string {
	if isDiagonal(l) {
		return "color=\"#999999\", style=dashed"
	}
	return "color=\"#333333\""
}

func isDiagonal(l carve.Link) bool {
	o := l.Offset()
	return o.X != 0 && o.Y != 0
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// textColor picks black or white for legibility on fill c.
func textColor(c color.RGBA) string {
	if carve.Brightness(c) > 0.5 {
		return "black"
	}
	return "white"
}

// Render renders DOT source in format f. FormatDOT returns the source as is.
func Render(ctx context.Context, dot string, f Format) ([]byte, error) {
	if f == FormatDOT {
		return []byte(dot), nil
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	target := graphviz.SVG
	if f == FormatPNG {
		target = graphviz.PNG
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, target, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
