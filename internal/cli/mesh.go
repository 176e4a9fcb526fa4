package cli

import (
	"context"
	"image"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seamcarver/pkg/carve"
	errs "github.com/matzehuels/seamcarver/pkg/errors"
	"github.com/matzehuels/seamcarver/pkg/imageio"
	"github.com/matzehuels/seamcarver/pkg/render/mesh"
)

// meshOpts holds the command-line flags for the mesh command.
type meshOpts struct {
	x, y      int
	remove    int
	direction string
	format    string
	output    string
	mesh.Options
}

// meshCommand creates the mesh debugging command.
func (c *CLI) meshCommand() *cobra.Command {
	opts := meshOpts{Options: mesh.Options{Radius: 2}}

	cmd := &cobra.Command{
		Use:   "mesh [image]",
		Short: "Render the pixel link graph around a cell",
		Long: `Render the neighbour links of the cells around (--x, --y) as a graph.

Cells are pinned at their grid position and filled with their colour. With
--remove, that many seams are carved first, so the re-wired links along the
removed seams can be inspected. DOT output needs no graphviz runtime.`,
		Example: `  seamcarver mesh tile.png --x 4 --y 3 --radius 2 -f svg -o mesh.svg
  seamcarver mesh tile.png --x 4 --y 3 --remove 3 --origins -f dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("direction") && c.cfg.Carve.Direction != "" {
				opts.direction = c.cfg.Carve.Direction
			}
			return c.runMesh(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.x, "x", 0, "column of the center cell")
	cmd.Flags().IntVar(&opts.y, "y", 0, "row of the center cell")
	cmd.Flags().IntVar(&opts.Radius, "radius", opts.Radius, "cells shown on each side of the center")
	cmd.Flags().IntVar(&opts.remove, "remove", 0, "seams to remove before rendering")
	cmd.Flags().StringVarP(&opts.direction, "direction", "d", carve.DirectionVertical.String(), "seam order used by --remove")
	cmd.Flags().BoolVar(&opts.Diagonals, "diagonals", false, "include diagonal links")
	cmd.Flags().BoolVar(&opts.Origins, "origins", false, "label cells with their source coordinates")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(mesh.FormatSVG), "output format: dot, svg, png")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout for dot, <image>-mesh.<format> otherwise)")

	return cmd
}

func (c *CLI) runMesh(ctx context.Context, input string, opts meshOpts) error {
	format, err := mesh.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	dir, err := carve.ParseDirection(opts.direction)
	if err != nil {
		return err
	}
	if opts.Radius < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "radius cannot be negative")
	}

	img, _, err := imageio.Open(input)
	if err != nil {
		return err
	}
	grid, err := carve.FromImage(img)
	if err != nil {
		return err
	}

	removed, err := removeSeams(carve.New(grid, carve.WithDirection(dir)), opts.remove)
	if err != nil {
		return err
	}
	if removed < opts.remove {
		printWarning("only %d of %d seams could be removed", removed, opts.remove)
	}

	opts.Center = image.Pt(opts.x, opts.y)
	if !opts.Center.In(grid.Bounds()) {
		return errs.New(errs.ErrCodeInvalidDimensions, "cell (%d,%d) is outside the %dx%d grid", opts.x, opts.y, grid.Width(), grid.Height())
	}

	data, err := mesh.Render(ctx, mesh.ToDOT(grid, opts.Options), format)
	if err != nil {
		return err
	}

	if opts.output == "" && format == mesh.FormatDOT {
		_, err := os.Stdout.Write(data)
		return err
	}
	if opts.output == "" {
		opts.output = derivedName(input, "-mesh", "."+string(format))
	}
	if err := imageio.WriteFile(opts.output, data); err != nil {
		return err
	}
	win := mesh.Window(grid, opts.Options)
	printSuccess("Rendered %dx%d cells around (%d,%d)", win.Dx(), win.Dy(), opts.x, opts.y)
	printFile(opts.output)
	return nil
}

// removeSeams runs n full mark-and-remove cycles and returns how many seams
// were actually removed.
func removeSeams(c *carve.Carver, n int) (int, error) {
	if n < 0 {
		return 0, errs.New(errs.ErrCodeInvalidInput, "remove cannot be negative")
	}
	for i := 0; i < n; i++ {
		if !c.Step() || !c.Step() {
			return i, nil
		}
	}
	return n, nil
}
