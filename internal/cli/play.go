package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/seamcarver/pkg/carve"
	"github.com/matzehuels/seamcarver/pkg/imageio"
	"github.com/matzehuels/seamcarver/pkg/render/term"
)

// playCommand creates the interactive player command.
func (c *CLI) playCommand() *cobra.Command {
	var (
		interval  time.Duration
		direction string
		view      string
		seed      uint64
		output    string
	)

	cmd := &cobra.Command{
		Use:   "play [image]",
		Short: "Watch seams being found and removed in the terminal",
		Long: `Animate seam carving in the terminal. Every tick either marks the
cheapest seam or removes the marked one, so each seam is shown before it
disappears.

Keys: v vertical, h horizontal, a alternating, b (or r) both at random,
space pause, s single step while paused, e toggle energy view, w write the
current image, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("interval") {
				interval = c.cfg.Play.Interval.Duration
			}
			if !flags.Changed("view") && c.cfg.Play.View != "" {
				view = c.cfg.Play.View
			}
			if !flags.Changed("direction") && c.cfg.Carve.Direction != "" {
				direction = c.cfg.Carve.Direction
			}
			if !flags.Changed("seed") && c.cfg.Carve.Seed != 0 {
				seed = c.cfg.Carve.Seed
			}
			if output == "" {
				output = derivedName(args[0], "-frame", ".png")
			}
			return c.runPlay(cmd.Context(), args[0], playOpts{
				interval:  interval,
				direction: direction,
				view:      view,
				seed:      seed,
				output:    output,
			})
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 40*time.Millisecond, "time between steps")
	cmd.Flags().StringVarP(&direction, "direction", "d", carve.DirectionVertical.String(), "initial seam order: vertical, horizontal, alternating, random")
	cmd.Flags().StringVar(&view, "view", carve.ViewColor.String(), "initial view: color, energy")
	cmd.Flags().Uint64Var(&seed, "seed", carve.DefaultSeed, "seed for the random direction policy")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file written by the w key (default: <image>-frame.png)")

	return cmd
}

type playOpts struct {
	interval  time.Duration
	direction string
	view      string
	seed      uint64
	output    string
}

func (c *CLI) runPlay(ctx context.Context, input string, opts playOpts) error {
	if opts.interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", opts.interval)
	}
	dir, err := carve.ParseDirection(opts.direction)
	if err != nil {
		return err
	}
	view, err := parseView(opts.view)
	if err != nil {
		return err
	}

	img, _, err := imageio.Open(input)
	if err != nil {
		return err
	}
	grid, err := carve.FromImage(img)
	if err != nil {
		return err
	}
	carver := carve.New(grid, carve.WithDirection(dir), carve.WithSeed(opts.seed), carve.WithView(view))

	model := NewPlayerModel(carver, filepath.Base(input), opts.output, opts.interval, term.NewRenderer(nil))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("player: %w", err)
	}
	if m, ok := final.(PlayerModel); ok {
		c.Logger.Info("player closed",
			"size", fmt.Sprintf("%dx%d", m.Carver.Width(), m.Carver.Height()),
			"seams", len(m.Carver.History()))
	}
	return nil
}

func parseView(s string) (carve.View, error) {
	switch s {
	case "", "color", "colour":
		return carve.ViewColor, nil
	case "energy":
		return carve.ViewEnergy, nil
	}
	return 0, fmt.Errorf("invalid view: %q (must be color or energy)", s)
}
