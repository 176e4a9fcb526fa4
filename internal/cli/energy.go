package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seamcarver/pkg/imageio"
)

// energyCommand creates the energy map export command.
func (c *CLI) energyCommand() *cobra.Command {
	var (
		output  string
		format  string
		stats   bool
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "energy [image]",
		Short: "Write the gradient energy map of an image",
		Long: `Write the gradient energy map of an image as a greyscale picture.

Bright pixels have strong local contrast and are kept longest while carving;
dark pixels are removed first. --stats prints the energy range.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEnergy(cmd.Context(), args[0], output, format, stats, noCache, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <image>-energy.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format (default: from output, else png)")
	cmd.Flags().BoolVar(&stats, "stats", false, "print min, max and mean energy")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when a cached result exists")

	return cmd
}

func (c *CLI) runEnergy(ctx context.Context, input, output, formatName string, stats, noCache, refresh bool) error {
	format, err := energyFormat(output, formatName)
	if err != nil {
		return err
	}
	if output == "" {
		output = derivedName(outputStem(input), "-energy", format.Ext())
	}

	src, err := readInput(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	name := inputName(input)
	res, err := runner.Energy(ctx, src, name, format, refresh)
	if err != nil {
		return fmt.Errorf("energy: %w", err)
	}
	if err := imageio.WriteFile(output, res.Image); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Computed energy of %s", name))

	printSuccess("Energy map of %s", name)
	printFile(output)
	if stats {
		fmt.Fprintln(out, energyTable(name, res.Width, res.Height, res.Stats))
	}
	return nil
}

// energyFormat picks the output format: the flag, then the output
// extension, then the default.
func energyFormat(output, flag string) (imageio.Format, error) {
	if flag != "" {
		return imageio.ParseFormat(flag)
	}
	if output != "" {
		return imageio.FormatFromPath(output)
	}
	return imageio.DefaultFormat, nil
}
