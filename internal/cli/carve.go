package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	errs "github.com/matzehuels/seamcarver/pkg/errors"
	"github.com/matzehuels/seamcarver/pkg/imageio"
	"github.com/matzehuels/seamcarver/pkg/pipeline"
)

// carveOpts holds the command-line flags for the carve command.
type carveOpts struct {
	output  string // output file, or directory with several inputs
	overlay string // overlay file, or directory with several inputs
	jobs    int    // images carved concurrently
	noCache bool
	pipeline.Options
}

// carveCommand creates the carve command.
func (c *CLI) carveCommand() *cobra.Command {
	var opts carveOpts

	cmd := &cobra.Command{
		Use:   "carve [image...]",
		Short: "Shrink images by removing low-energy seams",
		Long: `Shrink images to a target size by repeatedly removing the seam of pixels
with the least gradient energy.

--width and --height default to the current size, so giving only one of them
carves along one axis. The direction policy decides the order of seams:
vertical, horizontal, alternating (one of each in turn) or random.

Inputs may be files or http(s) URLs. With several inputs, --output and
--overlay name directories and images are carved concurrently, bounded by
--jobs.`,
		Example: `  seamcarver carve beach.jpg --width 640
  seamcarver carve beach.jpg -W 640 -H 400 -d alternating -o small.png --overlay seams.png
  seamcarver carve photos/*.jpg -W 800 -o carved/ -j 8`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyCarveConfig(cmd, &opts)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runCarve(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.TargetWidth, "width", "W", 0, "target width in pixels (default: keep)")
	cmd.Flags().IntVarP(&opts.TargetHeight, "height", "H", 0, "target height in pixels (default: keep)")
	cmd.Flags().StringVarP(&opts.Direction, "direction", "d", pipeline.DefaultDirection, "seam order: vertical, horizontal, alternating, random")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", pipeline.DefaultSeed, "seed for the random direction policy")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "output format: png, jpeg, gif, bmp, tiff (default: from output or source)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, or directory with several inputs")
	cmd.Flags().StringVar(&opts.overlay, "overlay", "", "also write the source with every removed seam drawn on it")
	cmd.Flags().Float64Var(&opts.OverlayWidth, "overlay-width", 0, "stroke overlay seams this wide (default: one pixel)")
	cmd.Flags().Float64Var(&opts.OverlayDim, "overlay-dim", 0, "darken the overlay background, 0 to 1")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "images carved concurrently (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when a cached result exists")

	return cmd
}

// applyCarveConfig fills flags the user did not set from the config file.
func (c *CLI) applyCarveConfig(cmd *cobra.Command, opts *carveOpts) {
	flags := cmd.Flags()
	if !flags.Changed("direction") && c.cfg.Carve.Direction != "" {
		opts.Direction = c.cfg.Carve.Direction
	}
	if !flags.Changed("seed") && c.cfg.Carve.Seed != 0 {
		opts.Seed = c.cfg.Carve.Seed
	}
	if !flags.Changed("format") && c.cfg.Carve.Format != "" {
		opts.Format = c.cfg.Carve.Format
	}
	if opts.jobs <= 0 {
		opts.jobs = max(c.cfg.Carve.Jobs, 1)
	}
}

// carveTask is one input and where its outputs go.
type carveTask struct {
	input      string
	output     string
	outputDir  string
	overlay    string
	overlayDir string
	result     *pipeline.Result
}

func (c *CLI) runCarve(ctx context.Context, inputs []string, opts carveOpts) error {
	tasks, err := planCarve(inputs, opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Carving %d image(s)...", len(tasks)))
	spinner.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs)
	for _, task := range tasks {
		g.Go(func() error {
			res, err := c.carveFile(gctx, runner, task, opts.Options)
			if err != nil {
				return fmt.Errorf("%s: %w", task.input, err)
			}
			task.result = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		spinner.StopWithError("Carving failed")
		return err
	}
	spinner.Stop()

	for _, task := range tasks {
		printSuccess("Carved %s", inputName(task.input))
		printCarveStats(task.result)
		printFile(task.output)
		if task.overlay != "" {
			printFile(task.overlay)
		}
	}
	if len(tasks) > 1 {
		prog.done(fmt.Sprintf("Carved %d images", len(tasks)))
	}
	return nil
}

// planCarve resolves output paths. A single input writes to the given paths;
// several inputs treat them as directories.
func planCarve(inputs []string, opts carveOpts) ([]*carveTask, error) {
	multi := len(inputs) > 1
	for _, dir := range []string{opts.output, opts.overlay} {
		if multi && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create output directory: %w", err)
			}
		}
	}

	tasks := make([]*carveTask, 0, len(inputs))
	seen := make(map[string]string, len(inputs))
	for _, in := range inputs {
		t := &carveTask{input: in, output: opts.output, overlay: opts.overlay}
		if multi {
			t.output, t.outputDir = "", opts.output
			t.overlay, t.overlayDir = "", opts.overlay
		}
		path := t.output
		if t.outputDir != "" {
			path = batchOutput(t.outputDir, in, expectedFormat(in, opts.Format))
		}
		if path != "" {
			if err := errs.ValidateOutputPath(path); err != nil {
				return nil, err
			}
			if prev, ok := seen[path]; ok {
				return nil, errs.New(errs.ErrCodeInvalidPath, "%s and %s would both be written to %s", prev, in, path)
			}
			seen[path] = in
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// batchOutput names the output for input inside dir, with the extension of
// the format it is encoded in.
func batchOutput(dir, input string, f imageio.Format) string {
	return derivedName(filepath.Join(dir, inputName(input)), "", f.Ext())
}

// expectedFormat predicts the output format of input before it is decoded:
// the requested one, else the source format by extension when it can be
// encoded, else the default.
func expectedFormat(input, requested string) imageio.Format {
	if f, err := imageio.ParseFormat(requested); err == nil {
		return f
	}
	if f, err := imageio.FormatFromPath(inputName(input)); err == nil {
		return f
	}
	return pipeline.DefaultFormat
}

// carveFile carves one file and writes its outputs.
func (c *CLI) carveFile(ctx context.Context, runner *pipeline.Runner, task *carveTask, opts pipeline.Options) (*pipeline.Result, error) {
	src, err := readInput(ctx, task.input)
	if err != nil {
		return nil, err
	}
	if opts.Format == "" && task.output != "" {
		if f, err := imageio.FormatFromPath(task.output); err == nil {
			opts.Format = string(f)
		}
	}
	opts.Overlay = task.overlay != "" || task.overlayDir != ""

	res, err := runner.Execute(ctx, src, inputName(task.input), opts)
	if err != nil {
		return nil, err
	}

	switch {
	case task.outputDir != "":
		task.output = batchOutput(task.outputDir, task.input, res.Format)
	case task.output == "":
		task.output = derivedName(outputStem(task.input), "-carved", res.Format.Ext())
	}
	if err := imageio.WriteFile(task.output, res.Image); err != nil {
		return nil, err
	}
	if task.overlayDir != "" {
		task.overlay = filepath.Join(task.overlayDir, derivedName(inputName(task.input), "-seams", res.Format.Ext()))
	}
	if task.overlay != "" {
		if err := writeOverlay(task.overlay, res); err != nil {
			return nil, err
		}
	}
	c.Logger.Debug("carved", "input", task.input, "output", task.output,
		"seams", res.SeamsRemoved(), "total", res.Stats.Total())
	return res, nil
}

// writeOverlay writes the overlay, re-encoding it when path names a format
// other than the result's.
func writeOverlay(path string, res *pipeline.Result) error {
	f, err := imageio.FormatFromPath(path)
	if err != nil || f == res.Format {
		return imageio.WriteFile(path, res.Overlay)
	}
	img, _, err := imageio.DecodeBytes(res.Overlay)
	if err != nil {
		return err
	}
	return imageio.Save(path, img)
}

// derivedName returns path with suffix added to its base name. A non-empty
// ext replaces the original extension.
func derivedName(path, suffix, ext string) string {
	orig := filepath.Ext(path)
	if ext == "" {
		ext = orig
	}
	return strings.TrimSuffix(path, orig) + suffix + ext
}
