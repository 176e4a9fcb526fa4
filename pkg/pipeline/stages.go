package pipeline

import (
	"context"
	"image"
	"math"
	"time"

	"github.com/matzehuels/seamcarver/pkg/carve"
	errs "github.com/matzehuels/seamcarver/pkg/errors"
	"github.com/matzehuels/seamcarver/pkg/imageio"
	"github.com/matzehuels/seamcarver/pkg/observability"
)

// Decode decodes a source image, emitting decode hooks.
func Decode(ctx context.Context, data []byte, name string) (image.Image, imageio.Format, error) {
	hooks := observability.Pipeline()
	hooks.OnDecodeStart(ctx, name, len(data))
	start := time.Now()

	img, format, err := imageio.DecodeBytes(data)
	w, h := 0, 0
	if img != nil {
		w, h = img.Bounds().Dx(), img.Bounds().Dy()
	}
	hooks.OnDecodeComplete(ctx, name, w, h, time.Since(start), err)
	return img, format, err
}

// Carve builds a grid from img and carves it to the target in opts.
// opts must have been resolved against the image size.
func Carve(ctx context.Context, img image.Image, opts Options) (*carve.Carver, error) {
	g, err := carve.FromImage(img)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidImage, err, "build grid")
	}
	c := carve.New(g, carve.WithDirection(opts.ParsedDirection()), carve.WithSeed(opts.Seed))

	hooks := observability.Pipeline()
	hooks.OnCarveStart(ctx, g.Width(), g.Height(), opts.TargetWidth, opts.TargetHeight)
	start := time.Now()

	err = c.CarveTo(ctx, opts.TargetWidth, opts.TargetHeight)
	hooks.OnCarveComplete(ctx, len(c.History()), time.Since(start), err)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errs.Wrap(errs.ErrCodeCanceled, err, "carve interrupted")
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidDimensions, err, "carve")
	}
	return c, nil
}

// Encode encodes img, emitting encode hooks.
func Encode(ctx context.Context, img image.Image, format imageio.Format) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnEncodeStart(ctx, string(format))
	start := time.Now()

	data, err := imageio.EncodeBytes(img, format)
	hooks.OnEncodeComplete(ctx, string(format), len(data), time.Since(start), err)
	return data, err
}

// EnergyStats summarizes the energy of every pixel.
type EnergyStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	// Zero counts pixels with no gradient at all.
	Zero int `json:"zero"`
}

// ComputeEnergyStats scans the grid's current energies.
func ComputeEnergyStats(g *carve.Grid) EnergyStats {
	s := EnergyStats{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	n := 0
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			e := g.EnergyAt(x, y)
			s.Min = min(s.Min, e)
			s.Max = max(s.Max, e)
			sum += e
			if e == 0 {
				s.Zero++
			}
			n++
		}
	}
	if n == 0 {
		return EnergyStats{}
	}
	s.Mean = sum / float64(n)
	return s
}
