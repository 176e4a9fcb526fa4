// Package pipeline provides the carve pipeline shared by the CLI and the
// HTTP server.
//
// The pipeline consists of three stages:
//
//  1. Decode: Read the source image (any registered format, EXIF-oriented)
//  2. Carve: Remove seams until the target size is reached
//  3. Encode: Write the carved image, and optionally a seam overlay
//
// Results are cached by source hash and options, so carving the same file
// twice with the same flags is a cache lookup.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    TargetWidth: 640,
//	    Direction:   "alternating",
//	    Overlay:     true,
//	}
//	result, err := runner.Execute(ctx, data, "tower.jpg", opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("tower-640.jpg", result.Image, 0644)
//
// Run individual stages:
//
//	img, format, err := pipeline.Decode(ctx, data, "tower.jpg")
//	c, err := pipeline.Carve(ctx, img, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/seamcarver/pkg/cache"
	"github.com/matzehuels/seamcarver/pkg/carve"
	errs "github.com/matzehuels/seamcarver/pkg/errors"
	"github.com/matzehuels/seamcarver/pkg/imageio"
	"github.com/matzehuels/seamcarver/pkg/render/overlay"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultDirection is the default seam direction policy.
	DefaultDirection = "vertical"

	// DefaultSeed seeds the random direction policy.
	DefaultSeed = carve.DefaultSeed

	// DefaultFormat is used when the source format cannot be encoded.
	DefaultFormat = imageio.DefaultFormat
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the carve pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// TargetWidth and TargetHeight are the output size in pixels.
	// Zero keeps the source size on that axis.
	TargetWidth  int `json:"width,omitempty"`
	TargetHeight int `json:"height,omitempty"`

	// Direction is the seam direction policy: vertical, horizontal,
	// alternating or random.
	Direction string `json:"direction,omitempty"`
	Seed      uint64 `json:"seed,omitempty"`

	// Format is the output encoding. Empty keeps the source format.
	Format string `json:"format,omitempty"`

	// Overlay also renders the removed seams over the source image.
	Overlay bool `json:"overlay,omitempty"`
	// OverlayWidth above 1 strokes overlay seams as lines of that width.
	OverlayWidth float64 `json:"overlay_width,omitempty"`
	// OverlayDim in [0, 1) darkens the overlay background.
	OverlayDim float64 `json:"overlay_dim,omitempty"`

	// Refresh bypasses the cache lookup (results are still stored).
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Image is the encoded carved image.
	Image []byte `json:"image"`

	// Overlay is the encoded seam overlay, when requested.
	Overlay []byte `json:"overlay,omitempty"`

	// Format is the encoding of Image and Overlay.
	Format imageio.Format `json:"format"`

	SourceWidth  int `json:"source_width"`
	SourceHeight int `json:"source_height"`
	Width        int `json:"width"`
	Height       int `json:"height"`

	// Vertical and Horizontal count removed seams per axis.
	Vertical   int `json:"vertical"`
	Horizontal int `json:"horizontal"`

	// Stats contains timing information. Not cached.
	Stats Stats `json:"-"`

	// CacheHit reports whether the result came from the cache.
	CacheHit bool `json:"-"`
}

// SeamsRemoved returns the total number of removed seams.
func (r *Result) SeamsRemoved() int {
	return r.Vertical + r.Horizontal
}

// Stats contains pipeline execution statistics.
type Stats struct {
	DecodeTime time.Duration
	CarveTime  time.Duration
	EncodeTime time.Duration
}

// Total returns the summed stage time.
func (s Stats) Total() time.Duration {
	return s.DecodeTime + s.CarveTime + s.EncodeTime
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateDirection checks that a direction policy name is valid.
func ValidateDirection(direction string) error {
	if _, err := carve.ParseDirection(direction); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidDirection, err, "invalid direction %q (must be one of: vertical, horizontal, alternating, random)", direction)
	}
	return nil
}

// ValidateFormat checks that an output format can be encoded.
func ValidateFormat(format string) error {
	_, err := imageio.ParseFormat(format)
	return err
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields that do not depend on the source and
// applies defaults. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.TargetWidth < 0 || o.TargetHeight < 0 {
		return errs.New(errs.ErrCodeInvalidDimensions, "target %dx%d cannot be negative", o.TargetWidth, o.TargetHeight)
	}
	if o.Direction == "" {
		o.Direction = DefaultDirection
	}
	if err := ValidateDirection(o.Direction); err != nil {
		return err
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.OverlayWidth < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "overlay width cannot be negative, got %g", o.OverlayWidth)
	}
	if o.OverlayDim < 0 || o.OverlayDim >= 1 {
		return errs.New(errs.ErrCodeInvalidInput, "overlay dim must be in [0, 1), got %g", o.OverlayDim)
	}
	if o.Format != "" {
		if err := ValidateFormat(o.Format); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ResolveFor fills source-dependent defaults: zero targets take the source
// size and an empty format takes the source format when it can be encoded.
// The target is then validated against the source size.
func (o *Options) ResolveFor(src imageio.Config) error {
	if o.TargetWidth == 0 {
		o.TargetWidth = src.Width
	}
	if o.TargetHeight == 0 {
		o.TargetHeight = src.Height
	}
	if o.Format == "" {
		o.Format = string(DefaultFormat)
		if _, err := imageio.ParseFormat(string(src.Format)); err == nil {
			o.Format = string(src.Format)
		}
	}
	return errs.ValidateTarget(src.Width, src.Height, o.TargetWidth, o.TargetHeight)
}

// ParsedDirection returns the carve direction. Call after validation.
func (o *Options) ParsedDirection() carve.Direction {
	d, _ := carve.ParseDirection(o.Direction)
	return d
}

// OverlayOptions returns how the overlay is drawn.
func (o *Options) OverlayOptions() overlay.Options {
	return overlay.Options{LineWidth: o.OverlayWidth, Dim: o.OverlayDim}
}

// ParsedFormat returns the output format. Call after ResolveFor.
func (o *Options) ParsedFormat() imageio.Format {
	f, err := imageio.ParseFormat(o.Format)
	if err != nil {
		return DefaultFormat
	}
	return f
}

// CarveKeyOpts returns cache key options for carve results.
// The seed only matters to the random policy.
func (o *Options) CarveKeyOpts() cache.CarveKeyOpts {
	opts := cache.CarveKeyOpts{
		Width:     o.TargetWidth,
		Height:    o.TargetHeight,
		Direction: o.ParsedDirection().String(),
		Format:    string(o.ParsedFormat()),
		Overlay:   o.Overlay,
	}
	if o.ParsedDirection() == carve.DirectionRandom {
		opts.Seed = o.Seed
	}
	if o.Overlay {
		opts.OverlayWidth, opts.OverlayDim = o.OverlayWidth, o.OverlayDim
	}
	return opts
}

func (o Options) String() string {
	return fmt.Sprintf("%dx%d %s %s", o.TargetWidth, o.TargetHeight, o.Direction, o.Format)
}
