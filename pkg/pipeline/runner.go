package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/seamcarver/pkg/cache"
	"github.com/matzehuels/seamcarver/pkg/carve"
	"github.com/matzehuels/seamcarver/pkg/imageio"
	"github.com/matzehuels/seamcarver/pkg/observability"
	"github.com/matzehuels/seamcarver/pkg/render/overlay"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL bounds how long carve results stay cached. Zero uses cache.TTLCarve.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete decode → carve → encode pipeline with caching.
// name is only used for logging and hooks.
func (r *Runner) Execute(ctx context.Context, src []byte, name string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	header, err := imageio.Probe(src)
	if err != nil {
		return nil, err
	}
	if err := opts.ResolveFor(header); err != nil {
		return nil, err
	}
	logger := r.Logger.With("image", name)

	cacheKey := r.Keyer.CarveKey(cache.Hash(src), opts.CarveKeyOpts())
	if !opts.Refresh {
		if cached, ok := r.lookup(ctx, cacheKey, "carve"); ok {
			logger.Debug("cache hit", "target", opts.String())
			cached.CacheHit = true
			return cached, nil
		}
	}

	result := &Result{Format: opts.ParsedFormat()}

	// Stage 1: Decode
	start := time.Now()
	img, _, err := Decode(ctx, src, name)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	result.Stats.DecodeTime = time.Since(start)
	result.SourceWidth, result.SourceHeight = img.Bounds().Dx(), img.Bounds().Dy()

	// Stage 2: Carve
	start = time.Now()
	c, err := Carve(ctx, img, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.CarveTime = time.Since(start)
	result.Width, result.Height = c.Width(), c.Height()
	result.Vertical, result.Horizontal = c.Removed(carve.Vertical), c.Removed(carve.Horizontal)

	logger.Info("carved",
		"from", fmt.Sprintf("%dx%d", result.SourceWidth, result.SourceHeight),
		"to", fmt.Sprintf("%dx%d", result.Width, result.Height),
		"seams", result.SeamsRemoved(),
		"duration", result.Stats.CarveTime)

	// Stage 3: Encode
	start = time.Now()
	if result.Image, err = Encode(ctx, c.Grid().Image(), result.Format); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	if opts.Overlay {
		drawn := overlay.Draw(img, c.History(), opts.OverlayOptions())
		if result.Overlay, err = Encode(ctx, drawn, result.Format); err != nil {
			return nil, fmt.Errorf("encode overlay: %w", err)
		}
	}
	result.Stats.EncodeTime = time.Since(start)

	r.store(ctx, cacheKey, "carve", result, r.carveTTL())
	return result, nil
}

// EnergyResult is the output of an energy map export.
type EnergyResult struct {
	Image    []byte         `json:"image"`
	Format   imageio.Format `json:"format"`
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Stats    EnergyStats    `json:"stats"`
	CacheHit bool           `json:"-"`
}

// Energy renders the grayscale energy map of src in format.
func (r *Runner) Energy(ctx context.Context, src []byte, name string, format imageio.Format, refresh bool) (*EnergyResult, error) {
	if format == "" {
		format = DefaultFormat
	}
	cacheKey := r.Keyer.EnergyKey(cache.Hash(src), string(format))
	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached EnergyResult
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "energy")
				cached.CacheHit = true
				return &cached, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "energy")
	}

	img, _, err := Decode(ctx, src, name)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	g, err := carve.FromImage(img)
	if err != nil {
		return nil, err
	}

	result := &EnergyResult{
		Format: format,
		Width:  g.Width(),
		Height: g.Height(),
		Stats:  ComputeEnergyStats(g),
	}
	if result.Image, err = Encode(ctx, g.EnergyImage(), format); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	r.Logger.Debug("energy map", "image", name, "mean", result.Stats.Mean)

	r.store(ctx, cacheKey, "energy", result, cache.TTLEnergy)
	return result, nil
}

// CarveImage runs only the carve stage on an already decoded image. It is
// used by callers that need the live carver, such as the mesh debugger.
func (r *Runner) CarveImage(ctx context.Context, img image.Image, opts Options) (*carve.Carver, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	b := img.Bounds()
	if err := opts.ResolveFor(imageio.Config{Width: b.Dx(), Height: b.Dy()}); err != nil {
		return nil, err
	}
	return Carve(ctx, img, opts)
}

func (r *Runner) lookup(ctx context.Context, key, keyType string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	var cached Result
	if err := json.Unmarshal(data, &cached); err != nil {
		// Unreadable entries are recomputed and overwritten.
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return &cached, true
}

func (r *Runner) store(ctx context.Context, key, keyType string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) carveTTL() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLCarve
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
