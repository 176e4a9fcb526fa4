package pipeline

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/matzehuels/seamcarver/pkg/cache"
	"github.com/matzehuels/seamcarver/pkg/carve"
	errs "github.com/matzehuels/seamcarver/pkg/errors"
	"github.com/matzehuels/seamcarver/pkg/imageio"
	"github.com/matzehuels/seamcarver/pkg/observability"
)

// testImage encodes a deterministic w×h pattern in format.
func testImage(t *testing.T, w, h int, format imageio.Format) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8((x*53 + y*97 + x*y*11) % 256)
			img.Set(x, y, color.NRGBA{R: v, G: 255 - v, B: uint8(x * 30), A: 255})
		}
	}
	data, err := imageio.EncodeBytes(img, format)
	if err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return data
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	return NewRunner(c, nil, nil)
}

func TestValidateDirection(t *testing.T) {
	tests := []struct {
		direction string
		wantErr   bool
	}{
		{"vertical", false},
		{"horizontal", false},
		{"alternating", false},
		{"both", false},
		{"random", false},
		{"v", false},
		{"diagonal", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateDirection(tt.direction)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateDirection(%q) error = %v, wantErr %v", tt.direction, err, tt.wantErr)
		}
		if err != nil && !errs.Is(err, errs.ErrCodeInvalidDirection) {
			t.Errorf("ValidateDirection(%q) code = %q", tt.direction, errs.GetCode(err))
		}
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"png", false},
		{"jpeg", false},
		{"jpg", false},
		{"gif", false},
		{"webp", true}, // decode only
		{"svg", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.Direction != DefaultDirection {
		t.Errorf("Direction = %q, want %q", opts.Direction, DefaultDirection)
	}
	if opts.Seed != DefaultSeed {
		t.Errorf("Seed = %d, want %d", opts.Seed, DefaultSeed)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	bad := Options{TargetWidth: -1}
	if err := bad.ValidateAndSetDefaults(); !errs.Is(err, errs.ErrCodeInvalidDimensions) {
		t.Errorf("negative target error = %v", err)
	}
}

func TestResolveFor(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		src        imageio.Config
		wantW      int
		wantH      int
		wantFormat string
		wantErr    bool
	}{
		{"keep size", Options{}, imageio.Config{Format: "png", Width: 10, Height: 8}, 10, 8, "png", false},
		{"width only", Options{TargetWidth: 6}, imageio.Config{Format: "gif", Width: 10, Height: 8}, 6, 8, "gif", false},
		{"webp falls back", Options{}, imageio.Config{Format: "webp", Width: 4, Height: 4}, 4, 4, "png", false},
		{"explicit format", Options{Format: "jpeg"}, imageio.Config{Format: "png", Width: 4, Height: 4}, 4, 4, "jpeg", false},
		{"grow", Options{TargetWidth: 11}, imageio.Config{Format: "png", Width: 10, Height: 8}, 0, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ResolveFor(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveFor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.opts.TargetWidth != tt.wantW || tt.opts.TargetHeight != tt.wantH {
				t.Errorf("target = %dx%d, want %dx%d", tt.opts.TargetWidth, tt.opts.TargetHeight, tt.wantW, tt.wantH)
			}
			if tt.opts.Format != tt.wantFormat {
				t.Errorf("format = %q, want %q", tt.opts.Format, tt.wantFormat)
			}
		})
	}
}

func TestCarveKeyOpts(t *testing.T) {
	a := Options{TargetWidth: 5, Direction: "v", Seed: 1, Format: "png"}
	b := Options{TargetWidth: 5, Direction: "vertical", Seed: 2, Format: "png"}
	if a.CarveKeyOpts() != b.CarveKeyOpts() {
		t.Error("aliases and unused seeds should share a cache key")
	}

	r1 := Options{Direction: "random", Seed: 1, Format: "png"}
	r2 := Options{Direction: "random", Seed: 2, Format: "png"}
	if r1.CarveKeyOpts() == r2.CarveKeyOpts() {
		t.Error("random policy should key on the seed")
	}

	plain := Options{Format: "png", OverlayWidth: 3}
	wide := Options{Format: "png", Overlay: true, OverlayWidth: 3}
	thin := Options{Format: "png", Overlay: true}
	if plain.CarveKeyOpts() != (&Options{Format: "png"}).CarveKeyOpts() {
		t.Error("overlay style should not key results without an overlay")
	}
	if wide.CarveKeyOpts() == thin.CarveKeyOpts() {
		t.Error("overlay width should key overlay results")
	}
}

func TestOptionsOverlayValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative width", Options{OverlayWidth: -1}},
		{"negative dim", Options{OverlayDim: -0.1}},
		{"full dim", Options{OverlayDim: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	defer r.Close()
	src := testImage(t, 8, 6, imageio.FormatPNG)

	opts := Options{TargetWidth: 5, TargetHeight: 4, Direction: "alternating"}
	res, err := r.Execute(ctx, src, "test.png", opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.CacheHit {
		t.Error("first run should not hit the cache")
	}
	if res.Width != 5 || res.Height != 4 || res.SourceWidth != 8 || res.SourceHeight != 6 {
		t.Errorf("sizes = %dx%d from %dx%d", res.Width, res.Height, res.SourceWidth, res.SourceHeight)
	}
	if res.Vertical != 3 || res.Horizontal != 2 || res.SeamsRemoved() != 5 {
		t.Errorf("seams = %d vertical, %d horizontal", res.Vertical, res.Horizontal)
	}
	if res.Format != imageio.FormatPNG {
		t.Errorf("format = %q", res.Format)
	}

	cfg, err := imageio.Probe(res.Image)
	if err != nil {
		t.Fatalf("Probe(result) error = %v", err)
	}
	if cfg.Width != 5 || cfg.Height != 4 {
		t.Errorf("encoded size = %dx%d", cfg.Width, cfg.Height)
	}
	if res.Overlay != nil {
		t.Error("overlay should be empty unless requested")
	}

	again, err := r.Execute(ctx, src, "test.png", opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !again.CacheHit {
		t.Error("second run should hit the cache")
	}
	if string(again.Image) != string(res.Image) || again.Vertical != 3 {
		t.Error("cached result differs")
	}

	opts.Refresh = true
	fresh, err := r.Execute(ctx, src, "test.png", opts)
	if err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	if fresh.CacheHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestRunnerOverlay(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	src := testImage(t, 6, 4, imageio.FormatPNG)

	res, err := r.Execute(context.Background(), src, "o.png", Options{TargetWidth: 4, Overlay: true, Format: "bmp"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	cfg, err := imageio.Probe(res.Overlay)
	if err != nil {
		t.Fatalf("Probe(overlay) error = %v", err)
	}
	if cfg.Width != 6 || cfg.Height != 4 || cfg.Format != imageio.FormatBMP {
		t.Errorf("overlay = %+v, want 6x4 bmp", cfg)
	}
}

// brightness sums the color channels of an encoded image.
func brightness(t *testing.T, data []byte) int {
	t.Helper()
	img, _, err := imageio.DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes() error = %v", err)
	}
	sum := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			sum += int(c.R) + int(c.G) + int(c.B)
		}
	}
	return sum
}

func TestRunnerOverlayStyle(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	src := testImage(t, 8, 6, imageio.FormatPNG)

	plain, err := r.Execute(context.Background(), src, "o.png", Options{TargetWidth: 6, Overlay: true})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	dimmed, err := r.Execute(context.Background(), src, "o.png", Options{TargetWidth: 6, Overlay: true, OverlayDim: 0.8})
	if err != nil {
		t.Fatalf("Execute(dim) error = %v", err)
	}
	if brightness(t, dimmed.Overlay) >= brightness(t, plain.Overlay) {
		t.Error("a dimmed overlay should be darker")
	}
	if string(dimmed.Image) != string(plain.Image) {
		t.Error("overlay style should not change the carved image")
	}
}

func TestRunnerErrors(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	src := testImage(t, 4, 4, imageio.FormatPNG)

	if _, err := r.Execute(ctx, src, "x", Options{TargetWidth: 9}); !errs.Is(err, errs.ErrCodeInvalidDimensions) {
		t.Errorf("oversized target error = %v", err)
	}
	if _, err := r.Execute(ctx, []byte("nope"), "x", Options{}); !errs.Is(err, errs.ErrCodeInvalidImage) {
		t.Errorf("garbage input error = %v", err)
	}
	if _, err := r.Execute(ctx, src, "x", Options{Direction: "sideways"}); !errs.Is(err, errs.ErrCodeInvalidDirection) {
		t.Errorf("bad direction error = %v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := r.Execute(canceled, src, "x", Options{TargetWidth: 2}); !errs.Is(err, errs.ErrCodeCanceled) {
		t.Errorf("canceled error = %v", err)
	}
}

func TestRunnerEnergy(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	src := testImage(t, 5, 3, imageio.FormatPNG)

	res, err := r.Energy(ctx, src, "e.png", imageio.FormatPNG, false)
	if err != nil {
		t.Fatalf("Energy() error = %v", err)
	}
	if res.Width != 5 || res.Height != 3 {
		t.Errorf("size = %dx%d", res.Width, res.Height)
	}
	if res.Stats.Min < 0 || res.Stats.Max > carve.MaxEnergy+1e-9 || res.Stats.Mean < res.Stats.Min {
		t.Errorf("stats out of range: %+v", res.Stats)
	}

	again, err := r.Energy(ctx, src, "e.png", imageio.FormatPNG, false)
	if err != nil {
		t.Fatalf("second Energy() error = %v", err)
	}
	if !again.CacheHit || again.Stats != res.Stats {
		t.Errorf("expected identical cache hit, got %+v", again)
	}
}

func TestComputeEnergyStats(t *testing.T) {
	g, err := carve.NewGrid([][]color.RGBA{{{R: 255, G: 255, B: 255, A: 255}}})
	if err != nil {
		t.Fatal(err)
	}
	s := ComputeEnergyStats(g)
	if s.Min != 0 || s.Max != 0 || s.Mean != 0 || s.Zero != 1 {
		t.Errorf("single pixel stats = %+v", s)
	}
}

func TestRunnerHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	rec := &recordingHooks{}
	observability.SetPipelineHooks(rec)

	r := NewRunner(nil, nil, nil)
	src := testImage(t, 4, 4, imageio.FormatPNG)
	if _, err := r.Execute(context.Background(), src, "h.png", Options{TargetWidth: 2}); err != nil {
		t.Fatal(err)
	}
	if rec.decodes != 1 || rec.carves != 1 || rec.encodes != 1 || rec.seams != 2 {
		t.Errorf("hooks = %+v", rec)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	decodes, carves, encodes, seams int
}

func (h *recordingHooks) OnDecodeComplete(context.Context, string, int, int, time.Duration, error) {
	h.decodes++
}

func (h *recordingHooks) OnCarveComplete(_ context.Context, seams int, _ time.Duration, _ error) {
	h.carves++
	h.seams += seams
}

func (h *recordingHooks) OnEncodeComplete(context.Context, string, int, time.Duration, error) {
	h.encodes++
}
