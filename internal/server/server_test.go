package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/seamcarver/pkg/cache"
	errs "github.com/matzehuels/seamcarver/pkg/errors"
	"github.com/matzehuels/seamcarver/pkg/imageio"
	"github.com/matzehuels/seamcarver/pkg/jobs"
	"github.com/matzehuels/seamcarver/pkg/pipeline"
)

func pattern(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8((x*41 + y*89 + x*y*7) % 256)
			img.Set(x, y, color.NRGBA{R: v, G: 255 - v, B: uint8(y * 25), A: 255})
		}
	}
	data, err := imageio.EncodeBytes(img, imageio.FormatPNG)
	require.NoError(t, err)
	return data
}

func newTestServer(t *testing.T, opts Options) (*httptest.Server, jobs.Store) {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	store := jobs.NewMemoryStore()
	logger := log.New(bytes.NewBuffer(nil))
	srv := New(pipeline.NewRunner(fc, nil, logger), store, logger, opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["version"])
}

func TestCarve(t *testing.T) {
	ts, store := newTestServer(t, Options{})
	src := pattern(t, 8, 6)

	resp, err := http.Post(ts.URL+"/v1/carve?width=5&height=4&direction=alternating&name=tile.png", "image/png", bytes.NewReader(src))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "5", resp.Header.Get(HeaderSeamsRemoved))
	assert.Equal(t, "5", resp.Header.Get(HeaderWidth))
	assert.Equal(t, "4", resp.Header.Get(HeaderHeight))
	assert.Equal(t, "miss", resp.Header.Get(HeaderCache))

	img, _, err := image.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 5, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())

	id := resp.Header.Get(HeaderJobID)
	require.NotEmpty(t, id)
	job, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusDone, job.Status)
	assert.Equal(t, "tile.png", job.Name)
	assert.Equal(t, 8, job.SourceWidth)
	assert.Equal(t, 6, job.SourceHeight)
	assert.Equal(t, 5, job.SeamsRemoved)
	assert.False(t, job.CacheHit)
}

func TestCarveCacheHit(t *testing.T) {
	ts, _ := newTestServer(t, Options{})
	src := pattern(t, 6, 4)
	url := ts.URL + "/v1/carve?width=4"

	for i, want := range []string{"miss", "hit"} {
		resp, err := http.Post(url, "image/png", bytes.NewReader(src))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, "request %d", i)
		assert.Equal(t, want, resp.Header.Get(HeaderCache), "request %d", i)
	}
}

func TestCarveOverlayView(t *testing.T) {
	ts, _ := newTestServer(t, Options{})

	resp, err := http.Post(ts.URL+"/v1/carve?width=4&view=overlay&overlay_width=2&overlay_dim=0.4", "image/png", bytes.NewReader(pattern(t, 6, 4)))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	img, _, err := image.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(6, 4), img.Bounds().Size(), "overlay keeps the source size")
}

func TestCarveBadRequests(t *testing.T) {
	ts, _ := newTestServer(t, Options{MaxUploadBytes: 512})
	small := pattern(t, 6, 4)

	tests := []struct {
		name   string
		query  string
		body   []byte
		status int
		code   errs.Code
	}{
		{"bad width", "width=abc", small, http.StatusBadRequest, errs.ErrCodeInvalidDimensions},
		{"bad direction", "direction=diagonal", small, http.StatusBadRequest, errs.ErrCodeInvalidDirection},
		{"bad format", "format=webp", small, http.StatusBadRequest, errs.ErrCodeInvalidFormat},
		{"bad view", "view=energy", small, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"bad overlay width", "view=overlay&overlay_width=thick", small, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"overlay dim out of range", "view=overlay&overlay_dim=2", small, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"bad name", "name=../etc/passwd", small, http.StatusBadRequest, ""},
		{"target too large", "width=60", small, http.StatusBadRequest, errs.ErrCodeInvalidDimensions},
		{"empty body", "", nil, http.StatusBadRequest, errs.ErrCodeInvalidImage},
		{"not an image", "", []byte("definitely not a png"), http.StatusBadRequest, errs.ErrCodeInvalidImage},
		{"too large", "", bytes.Repeat([]byte{0}, 1024), http.StatusRequestEntityTooLarge, errs.ErrCodeImageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/v1/carve?"+tt.query, "image/png", bytes.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			e := decodeError(t, resp)
			assert.NotEmpty(t, e.Error)
			if tt.code != "" {
				assert.Equal(t, tt.code, e.Code)
			}
		})
	}
}

func TestCarveFailureRecordsJob(t *testing.T) {
	ts, store := newTestServer(t, Options{})

	resp, err := http.Post(ts.URL+"/v1/carve", "image/png", bytes.NewReader([]byte("garbage")))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	job, err := store.Get(context.Background(), resp.Header.Get(HeaderJobID))
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusFailed, job.Status)
	assert.NotEmpty(t, job.Error)
}

func TestEnergy(t *testing.T) {
	ts, _ := newTestServer(t, Options{})

	resp, err := http.Post(ts.URL+"/v1/energy?format=bmp", "image/png", bytes.NewReader(pattern(t, 5, 5)))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/bmp", resp.Header.Get("Content-Type"))
	assert.Equal(t, "5", resp.Header.Get(HeaderWidth))
	assert.NotEmpty(t, resp.Header.Get("X-Energy-Max"))
}

func TestJobs(t *testing.T) {
	ts, _ := newTestServer(t, Options{})
	src := pattern(t, 6, 4)

	var ids []string
	for range 3 {
		resp, err := http.Post(ts.URL+"/v1/carve?width=5", "image/png", bytes.NewReader(src))
		require.NoError(t, err)
		resp.Body.Close()
		ids = append(ids, resp.Header.Get(HeaderJobID))
	}

	t.Run("get", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/v1/jobs/" + ids[0])
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var job jobs.Job
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&job))
		assert.Equal(t, ids[0], job.ID)
		assert.Equal(t, jobs.StatusDone, job.Status)
	})

	t.Run("list", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/v1/jobs?limit=2")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Jobs []jobs.Job `json:"jobs"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Len(t, body.Jobs, 2)
	})

	t.Run("bad limit", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/v1/jobs?limit=0")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/v1/jobs/job_nope")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, errs.ErrCodeJobNotFound, decodeError(t, resp).Code)
	})
}

func TestListenAndServeShutdown(t *testing.T) {
	srv := New(pipeline.NewRunner(nil, nil, nil), nil, log.New(bytes.NewBuffer(nil)), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	assert.NoError(t, <-done)
}
