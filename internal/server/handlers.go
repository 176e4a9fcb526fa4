package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/seamcarver/pkg/buildinfo"
	errs "github.com/matzehuels/seamcarver/pkg/errors"
	"github.com/matzehuels/seamcarver/pkg/imageio"
	"github.com/matzehuels/seamcarver/pkg/jobs"
	"github.com/matzehuels/seamcarver/pkg/observability"
	"github.com/matzehuels/seamcarver/pkg/pipeline"
)

// Response headers describing a carve result.
const (
	HeaderJobID        = "X-Job-ID"
	HeaderCache        = "X-Cache"
	HeaderSeamsRemoved = "X-Seams-Removed"
	HeaderWidth        = "X-Image-Width"
	HeaderHeight       = "X-Image-Height"
)

const (
	defaultJobList = 20
	maxJobList     = 100
)

type errorResponse struct {
	Error string    `json:"error"`
	Code  errs.Code `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleCarve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts, err := carveOptions(q.Get)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name := q.Get("name")
	if name == "" {
		name = "upload"
	} else if err := errs.ValidateFilename(name); err != nil {
		s.writeError(w, r, err)
		return
	}
	view := q.Get("view")
	if view != "" && view != "image" && view != "overlay" {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "view must be image or overlay, got %q", view))
		return
	}
	opts.Overlay = view == "overlay"

	job := jobs.New(name, s.opts.JobTTL)
	job.TargetWidth, job.TargetHeight = opts.TargetWidth, opts.TargetHeight
	job.Direction, job.Format = opts.Direction, opts.Format
	if err := s.jobs.Create(r.Context(), job); err != nil {
		s.writeError(w, r, fmt.Errorf("create job: %w", err))
		return
	}
	w.Header().Set(HeaderJobID, job.ID)

	src, err := s.readBody(w, r)
	if err != nil {
		s.finishJob(r, job, nil, err)
		s.writeError(w, r, err)
		return
	}

	job.Start()
	s.updateJob(r, job)

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.Timeout)
	defer cancel()
	res, err := s.runner.Execute(ctx, src, name, opts)
	s.finishJob(r, job, res, err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body := res.Image
	if opts.Overlay {
		body = res.Overlay
	}
	h := w.Header()
	h.Set("Content-Type", res.Format.ContentType())
	h.Set(HeaderSeamsRemoved, strconv.Itoa(res.SeamsRemoved()))
	h.Set(HeaderWidth, strconv.Itoa(res.Width))
	h.Set(HeaderHeight, strconv.Itoa(res.Height))
	h.Set(HeaderCache, cacheStatus(res.CacheHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleEnergy(w http.ResponseWriter, r *http.Request) {
	format := imageio.DefaultFormat
	if f := r.URL.Query().Get("format"); f != "" {
		parsed, err := imageio.ParseFormat(f)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		format = parsed
	}
	refresh, err := boolParam(r.URL.Query().Get, "refresh")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	src, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.Timeout)
	defer cancel()
	res, err := s.runner.Energy(ctx, src, "upload", format, refresh)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", res.Format.ContentType())
	h.Set(HeaderWidth, strconv.Itoa(res.Width))
	h.Set(HeaderHeight, strconv.Itoa(res.Height))
	h.Set(HeaderCache, cacheStatus(res.CacheHit))
	h.Set("X-Energy-Min", strconv.FormatFloat(res.Stats.Min, 'f', 4, 64))
	h.Set("X-Energy-Max", strconv.FormatFloat(res.Stats.Max, 'f', 4, 64))
	h.Set("X-Energy-Mean", strconv.FormatFloat(res.Stats.Mean, 'f', 4, 64))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Image)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit := defaultJobList
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "limit must be a positive integer"))
			return
		}
		limit = min(n, maxJobList)
	}
	list, err := s.jobs.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*jobs.Job{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": list})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// =============================================================================
// Helpers
// =============================================================================

// carveOptions parses carve query parameters.
func carveOptions(get func(string) string) (pipeline.Options, error) {
	var opts pipeline.Options
	var err error
	if opts.TargetWidth, err = intParam(get, "width"); err != nil {
		return opts, err
	}
	if opts.TargetHeight, err = intParam(get, "height"); err != nil {
		return opts, err
	}
	if v := get("seed"); v != "" {
		if opts.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return opts, errs.New(errs.ErrCodeInvalidInput, "seed must be an unsigned integer")
		}
	}
	if opts.Refresh, err = boolParam(get, "refresh"); err != nil {
		return opts, err
	}
	if opts.OverlayWidth, err = floatParam(get, "overlay_width"); err != nil {
		return opts, err
	}
	if opts.OverlayDim, err = floatParam(get, "overlay_dim"); err != nil {
		return opts, err
	}
	opts.Direction = get("direction")
	opts.Format = get("format")
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

func intParam(get func(string) string, name string) (int, error) {
	v := get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errs.New(errs.ErrCodeInvalidDimensions, "%s must be a non-negative integer, got %q", name, v)
	}
	return n, nil
}

func floatParam(get func(string) string, name string) (float64, error) {
	v := get(name)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidInput, "%s must be a number, got %q", name, v)
	}
	return f, nil
}

func boolParam(get func(string) string, name string) (bool, error) {
	v := get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errs.New(errs.ErrCodeInvalidInput, "%s must be a boolean, got %q", name, v)
	}
	return b, nil
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errs.New(errs.ErrCodeImageTooLarge, "upload exceeds %d bytes", tooLarge.Limit)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read body")
	}
	if len(data) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidImage, "request body is empty")
	}
	return data, nil
}

func (s *Server) finishJob(r *http.Request, job *jobs.Job, res *pipeline.Result, err error) {
	if res != nil {
		job.SourceWidth, job.SourceHeight = res.SourceWidth, res.SourceHeight
		job.TargetWidth, job.TargetHeight = res.Width, res.Height
		job.SeamsRemoved = res.SeamsRemoved()
		job.CacheHit = res.CacheHit
		job.Format = string(res.Format)
	}
	if job.StartedAt.IsZero() {
		job.StartedAt = time.Now()
	}
	job.Finish(err)
	s.updateJob(r, job)
}

func (s *Server) updateJob(r *http.Request, job *jobs.Job) {
	// Job bookkeeping must not fail the request, and must survive a
	// request context canceled by the client.
	ctx := context.WithoutCancel(r.Context())
	if err := s.jobs.Update(ctx, job); err != nil {
		s.logger.Warn("update job", "job", job.ID, "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.GetCode(err)
	if errors.Is(err, jobs.ErrNotFound) {
		code = errs.ErrCodeJobNotFound
	}
	if code == "" {
		code = errs.ErrCodeInternal
	}
	status := errs.HTTPStatus(errs.New(code, ""))

	msg := errs.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
		if code == errs.ErrCodeInternal {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
