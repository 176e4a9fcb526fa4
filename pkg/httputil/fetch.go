package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	errs "github.com/matzehuels/seamcarver/pkg/errors"
)

// DefaultTimeout bounds one download attempt when Fetch creates the client.
const DefaultTimeout = 30 * time.Second

// userAgent identifies downloads to remote servers.
const userAgent = "seamcarver"

var (
	fetchAttempts = 3
	fetchDelay    = time.Second
)

// IsURL reports whether s is an http or https URL rather than a file path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch downloads url and returns at most maxBytes of body. A nil client
// uses one with [DefaultTimeout]. Bodies larger than maxBytes fail with
// IMAGE_TOO_LARGE; 404 fails with FILE_NOT_FOUND.
func Fetch(ctx context.Context, client *http.Client, url string, maxBytes int64) ([]byte, error) {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	var data []byte
	err := Retry(ctx, fetchAttempts, fetchDelay, func() error {
		var err error
		data, err = fetchOnce(ctx, client, url, maxBytes)
		return err
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if errs.GetCode(err) != "" {
			return nil, err
		}
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "fetch %s", url)
	}
	return data, nil
}

func fetchOnce(ctx context.Context, client *http.Client, url string, maxBytes int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid URL %q", url)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errs.New(errs.ErrCodeFileNotFound, "%s: not found", url)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &RetryableError{Err: fmt.Errorf("%s: %s", url, resp.Status)}
	case resp.StatusCode != http.StatusOK:
		return nil, errs.New(errs.ErrCodeNetwork, "%s: %s", url, resp.Status)
	}

	if maxBytes > 0 && resp.ContentLength > maxBytes {
		return nil, errs.New(errs.ErrCodeImageTooLarge, "%s: %d bytes exceeds limit of %d", url, resp.ContentLength, maxBytes)
	}
	body := io.Reader(resp.Body)
	if maxBytes > 0 {
		body = io.LimitReader(resp.Body, maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, errs.New(errs.ErrCodeImageTooLarge, "%s: body exceeds limit of %d bytes", url, maxBytes)
	}
	return data, nil
}
