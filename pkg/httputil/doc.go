// Package httputil fetches remote images for the CLI.
//
// # Overview
//
//   - [Fetch]: download a URL with a size limit and retries
//   - [Retry]: automatic retry with exponential backoff
//
// # Retries
//
// Network errors, 429 and 5xx responses are wrapped in [RetryableError] and
// retried with exponential backoff. Other 4xx responses fail immediately:
//
//	data, err := httputil.Fetch(ctx, nil, "https://example.com/beach.jpg", 32<<20)
//
// # Inputs
//
// [IsURL] tells remote inputs apart from local paths, so commands can accept
// either.
package httputil
