package cli

import (
	"context"
	"net/url"
	"path"
	"path/filepath"

	"github.com/matzehuels/seamcarver/pkg/httputil"
	"github.com/matzehuels/seamcarver/pkg/imageio"
)

// maxDownloadBytes caps images fetched from URLs.
const maxDownloadBytes = 64 << 20

// readInput reads a local file or downloads an http(s) URL.
func readInput(ctx context.Context, input string) ([]byte, error) {
	if httputil.IsURL(input) {
		return httputil.Fetch(ctx, nil, input, maxDownloadBytes)
	}
	return imageio.ReadFile(input)
}

// inputName returns the base name of a file path or of a URL's path.
func inputName(input string) string {
	if !httputil.IsURL(input) {
		return filepath.Base(input)
	}
	u, err := url.Parse(input)
	if err != nil {
		return "download"
	}
	switch base := path.Base(u.Path); base {
	case "", ".", "/":
		return "download"
	default:
		return base
	}
}

// outputStem is the path derived outputs are named after: the input itself
// for files, so outputs land next to it, and the bare name for URLs.
func outputStem(input string) string {
	if httputil.IsURL(input) {
		return inputName(input)
	}
	return input
}
