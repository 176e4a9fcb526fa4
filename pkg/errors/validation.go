package errors

import (
	"slices"
	"strings"
	"unicode"
)

// Limits on decoded images. Carving is quadratic in the seam count, so the
// server refuses anything past these bounds before decoding the pixels.
const (
	MaxDimension = 8192
	MaxPixels    = 16 << 20
)

// ValidateDimensions validates the size of a source image.
func ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidDimensions, "image is empty (%dx%d)", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return New(ErrCodeImageTooLarge, "image %dx%d exceeds %d pixels per side", width, height, MaxDimension)
	}
	if width*height > MaxPixels {
		return New(ErrCodeImageTooLarge, "image %dx%d exceeds %d pixels", width, height, MaxPixels)
	}
	return nil
}

// ValidateTarget validates a carve target against the source size.
// Carving only shrinks, so the target must lie in [1, source] on both axes.
func ValidateTarget(srcWidth, srcHeight, width, height int) error {
	if width < 1 || height < 1 {
		return New(ErrCodeInvalidDimensions, "target %dx%d must be at least 1x1", width, height)
	}
	if width > srcWidth || height > srcHeight {
		return New(ErrCodeInvalidDimensions, "target %dx%d exceeds source %dx%d", width, height, srcWidth, srcHeight)
	}
	return nil
}

// ValidateFormat checks that format is one of supported (case-insensitive).
func ValidateFormat(format string, supported []string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(supported, strings.ToLower(format)) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(supported, ", "))
	}
	return nil
}

// ValidateFilename validates a client supplied image name.
// It must be a simple basename without path components.
func ValidateFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}
	if len(filename) > 255 {
		return New(ErrCodeInvalidPath, "filename too long (max 255 characters)")
	}

	for _, r := range filename {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "filename contains invalid control characters")
		}
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidPath, "filename cannot contain path separators")
	}
	if filename == "." || filename == ".." {
		return New(ErrCodeInvalidPath, "filename cannot be %q", filename)
	}
	return nil
}

// ValidateOutputPath validates a local output path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must not name a directory (trailing separator)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "path %q names a directory", path)
	}
	return nil
}
