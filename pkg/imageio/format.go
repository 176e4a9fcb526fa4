package imageio

import (
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	errs "github.com/matzehuels/seamcarver/pkg/errors"
)

// Format names an image encoding.
type Format string

// Supported formats. WebP can be decoded but not encoded.
const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
	FormatWebP Format = "webp"
)

// DefaultFormat is used when neither a flag nor a file extension names one.
const DefaultFormat = FormatPNG

var encodable = map[Format]imaging.Format{
	FormatPNG:  imaging.PNG,
	FormatJPEG: imaging.JPEG,
	FormatGIF:  imaging.GIF,
	FormatBMP:  imaging.BMP,
	FormatTIFF: imaging.TIFF,
}

// EncodeFormats lists the formats Encode accepts.
func EncodeFormats() []string {
	return []string{"png", "jpeg", "gif", "bmp", "tiff"}
}

// ParseFormat parses a format name. "jpg" and "tif" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "jpg":
		s = "jpeg"
	case "tif":
		s = "tiff"
	}
	if err := errs.ValidateFormat(s, EncodeFormats()); err != nil {
		return "", err
	}
	return Format(s), nil
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errs.New(errs.ErrCodeInvalidFormat, "cannot infer format from %q", path)
	}
	return ParseFormat(ext)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

// Ext returns the canonical file extension for f, with the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}
