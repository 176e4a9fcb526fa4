package imageio

import (
	"bytes"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	errs "github.com/matzehuels/seamcarver/pkg/errors"
)

// JPEGQuality is the quality used for JPEG output.
const JPEGQuality = 92

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	target, ok := encodable[f]
	if !ok {
		return errs.New(errs.ErrCodeUnsupported, "encoding %s is not supported", f)
	}
	return imaging.Encode(w, img, target, imaging.JPEGQuality(JPEGQuality))
}

// EncodeBytes encodes img in format f.
func EncodeBytes(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save encodes img in the format named by the file extension of path,
// creating parent directories as needed.
func Save(path string, img image.Image) error {
	if err := errs.ValidateOutputPath(path); err != nil {
		return err
	}
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := EncodeBytes(img, f)
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}

// WriteFile writes already encoded bytes to path.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
