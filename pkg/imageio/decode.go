package imageio

import (
	"bytes"
	"image"
	"io"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	errs "github.com/matzehuels/seamcarver/pkg/errors"
)

// Config describes an image without decoding its pixels.
type Config struct {
	Format Format
	Width  int
	Height int
}

// Probe reads only the image header.
func Probe(data []byte) (Config, error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidImage, err, "unrecognized image")
	}
	return Config{Format: Format(name), Width: cfg.Width, Height: cfg.Height}, nil
}

// DecodeBytes validates the header dimensions and decodes data with EXIF
// auto-orientation. The returned format is the source encoding.
func DecodeBytes(data []byte) (image.Image, Format, error) {
	cfg, err := Probe(data)
	if err != nil {
		return nil, "", err
	}
	if err := errs.ValidateDimensions(cfg.Width, cfg.Height); err != nil {
		return nil, "", err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", errs.Wrap(errs.ErrCodeInvalidImage, err, "decode %s", cfg.Format)
	}
	return img, cfg.Format, nil
}

// Decode reads all of r and decodes it.
func Decode(r io.Reader) (image.Image, Format, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	return DecodeBytes(data)
}

// ReadFile reads the raw bytes of an image file, mapping a missing file to
// FILE_NOT_FOUND.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "image %s not found", path)
	}
	return data, err
}

// Open reads and decodes an image file.
func Open(path string) (image.Image, Format, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return DecodeBytes(data)
}
