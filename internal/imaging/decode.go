// Package imaging turns uploaded bytes into a decoded image, accepting only
// the formats the classifier was trained on.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/gabriel-vasile/mimetype"

	"dermascan/domain"
)

type Format string

// DefaultMaxPixels caps width×height of an accepted upload. A small,
// highly compressed file can otherwise declare a frame that takes
// gigabytes to decode.
const DefaultMaxPixels = 89_478_485

const (
	JPEG Format = "JPEG"
	PNG  Format = "PNG"
)

var mimeFormats = []struct {
	mime   string
	format Format
}{
	{"image/jpeg", JPEG},
	{"image/png", PNG},
}

func AllowedFormats() []string {
	out := make([]string, 0, len(mimeFormats))
	for _, m := range mimeFormats {
		out = append(out, string(m.format))
	}
	return out
}

// Sniff reports the format by content, ignoring any client-supplied name or
// content type.
func Sniff(data []byte) (Format, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty upload", domain.ErrInvalidImage)
	}

	mt := mimetype.Detect(data)
	for _, m := range mimeFormats {
		if mt.Is(m.mime) {
			return m.format, nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedImageFormat, mt.String())
}

func Decode(data []byte) (image.Image, Format, error) {
	return DecodeLimited(data, DefaultMaxPixels)
}

// DecodeLimited reads the header first and refuses images larger than
// maxPixels before any pixel buffer is allocated. maxPixels <= 0 means
// DefaultMaxPixels.
func DecodeLimited(data []byte, maxPixels int) (image.Image, Format, error) {
	format, err := Sniff(data)
	if err != nil {
		return nil, "", err
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	var cfg image.Config
	switch format {
	case JPEG:
		cfg, err = jpeg.DecodeConfig(bytes.NewReader(data))
	case PNG:
		cfg, err = png.DecodeConfig(bytes.NewReader(data))
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", fmt.Errorf("%w: zero-sized image", domain.ErrInvalidImage)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > int64(maxPixels) {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds the %d pixel limit",
			domain.ErrInvalidImage, cfg.Width, cfg.Height, maxPixels)
	}

	var img image.Image
	switch format {
	case JPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	case PNG:
		img, err = png.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrInvalidImage, err)
	}

	return img, format, nil
}
