package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"

	"github.com/FACorreiaa/backpackor/internal/app/models"
)

const (
	MaxImageWidth    = 1600
	JPEGContentType  = "image/jpeg"
	normalizeQuality = 85

	// Uploads are rejected from their header before any pixels are decoded.
	maxSourceDimension = 12000
	maxSourcePixels    = 50_000_000
)

// NormalizeImage decodes an uploaded image, applies EXIF orientation, bounds
// the width to MaxImageWidth and re-encodes it as JPEG.
func NormalizeImage(data []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, models.NewValidationError("the file is not a supported image")
	}
	if cfg.Width > maxSourceDimension || cfg.Height > maxSourceDimension ||
		cfg.Width*cfg.Height > maxSourcePixels {
		return nil, models.NewValidationError("the image is too large (%dx%d)", cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, models.NewValidationError("the file is not a supported image")
	}

	if img.Bounds().Dx() > MaxImageWidth {
		img = imaging.Resize(img, MaxImageWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(normalizeQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
