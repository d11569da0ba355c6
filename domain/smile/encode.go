package smile

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// EncodeFrame scales img to the given height (aspect preserved) and encodes
// it as JPEG. scale is encodedHeight/originalHeight and is 1 when no resize
// happened. height <= 0 keeps the original size.
func EncodeFrame(img image.Image, height, quality int) (data []byte, scale float64, err error) {
	if img == nil {
		return nil, 0, errors.New("smile: nil frame")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, 0, fmt.Errorf("smile: empty frame %v", b)
	}
	scale = 1
	src := img
	if height > 0 && b.Dy() != height {
		src = imaging.Resize(img, 0, height, imaging.Linear)
		scale = float64(height) / float64(b.Dy())
	}
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, src, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, 0, fmt.Errorf("smile: encode jpeg: %w", err)
	}
	return buf.Bytes(), scale, nil
}
