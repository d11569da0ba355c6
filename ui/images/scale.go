package images

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/soocke/smile-tracker-go/domain/geometry"
)

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// ScaleToFit scales src so it fits within maxW x maxH preserving aspect ratio.
// If the source already fits, the original is returned.
func ScaleToFit(src image.Image, maxW, maxH int) image.Image {
	if src == nil {
		return nil
	}
	if maxW < 1 {
		maxW = 1
	}
	if maxH < 1 {
		maxH = 1
	}
	b := src.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return src
	}
	return imaging.Fit(src, maxW, maxH, imaging.Linear)
}

// Letterbox renders frame onto a black surface-sized canvas, scaled into the
// active rect. The active rect should come from geometry.ComputeActiveRect for
// the same surface. A nil frame or empty active rect yields a blank canvas.
func Letterbox(frame image.Image, surface geometry.DisplaySurface, active geometry.Rect) *image.RGBA {
	w, h := int(surface.Width), int(surface.Height)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	if frame == nil || active.Empty() {
		return dst
	}
	r := active.Image().Intersect(dst.Bounds())
	if r.Empty() {
		return dst
	}
	scaled := imaging.Resize(frame, r.Dx(), r.Dy(), imaging.Linear)
	draw.Draw(dst, r, scaled, image.Point{}, draw.Src)
	return dst
}
