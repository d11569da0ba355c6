package images

import (
	"errors"
	"image"
	"image/draw"

	"github.com/soocke/smile-tracker-go/domain/geometry"
)

// ExtractFace returns the part of frame covered by face grown by pad (a
// fraction of the face size on every side). The rectangle is clamped to the
// frame bounds and is at least 1x1. The returned rectangle is relative to frame.
func ExtractFace(frame *image.RGBA, face geometry.Rect, pad float64) (*image.RGBA, image.Rectangle, error) {
	if frame == nil || frame.Bounds().Empty() {
		return nil, image.Rectangle{}, errors.New("nil frame")
	}
	if face.Empty() {
		return nil, image.Rectangle{}, errors.New("empty face")
	}
	if pad < 0 {
		pad = 0
	}
	grown := geometry.Rect{
		X:      face.X - face.Width*pad,
		Y:      face.Y - face.Height*pad,
		Width:  face.Width * (1 + 2*pad),
		Height: face.Height * (1 + 2*pad),
	}
	b := frame.Bounds()
	r := grown.Image().Add(b.Min).Intersect(b)
	if r.Empty() {
		// face lies outside the frame; keep the nearest corner pixel
		x := clamp(int(face.X)+b.Min.X, b.Min.X, b.Max.X-1)
		y := clamp(int(face.Y)+b.Min.Y, b.Min.Y, b.Max.Y-1)
		r = image.Rect(x, y, x+1, y+1)
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), frame, r.Min, draw.Src)
	return out, r.Sub(b.Min), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
