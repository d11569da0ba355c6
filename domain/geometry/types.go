package geometry

import (
	"image"
	"math"
	"strings"
)

// Orientation enumerates the display orientations reported by the sizing provider.
type Orientation int

const (
	Landscape Orientation = iota
	LandscapeFlipped
	Portrait
	PortraitFlipped
)

func (o Orientation) String() string {
	switch o {
	case Landscape:
		return "landscape"
	case LandscapeFlipped:
		return "landscape-flipped"
	case Portrait:
		return "portrait"
	case PortraitFlipped:
		return "portrait-flipped"
	default:
		return "unknown"
	}
}

// IsPortrait reports whether stream width and height must be swapped before use.
func (o Orientation) IsPortrait() bool { return o == Portrait || o == PortraitFlipped }

// ParseOrientation maps a config string onto an Orientation. Unknown values
// fall back to Landscape and report false.
func ParseOrientation(s string) (Orientation, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "landscape":
		return Landscape, true
	case "landscape-flipped", "landscapeflipped":
		return LandscapeFlipped, true
	case "portrait":
		return Portrait, true
	case "portrait-flipped", "portraitflipped":
		return PortraitFlipped, true
	default:
		return Landscape, false
	}
}

// StreamResolution is the native pixel size of the camera stream, measured
// before any orientation swap.
type StreamResolution struct {
	Width, Height float64
}

// Oriented returns the effective stream size for o (swapped for portrait).
func (s StreamResolution) Oriented(o Orientation) (w, h float64) {
	if o.IsPortrait() {
		return s.Height, s.Width
	}
	return s.Width, s.Height
}

// DisplaySurface is the size of the area hosting the preview.
type DisplaySurface struct {
	Width, Height float64
}

// Rect is a float rectangle with a top-left origin. It is used for boxes in
// stream space, boxes in display space and the active rect.
type Rect struct {
	X, Y, Width, Height float64
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Area returns Width*Height.
func (r Rect) Area() float64 { return r.Width * r.Height }

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Image rounds r to an integer rectangle for pixel rendering.
func (r Rect) Image() image.Rectangle {
	x0 := int(math.Round(r.X))
	y0 := int(math.Round(r.Y))
	x1 := int(math.Round(r.X + r.Width))
	y1 := int(math.Round(r.Y + r.Height))
	return image.Rect(x0, y0, x1, y1)
}

// FromImage converts an integer rectangle into a Rect.
func FromImage(r image.Rectangle) Rect {
	return Rect{X: float64(r.Min.X), Y: float64(r.Min.Y), Width: float64(r.Dx()), Height: float64(r.Dy())}
}
