package capture

import (
	"image"
	"sync/atomic"

	"github.com/vova616/screenshot"
)

// ScreenGrabber captures a region of the desktop. A zero region captures the
// whole screen.
type ScreenGrabber struct {
	region atomic.Pointer[image.Rectangle]
}

func NewScreenGrabber(region image.Rectangle) *ScreenGrabber {
	g := &ScreenGrabber{}
	g.SetRegion(region)
	return g
}

// SetRegion changes the captured region for subsequent grabs.
func (g *ScreenGrabber) SetRegion(region image.Rectangle) {
	r := region.Canon()
	g.region.Store(&r)
}

func (g *ScreenGrabber) Region() image.Rectangle {
	if r := g.region.Load(); r != nil {
		return *r
	}
	return image.Rectangle{}
}

func (g *ScreenGrabber) Grab() (*image.RGBA, error) {
	r := g.Region()
	if r.Empty() {
		return screenshot.CaptureScreen()
	}
	return screenshot.CaptureRect(r)
}

func (g *ScreenGrabber) Close() error { return nil }
