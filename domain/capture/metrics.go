package capture

import (
	"image"
	"time"

	"github.com/soocke/smile-tracker-go/domain/geometry"
)

// FrameSnapshot carries the latest captured frame and metadata.
type FrameSnapshot struct {
	Image      *image.RGBA
	CapturedAt time.Time
	Sequence   uint64
}

// Resolution returns the snapshot's pixel size as a stream resolution.
func (s FrameSnapshot) Resolution() geometry.StreamResolution {
	if s.Image == nil {
		return geometry.StreamResolution{}
	}
	b := s.Image.Bounds()
	return geometry.StreamResolution{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// CaptureStats summarises capture loop behaviour for instrumentation.
type CaptureStats struct {
	Captures         uint64
	Skipped          uint64
	AvgCapture       time.Duration
	AvgCaptureMicros float64
	LastCapture      time.Time
	LatestFrameAge   time.Duration
	Sequence         uint64
}
