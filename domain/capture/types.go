package capture

import (
	"errors"
	"image"

	"github.com/soocke/smile-tracker-go/domain/geometry"
)

// ErrNoFrame is returned when no frame has been captured yet.
var ErrNoFrame = errors.New("capture: no frame available")

// Grabber produces one frame per call. Implementations need not be safe for
// concurrent use; the capture loop is the only caller.
type Grabber interface {
	Grab() (*image.RGBA, error)
	Close() error
}

// FrameSource provides read-only access to captured frames.
// LatestFrame returns the freshest snapshot while Running reports activity.
type FrameSource interface {
	LatestFrame() FrameSnapshot
	Running() bool
}

// ResolutionSource reports the native stream size.
type ResolutionSource interface {
	Resolution() geometry.StreamResolution
}

// ServiceContract exposes basic lifecycle control for capture services.
type ServiceContract interface {
	Start()
	Stop()
	Running() bool
}
