package smile

import (
	"context"
	"image"
	"sort"
	"time"

	"github.com/soocke/smile-tracker-go/domain/geometry"
)

// Threshold is the smile confidence a face must exceed to count as smiling.
const Threshold = 0.5

// Face is one face returned by the attribute service.
type Face struct {
	ID    string
	Rect  geometry.Rect
	Smile float64
}

// FrameGrabber returns the current preview frame.
type FrameGrabber interface {
	GrabFrame(ctx context.Context) (image.Image, error)
}

// AttributeService scores faces found in an encoded image.
type AttributeService interface {
	DetectSmile(ctx context.Context, jpeg []byte) ([]Face, error)
}

// Result describes one completed check. Face.Rect is in Frame coordinates.
type Result struct {
	Started  time.Time
	Finished time.Time
	Frame    image.Image
	Face     Face
	Found    bool
	Smiling  bool
	Err      error
}

// LargestFace returns the face with the largest rectangle area. Ties go to
// the earlier face.
func LargestFace(faces []Face) (Face, bool) {
	if len(faces) == 0 {
		return Face{}, false
	}
	ordered := make([]Face, len(faces))
	copy(ordered, faces)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Rect.Area() > ordered[j].Rect.Area()
	})
	return ordered[0], true
}

// IsSmiling reports whether f's confidence exceeds Threshold.
func IsSmiling(f Face) bool { return f.Smile > Threshold }
