// Package detect locates faces in preview frames.
package detect

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/soocke/smile-tracker-go/domain/geometry"
)

// ErrClosed is returned by a detector used after Close.
var ErrClosed = errors.New("detect: detector closed")

// Detector finds face bounding boxes in stream pixel coordinates.
type Detector interface {
	Detect(img image.Image) ([]geometry.Rect, error)
	Close() error
}

// Event is one detection pass over a captured frame.
type Event struct {
	Sequence   uint64
	CapturedAt time.Time
	Detected   time.Time
	Faces      []geometry.Rect
	Stream     geometry.StreamResolution
	Elapsed    time.Duration
}

// CascadeOptions tune the Haar cascade search.
type CascadeOptions struct {
	ScaleFactor  float64
	MinNeighbors int
	MinSize      int
}

func DefaultCascadeOptions() CascadeOptions {
	return CascadeOptions{ScaleFactor: 1.1, MinNeighbors: 4, MinSize: 40}
}

// CascadeDetector runs an OpenCV Haar cascade. Detect calls are serialised.
type CascadeDetector struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
	opts       CascadeOptions
	closed     bool
}

// NewCascadeDetector loads the cascade file at path.
func NewCascadeDetector(path string, opts CascadeOptions) (*CascadeDetector, error) {
	if opts.ScaleFactor <= 1 {
		opts.ScaleFactor = 1.1
	}
	if opts.MinNeighbors < 0 {
		opts.MinNeighbors = 0
	}
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("detect: failed to load cascade classifier %q", path)
	}
	return &CascadeDetector{classifier: classifier, opts: opts}, nil
}

func (d *CascadeDetector) Detect(img image.Image) ([]geometry.Rect, error) {
	if img == nil {
		return nil, nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("detect: convert frame: %w", err)
	}
	defer mat.Close()
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)
	gocv.EqualizeHist(gray, &gray)
	minSz := image.Pt(d.opts.MinSize, d.opts.MinSize)
	found := d.classifier.DetectMultiScaleWithParams(gray, d.opts.ScaleFactor, d.opts.MinNeighbors, 0, minSz, image.Point{})
	return toRects(found, d.opts.MinSize), nil
}

func (d *CascadeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.classifier.Close()
}

// toRects drops boxes smaller than minSize on either side and returns the
// rest in scan order (top to bottom, then left to right).
func toRects(found []image.Rectangle, minSize int) []geometry.Rect {
	out := make([]geometry.Rect, 0, len(found))
	for _, r := range found {
		r = r.Canon()
		if r.Dx() < minSize || r.Dy() < minSize || r.Empty() {
			continue
		}
		out = append(out, geometry.FromImage(r))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// Nop finds nothing. It stands in when no cascade could be loaded so the
// preview keeps running without overlays.
type Nop struct{}

func (Nop) Detect(image.Image) ([]geometry.Rect, error) { return nil, nil }
func (Nop) Close() error                                 { return nil }
