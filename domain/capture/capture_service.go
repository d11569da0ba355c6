package capture

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"

	"github.com/soocke/smile-tracker-go/domain/geometry"
)

const captureStatsLogInterval = 5 * time.Second

// CaptureService acquires preview frames from a Grabber and exposes the
// latest capture alongside instrumentation data. Use NewCaptureService to
// construct an instance.
type CaptureService interface {
	Start()
	Stop()
	LatestFrame() FrameSnapshot
	Running() bool
	Resolution() geometry.StreamResolution
	GrabFrame(ctx context.Context) (image.Image, error)
	Stats() CaptureStats
}

type captureService struct {
	running      atomic.Bool
	latest       atomic.Pointer[FrameSnapshot]
	native       atomic.Pointer[geometry.StreamResolution]
	grabber      Grabber
	orientation  func() geometry.Orientation
	period       time.Duration
	logger       *slog.Logger
	captures     atomic.Uint64
	skipped      atomic.Uint64
	captureNanos atomic.Uint64
	sequence     atomic.Uint64
	loopDone     chan struct{}
	mu           sync.Mutex // guards loopDone
}

func newCaptureService(logger *slog.Logger, grabber Grabber, orientation func() geometry.Orientation, period time.Duration) *captureService {
	if orientation == nil {
		orientation = func() geometry.Orientation { return geometry.Landscape }
	}
	if period <= 0 {
		period = 33 * time.Millisecond
	}
	return &captureService{grabber: grabber, orientation: orientation, period: period, logger: logger}
}

// NewCaptureService constructs a capture service polling grabber every period.
// Frames are rotated for display according to orientation; Resolution keeps
// reporting the native (unrotated) size.
func NewCaptureService(logger *slog.Logger, grabber Grabber, orientation func() geometry.Orientation, period time.Duration) CaptureService {
	return newCaptureService(logger, grabber, orientation, period)
}

func (s *captureService) LatestFrame() FrameSnapshot {
	snap := s.latest.Load()
	if snap == nil {
		return FrameSnapshot{}
	}
	return *snap
}

func (s *captureService) Running() bool { return s.running.Load() }

// Resolution returns the native size of the most recent frame.
func (s *captureService) Resolution() geometry.StreamResolution {
	r := s.native.Load()
	if r == nil {
		return geometry.StreamResolution{}
	}
	return *r
}

// GrabFrame returns the latest frame for the smile check.
func (s *captureService) GrabFrame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := s.latest.Load()
	if snap == nil || snap.Image == nil {
		return nil, ErrNoFrame
	}
	return snap.Image, nil
}

func (s *captureService) Stats() CaptureStats {
	captures := s.captures.Load()
	skipped := s.skipped.Load()
	total := s.captureNanos.Load()
	var avg time.Duration
	avgMicros := 0.0
	if captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
		avgMicros = float64(avg) / float64(time.Microsecond)
	}
	snapshot := s.LatestFrame()
	age := time.Duration(0)
	if !snapshot.CapturedAt.IsZero() {
		age = time.Since(snapshot.CapturedAt)
	}
	return CaptureStats{
		Captures:         captures,
		Skipped:          skipped,
		AvgCapture:       avg,
		AvgCaptureMicros: avgMicros,
		LastCapture:      snapshot.CapturedAt,
		LatestFrameAge:   age,
		Sequence:         snapshot.Sequence,
	}
}

func (s *captureService) Start() {
	if s.grabber == nil || !s.running.CompareAndSwap(false, true) {
		return
	}
	done := make(chan struct{})
	s.mu.Lock()
	s.loopDone = done
	s.mu.Unlock()
	go s.loop(done)
}

// Stop ends the capture loop and waits for it to exit. The latest frame is
// dropped so a later Start does not show a stale preview.
func (s *captureService) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	s.mu.Lock()
	done := s.loopDone
	s.mu.Unlock()
	if done != nil {
		<-done
	}
	s.latest.Store(nil)
}

func (s *captureService) loop(done chan struct{}) {
	defer close(done)
	logTicker := time.NewTicker(captureStatsLogInterval)
	defer logTicker.Stop()
	for s.running.Load() {
		start := time.Now()
		img, err := s.grabber.Grab()
		if err != nil && s.logger != nil {
			s.logger.Error("capture grab", "error", err)
		}
		if img == nil {
			s.skipped.Add(1)
			time.Sleep(s.period)
			continue
		}
		b := img.Bounds()
		native := geometry.StreamResolution{Width: float64(b.Dx()), Height: float64(b.Dy())}
		img = orient(img, s.orientation())
		elapsed := time.Since(start)
		s.captureNanos.Add(uint64(elapsed.Nanoseconds()))
		s.captures.Add(1)
		seq := s.sequence.Add(1)
		s.native.Store(&native)
		s.latest.Store(&FrameSnapshot{Image: img, CapturedAt: time.Now(), Sequence: seq})
		select {
		case <-logTicker.C:
			s.logStats()
		default:
		}
		if rest := s.period - elapsed; rest > 0 {
			time.Sleep(rest)
		}
	}
}

// orient rotates img so that it appears upright for o. Frames are opaque, so
// the NRGBA buffers returned by imaging can be reused as RGBA directly.
func orient(img *image.RGBA, o geometry.Orientation) *image.RGBA {
	var out *image.NRGBA
	switch o {
	case geometry.Portrait:
		out = imaging.Rotate270(img)
	case geometry.PortraitFlipped:
		out = imaging.Rotate90(img)
	case geometry.LandscapeFlipped:
		out = imaging.Rotate180(img)
	default:
		return img
	}
	return &image.RGBA{Pix: out.Pix, Stride: out.Stride, Rect: out.Rect}
}

func (s *captureService) logStats() {
	if s.logger == nil {
		return
	}
	stats := s.Stats()
	s.logger.Debug("capture.stats",
		"captures", stats.Captures,
		"skipped", stats.Skipped,
		"avg_capture", stats.AvgCapture,
		"age", stats.LatestFrameAge,
	)
}
