package presenter

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"log/slog"

	"github.com/soocke/smile-tracker-go/config"
	"github.com/soocke/smile-tracker-go/domain/capture"
	"github.com/soocke/smile-tracker-go/domain/detect"
	"github.com/soocke/smile-tracker-go/domain/geometry"
	"github.com/soocke/smile-tracker-go/domain/smile"
	"github.com/soocke/smile-tracker-go/domain/tracking"
	"github.com/soocke/smile-tracker-go/ui/images"
	"github.com/soocke/smile-tracker-go/ui/model"
)

// FrameSource supplies the most recent preview frame and the native stream size.
type FrameSource interface {
	Running() bool
	LatestFrame() capture.FrameSnapshot
	Resolution() geometry.StreamResolution
}

// SmileChecker starts a smile check when its guard admits one.
type SmileChecker interface {
	Offer(ctx context.Context, now time.Time) (<-chan smile.Result, bool)
}

// DetectionSession exposes the tracking session operations used by the presenter.
type DetectionSession interface {
	Current() tracking.State
	FacesSeen(n int)
	CheckStarted()
	CheckFinished(smiling bool, err error)
}

// SurfaceProvider reports the current size of the preview surface.
type SurfaceProvider interface {
	Surface() geometry.DisplaySurface
}

// SmileRecorder counts smiles for the session stats.
type SmileRecorder interface{ RecordSmile() }

// DetectionView describes the UI surface updated by the presenter.
type DetectionView interface {
	UpdatePreview(img image.Image)
	UpdateFace(img image.Image)
}

type detectionTask struct {
	snapshot capture.FrameSnapshot
}

type detectionResult struct {
	event detect.Event
	err   error
}

const faceThumbSize = 160

// DetectionPresenter coordinates the preview, face detection scheduling and
// smile checks. All methods except the worker run on the UI thread.
type DetectionPresenter struct {
	Enabled  func() bool
	Source   FrameSource
	Detector detect.Detector
	Checker  SmileChecker
	Session  DetectionSession
	Surface  SurfaceProvider
	View     DetectionView
	Config   *config.Config
	Overlay  *model.OverlayModel
	Smiles   SmileRecorder
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	workerOnce sync.Once
	closeOnce  sync.Once
	workCh     chan detectionTask
	resultCh   chan detectionResult

	pending       <-chan smile.Result
	lastDetectSeq uint64
	lastDetect    time.Time
}

// NewDetectionPresenter constructs a detection presenter.
func NewDetectionPresenter(enabled func() bool, source FrameSource, detector detect.Detector, checker SmileChecker, session DetectionSession, surface SurfaceProvider, view DetectionView, cfg *config.Config, overlay *model.OverlayModel, smiles SmileRecorder, logger *slog.Logger) *DetectionPresenter {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if overlay == nil {
		overlay = model.NewOverlayModel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &DetectionPresenter{
		Enabled:  enabled,
		Source:   source,
		Detector: detector,
		Checker:  checker,
		Session:  session,
		Surface:  surface,
		View:     view,
		Config:   cfg,
		Overlay:  overlay,
		Smiles:   smiles,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		workCh:   make(chan detectionTask, 1),
		resultCh: make(chan detectionResult, 1),
	}
}

// ProcessFrame handles finished work, redraws the preview and schedules the
// next detection. It never waits on the detector or on a smile check.
func (p *DetectionPresenter) ProcessFrame() {
	if p == nil || p.Enabled == nil || p.Source == nil || p.Detector == nil || p.View == nil {
		return
	}
	if p.ctx.Err() != nil { // closed
		return
	}

	p.ensureWorker()

drain:
	for {
		select {
		case res := <-p.resultCh:
			p.handleResult(res)
		default:
			break drain
		}
	}

	p.pollCheck()
	if !p.Enabled() || !p.Source.Running() {
		return
	}

	snapshot := p.Source.LatestFrame()
	if snapshot.Image == nil {
		return
	}
	p.render(snapshot.Image)
	p.maybeDispatch(snapshot)
}

// Reset drops overlay state and any result still in flight. Called when
// tracking stops.
func (p *DetectionPresenter) Reset() {
	if p == nil {
		return
	}
	for {
		select {
		case <-p.resultCh:
		default:
			p.pending = nil
			p.lastDetectSeq = 0
			p.lastDetect = time.Time{}
			p.Overlay.Clear()
			return
		}
	}
}

// Close stops the worker and cancels an outstanding smile check.
func (p *DetectionPresenter) Close() {
	if p == nil {
		return
	}
	p.closeOnce.Do(func() {
		p.cancel()
		p.workerOnce.Do(func() {})
		close(p.workCh)
	})
}

func (p *DetectionPresenter) ensureWorker() {
	p.workerOnce.Do(func() {
		go p.runWorker()
	})
}

func (p *DetectionPresenter) runWorker() {
	for task := range p.workCh {
		res := p.executeTask(task)
		select {
		case p.resultCh <- res:
		default:
			select {
			case <-p.resultCh:
			default:
			}
			select {
			case p.resultCh <- res:
			default:
			}
		}
	}
}

func (p *DetectionPresenter) maybeDispatch(snapshot capture.FrameSnapshot) {
	if snapshot.Sequence == 0 || snapshot.Sequence == p.lastDetectSeq {
		return
	}
	if !p.lastDetect.IsZero() && time.Since(p.lastDetect) < p.Config.DetectInterval() {
		return
	}
	p.lastDetectSeq = snapshot.Sequence
	p.lastDetect = time.Now()
	p.dispatchTask(detectionTask{snapshot: snapshot})
}

func (p *DetectionPresenter) dispatchTask(task detectionTask) {
	select {
	case p.workCh <- task:
	default:
		select {
		case <-p.workCh:
		default:
		}
		select {
		case p.workCh <- task:
		default:
		}
	}
}

func (p *DetectionPresenter) executeTask(task detectionTask) (res detectionResult) {
	frame := task.snapshot.Image
	if frame == nil {
		res.err = errors.New("nil frame")
		return res
	}
	defer func() {
		if r := recover(); r != nil {
			res = detectionResult{err: errors.New("detector panic")}
			if p.logger != nil {
				p.logger.Error("detector panic", "error", r)
			}
		}
	}()
	start := time.Now()
	faces, err := p.Detector.Detect(frame)
	if err != nil {
		res.err = err
		return res
	}
	res.event = detect.Event{
		Sequence:   task.snapshot.Sequence,
		CapturedAt: task.snapshot.CapturedAt,
		Detected:   time.Now(),
		Faces:      faces,
		Stream:     task.snapshot.Resolution(),
		Elapsed:    time.Since(start),
	}
	return res
}

// handleResult lays out one detection event and offers it to the smile checker.
func (p *DetectionPresenter) handleResult(res detectionResult) {
	if res.err != nil {
		if p.logger != nil {
			p.logger.Error("detection", "error", res.err)
		}
		return
	}
	ev := res.event
	// sizing is read once per event and shared by every face in it
	stream := p.Source.Resolution()
	surface := p.surface()
	orientation := p.Config.OrientationValue()
	placements := geometry.Layout(ev.Faces, stream, orientation, surface)
	if !p.Overlay.SetLayout(ev.Sequence, placements) {
		return
	}
	if p.Session != nil {
		p.Session.FacesSeen(len(ev.Faces))
	}
	if len(ev.Faces) == 0 || p.Checker == nil || !p.Config.CheckSmile {
		return
	}
	ch, ok := p.Checker.Offer(p.ctx, time.Now())
	if !ok {
		return
	}
	p.pending = ch
	if p.Session != nil {
		p.Session.CheckStarted()
	}
}

// pollCheck applies a finished smile check without blocking.
func (p *DetectionPresenter) pollCheck() {
	if p.pending == nil {
		return
	}
	var res smile.Result
	select {
	case r, ok := <-p.pending:
		p.pending = nil
		if !ok {
			return
		}
		res = r
	default:
		return
	}
	if p.Session != nil {
		p.Session.CheckFinished(res.Smiling, res.Err)
	}
	if res.Err != nil {
		return
	}
	var face image.Image
	if res.Smiling {
		if p.Smiles != nil {
			p.Smiles.RecordSmile()
		}
		if rgba, ok := res.Frame.(*image.RGBA); ok && res.Found {
			if crop, _, err := images.ExtractFace(rgba, res.Face.Rect, 0.15); err == nil {
				face = images.ScaleToFit(crop, faceThumbSize, faceThumbSize)
				p.View.UpdateFace(face)
			}
		}
	}
	p.Overlay.SetCheck(res.Smiling, res.Finished, face)
}

func (p *DetectionPresenter) surface() geometry.DisplaySurface {
	if p.Surface != nil {
		return p.Surface.Surface()
	}
	return geometry.DisplaySurface{Width: float64(p.Config.PreviewW), Height: float64(p.Config.PreviewH)}
}

func (p *DetectionPresenter) render(frame image.Image) {
	decoration := images.DecorationIcon
	if p.Config.OverlayStyle == config.OverlayHat {
		decoration = images.DecorationHat
	}
	status := ""
	if p.Session != nil && p.Session.Current() == tracking.StateChecking {
		status = "checking..."
	}
	ov := images.Overlay{
		Placements: p.Overlay.Placements(),
		Decoration: decoration,
		Smiling:    p.Overlay.Smiling(),
		Status:     status,
	}
	img := images.Compose(frame, p.Source.Resolution(), p.Config.OrientationValue(), p.surface(), ov, p.Config.Mirror)
	p.View.UpdatePreview(img)
}
