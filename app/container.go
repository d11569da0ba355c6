package app

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/smile-tracker-go/config"
	"github.com/soocke/smile-tracker-go/domain/capture"
	"github.com/soocke/smile-tracker-go/domain/detect"
	"github.com/soocke/smile-tracker-go/domain/faceapi"
	"github.com/soocke/smile-tracker-go/domain/geometry"
	"github.com/soocke/smile-tracker-go/domain/smile"
	"github.com/soocke/smile-tracker-go/domain/snapshot"
	"github.com/soocke/smile-tracker-go/domain/tracking"
	"github.com/soocke/smile-tracker-go/ui/model"
	"github.com/soocke/smile-tracker-go/ui/presenter"
	"github.com/soocke/smile-tracker-go/ui/view"
)

const capturePeriod = 33 * time.Millisecond

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config  *config.Config
	CfgPath string
	Logger  *slog.Logger

	// Models
	Capture *model.CaptureModel
	Session *model.SessionModel
	Overlay *model.OverlayModel

	// Services
	Grabber    *capture.SwitchGrabber
	Screen     *capture.ScreenGrabber
	CaptureSvc capture.CaptureService
	Detector   detect.Detector
	Tracking   *tracking.Session
	FaceAPI    *faceapi.Client
	Checker    *smile.Checker
	Snapshots  *snapshot.Saver

	// View
	RootView  *view.RootView
	UI        view.UI
	Selection view.SelectionOverlay

	// Presenters
	SessionPresenter   *presenter.SessionPresenter
	StatusPresenter    *presenter.StatusPresenter
	DetectionPresenter *presenter.DetectionPresenter
	CapturePresenter   *presenter.CapturePresenter
	Loop               *presenter.Loop
}

// BuildContainer constructs all components. Widgets are created later by
// RootView.Build; the only side effects here are opening the frame source
// and loading the cascade.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger) *AppContainer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	c := &AppContainer{Config: cfg, CfgPath: cfgPath, Logger: logger}
	c.Capture = &model.CaptureModel{}
	c.Session = model.NewSessionModel()
	c.Overlay = model.NewOverlayModel()

	c.Screen = capture.NewScreenGrabber(selectionRect(cfg))
	source, g := c.openSource(cfg.Source)
	c.Capture.SetSource(source)
	c.Grabber = capture.NewSwitchGrabber(source, g)
	c.CaptureSvc = capture.NewCaptureService(logger, c.Grabber, func() geometry.Orientation { return cfg.OrientationValue() }, capturePeriod)

	opts := detect.DefaultCascadeOptions()
	opts.MinSize = cfg.MinFacePx
	if d, err := detect.NewCascadeDetector(cfg.CascadePath, opts); err != nil {
		if logger != nil {
			logger.Error("face cascade unavailable, overlays disabled", "path", cfg.CascadePath, "error", err)
		}
		c.Detector = detect.Nop{}
	} else {
		c.Detector = d
	}

	c.Tracking = tracking.NewSession(logger, func() bool { return cfg.CheckSmile })
	c.FaceAPI = faceapi.NewClient(cfg.FaceAPIEndpoint, cfg.FaceAPIKey, nil, logger)
	c.Checker = smile.NewChecker(c.Tracking.Throttle(), c.CaptureSvc, c.FaceAPI, checkOptions(cfg), logger)
	c.Snapshots = snapshot.NewSaver(cfg.SnapshotDir, logger)
	c.Checker.OnSmile(c.saveSmile)

	c.RootView = view.NewRootView(cfg, cfgPath, logger)
	c.UI = c.RootView
	c.RootView.OnConfigApplied = c.ApplyConfig
	c.Selection = view.NewSelectionOverlay(cfg, cfgPath, logger, c.onRegionChanged)

	c.StatusPresenter = presenter.NewStatusPresenter(c.Tracking, c.UI)
	c.Tracking.AddListener(c.StatusPresenter.OnState)
	c.SessionPresenter = presenter.NewSessionPresenter(c.Session, c.Capture, c.UI)
	c.DetectionPresenter = presenter.NewDetectionPresenter(c.Capture.Enabled, c.CaptureSvc, c.Detector, c.Checker, c.Tracking, c.UI, c.UI, cfg, c.Overlay, c.Session, logger)
	c.CapturePresenter = presenter.NewCapturePresenter(c.Capture, c.CaptureSvc, c.Tracking, c.DetectionPresenter, c.UI)
	return c
}

func selectionRect(cfg *config.Config) image.Rectangle {
	if cfg.SelectionW <= 0 || cfg.SelectionH <= 0 {
		return image.Rectangle{}
	}
	return image.Rect(cfg.SelectionX, cfg.SelectionY, cfg.SelectionX+cfg.SelectionW, cfg.SelectionY+cfg.SelectionH)
}

// openSource returns a grabber for source, falling back to the screen when
// the camera cannot be opened.
func (c *AppContainer) openSource(source string) (string, capture.Grabber) {
	if source == config.SourceCamera {
		cam, err := capture.NewCameraGrabber(c.Config.CameraDevice)
		if err == nil {
			return config.SourceCamera, cam
		}
		if c.Logger != nil {
			c.Logger.Warn("camera unavailable, using screen", "device", c.Config.CameraDevice, "error", err)
		}
	}
	return config.SourceScreen, c.Screen
}

// SwitchSource changes the frame source. Tracking is stopped first so the
// overlay never mixes frames from two sources.
func (c *AppContainer) SwitchSource(source string) {
	if c.Grabber == nil || source == c.Grabber.Name() {
		return
	}
	if c.Capture.Enabled() {
		c.CapturePresenter.Disable()
	}
	name, g := c.openSource(source)
	prev := c.Grabber.Swap(name, g)
	if prev != nil && prev != capture.Grabber(c.Screen) {
		if err := prev.Close(); err != nil && c.Logger != nil {
			c.Logger.Error("close frame source", "error", err)
		}
	}
	c.Capture.SetSource(name)
	c.Config.Source = name
	if c.CfgPath != "" {
		if err := c.Config.Save(c.CfgPath); err != nil && c.Logger != nil {
			c.Logger.Error("save config", "error", err)
		}
	}
	if c.Logger != nil {
		c.Logger.Info("frame source changed", "source", name)
	}
}

func (c *AppContainer) onRegionChanged(r image.Rectangle) {
	c.Screen.SetRegion(r)
	if c.Logger != nil {
		c.Logger.Info("screen region changed", "region", r.String())
	}
}

func (c *AppContainer) saveSmile(res smile.Result) {
	if !c.Snapshots.Enabled() || res.Frame == nil {
		return
	}
	if _, err := c.Snapshots.SaveFace(c.Tracking.ID(), res.Frame, res.Face.Rect); err != nil && c.Logger != nil {
		c.Logger.Error("save smile snapshot", "error", err)
	}
}

// ApplyConfig pushes edited settings into services built from the config.
// The camera device is picked up on the next source switch; cascade path and
// minimum face size on the next start of the app.
func (c *AppContainer) ApplyConfig(cfg *config.Config) {
	c.FaceAPI.Configure(cfg.FaceAPIEndpoint, cfg.FaceAPIKey)
	c.Checker.SetOptions(checkOptions(cfg))
	c.Snapshots.SetDir(cfg.SnapshotDir)
}

func checkOptions(cfg *config.Config) smile.Options {
	return smile.Options{
		FrameHeight: cfg.CheckFrameHeight,
		JPEGQuality: cfg.JPEGQuality,
		Timeout:     cfg.CheckTimeout(),
	}
}

// Close releases services in reverse order of construction.
func (c *AppContainer) Close() error {
	if c.DetectionPresenter != nil {
		c.DetectionPresenter.Close()
	}
	if c.CaptureSvc != nil {
		c.CaptureSvc.Stop()
	}
	if c.Tracking != nil {
		c.Tracking.Close()
	}
	var firstErr error
	if c.Detector != nil {
		if err := c.Detector.Close(); err != nil {
			firstErr = fmt.Errorf("close detector: %w", err)
		}
	}
	if c.Grabber != nil {
		if err := c.Grabber.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close frame source: %w", err)
		}
	}
	return firstErr
}
