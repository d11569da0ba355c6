package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/smile-tracker-go/config"
	"github.com/soocke/smile-tracker-go/debug"
	"github.com/soocke/smile-tracker-go/ui/presenter"
	"github.com/soocke/smile-tracker-go/ui/theme"
)

const (
	tick          = 33 * time.Millisecond
	debugInterval = 5 * time.Second
)

type app struct {
	container *AppContainer
	logger    *slog.Logger
	width     int
	height    int
	afterID   string
	cancel    context.CancelFunc
}

// NewApp creates the main window and assembles the application.
func NewApp(title string, width, height int, cfg *config.Config, cfgPath string, logger *slog.Logger) *app {
	a := &app{logger: logger, width: width, height: height}
	a.container = BuildContainer(cfg, cfgPath, logger)

	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", width, height))
	return a
}

// Start builds the widgets, kicks off the update loop and blocks until the
// main window is closed.
func (a *app) Start() {
	c := a.container
	theme.InitStyles()
	c.RootView.Build(
		[]string{config.SourceCamera, config.SourceScreen},
		c.CapturePresenter.Toggle,
		c.Selection.OpenOrFocus,
		a.exitHandler,
		c.SwitchSource,
	)
	c.Loop = presenter.NewLoop(c.SessionPresenter, c.StatusPresenter, c.DetectionPresenter, a.scheduleUpdate)

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	if c.Config.Debug {
		debug.StartGoroutineLogger(ctx, debugInterval, a.logger, a.captureProbe, a.checkerProbe)
		debug.StartMemLogger(ctx, debugInterval, a.logger)
	}

	a.scheduleUpdate()
	App.Wait()
	a.shutdown()
}

func (a *app) captureProbe() []any {
	st := a.container.CaptureSvc.Stats()
	return []any{
		slog.Uint64("captures", st.Captures),
		slog.Uint64("skipped", st.Skipped),
		slog.Duration("frame_age", st.LatestFrameAge),
	}
}

func (a *app) checkerProbe() []any {
	st := a.container.Checker.Stats()
	return []any{
		slog.Uint64("checks", st.Checks),
		slog.Uint64("check_failures", st.Failures),
		slog.Uint64("smiles", st.Smiles),
		slog.Bool("check_in_flight", a.container.Tracking.Throttle().InFlight()),
	}
}

func (a *app) update() {
	defer func() {
		if r := recover(); r != nil && a.logger != nil {
			a.logger.Error("update loop panic", "error", r)
		}
	}()
	a.container.Loop.Tick()
}

func (a *app) scheduleUpdate() {
	// TclAfter keeps the loop on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.update() })
}

func (a *app) exitHandler() {
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
		a.afterID = ""
	}
	Destroy(App)
}

func (a *app) shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
	if err := a.container.Close(); err != nil && a.logger != nil {
		a.logger.Error("shutdown", "error", err)
	}
}
