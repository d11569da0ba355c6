package view

import (
	"image"
	"log/slog"
	"strconv"
	"time"

	"github.com/soocke/smile-tracker-go/config"
	"github.com/soocke/smile-tracker-go/domain/geometry"
	"github.com/soocke/smile-tracker-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Session     SessionStats
	ConfigPanel ConfigPanel
	Preview     Preview

	// Widgets
	StateLabel   *TLabelWidget
	ResultLabel  *LabelWidget
	SourceSelect *TComboboxWidget
	previewRow   int

	// OnConfigApplied runs after the config panel saved new values.
	OnConfigApplied func(*config.Config)
}

// UI abstracts the subset of view operations needed by presenters, enabling decoupling
// from the concrete RootView implementation.
type UI interface {
	SetStateLabel(text string)
	SetResultLabel(text string)
	SetConfigEditable(enabled bool)
	UpdatePreview(img image.Image)
	UpdateFace(img image.Image)
	Surface() geometry.DisplaySurface
	SetSession(session, total time.Duration)
	SetSmiles(session, total int)
	PreviewReset()
	ConfigEditable(bool)
}

var _ UI = (*RootView)(nil)

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout. sources lists the selectable frame sources.
// Handlers are invoked on user actions.
func (rv *RootView) Build(sources []string, onToggleTracking func(), onSelectRegion func(), onExit func(), onSourceChanged func(source string)) {
	if rv == nil {
		return
	}
	// Row 0: session stats, state label, buttons frame
	rv.Session = NewSessionStats(nil, 0, 0)
	rv.StateLabel = TLabel(Txt("State: <none>"), Style(theme.StyleStateLabel))
	Grid(rv.StateLabel, Row(0), Column(3), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	rv.ResultLabel = Label(Txt("Last check: -"), Borderwidth(1), Relief("ridge"), Anchor("w"))
	Grid(rv.ResultLabel, Row(1), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(4), Rowspan(2), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	trackBtn := TButton(Txt("Toggle Tracking"), Style(theme.StylePrimaryButton), Command(onToggleTracking))
	Grid(trackBtn, In(btnFrame), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	if len(sources) == 0 {
		sources = []string{config.SourceCamera}
	}
	rv.SourceSelect = TCombobox(Values(sources), Width(12))
	Grid(rv.SourceSelect, In(btnFrame), Row(1), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	current := 0
	for i, s := range sources {
		if rv.cfg != nil && s == rv.cfg.Source {
			current = i
		}
	}
	rv.SourceSelect.Current(current)
	Bind(rv.SourceSelect, "<<ComboboxSelected>>", Command(func() {
		idxStr := rv.SourceSelect.Current(nil)
		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx < 0 || idx >= len(sources) {
			if rv.logger != nil {
				rv.logger.Error("source selection parse error", "error", err, "value", idxStr)
			}
			return
		}
		onSourceChanged(sources[idx])
	}))
	regionBtn := Button(Txt("Screen Region"), Command(onSelectRegion))
	Grid(regionBtn, In(btnFrame), Row(2), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	exitBtn := TButton(Txt("Exit"), Style(theme.StyleDangerButton), Command(onExit))
	Grid(exitBtn, In(btnFrame), Row(3), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	// Config panel rows
	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger)
	rv.previewRow = rv.ConfigPanel.Build(2)

	w, h := 640, 360
	if rv.cfg != nil {
		w, h = rv.cfg.PreviewW, rv.cfg.PreviewH
	}
	rv.Preview = NewPreview(rv.previewRow, w, h)
	rv.ConfigPanel.OnApply(func(c *config.Config) {
		rv.Preview.SetSurface(c.PreviewW, c.PreviewH)
		rv.Preview.Reset()
		if rv.OnConfigApplied != nil {
			rv.OnConfigApplied(c)
		}
	})
}

// SetStateLabel updates the state label text.
func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(text))
	}
}

func (rv *RootView) SetResultLabel(text string) {
	if rv != nil && rv.ResultLabel != nil {
		rv.ResultLabel.Configure(Txt(text))
	}
}

// SetConfigEditable toggles config panel editability.
func (rv *RootView) SetConfigEditable(enabled bool) {
	if rv != nil && rv.ConfigPanel != nil {
		rv.ConfigPanel.SetEditable(enabled)
	}
}

func (rv *RootView) UpdatePreview(img image.Image) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.UpdatePreview(img)
	}
}

func (rv *RootView) UpdateFace(img image.Image) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.UpdateFace(img)
	}
}

// Surface reports the preview surface size used for overlay layout.
func (rv *RootView) Surface() geometry.DisplaySurface {
	if rv == nil || rv.Preview == nil {
		return geometry.DisplaySurface{}
	}
	return rv.Preview.Surface()
}

// SetSession updates both session and total tracking durations.
func (rv *RootView) SetSession(session, total time.Duration) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetSession(session)
	rv.Session.SetTotal(total)
}

func (rv *RootView) SetSmiles(session, total int) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetSmiles(session, total)
}

// --- CapturePresenter view contract methods ---
// PreviewReset clears the preview and face crop.
func (rv *RootView) PreviewReset() {
	if rv != nil && rv.Preview != nil {
		rv.Preview.Reset()
	}
}

// ConfigEditable redirects to SetConfigEditable to satisfy CaptureView interface.
func (rv *RootView) ConfigEditable(b bool) { rv.SetConfigEditable(b) }
