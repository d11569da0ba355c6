package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/smile-tracker-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel encapsulates the configuration form widgets and apply logic.
// It owns its widgets and writes back into *config.Config on ApplyChanges.
type ConfigPanel interface {
	Build(startRow int) (endRow int) // constructs widgets starting at startRow, returns next free row
	SetEditable(enabled bool)
	ApplyChanges() // parses widget text into underlying config and persists
	OnApply(fn func(*config.Config))
}

type configPanel struct {
	cfg      *config.Config
	cfgPath  string
	logger   *slog.Logger
	applyBtn *ButtonWidget
	widgets  map[string]*TextWidget // keyed by internal field id
	onApply  func(*config.Config)
}

// NewConfigPanel creates the view bound to cfg.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger) ConfigPanel {
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, widgets: make(map[string]*TextWidget)}
}

func (v *configPanel) OnApply(fn func(*config.Config)) { v.onApply = fn }

func (v *configPanel) Build(startRow int) (row int) {
	c := v.cfg
	row = startRow
	makeRow := func(id, label, value string) {
		lbl := Label(Txt(label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(32))
		Grid(w, Row(row), Column(1), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		row++
	}
	makeRow("cameraDevice", "Camera Device", fmt.Sprintf("%d", c.CameraDevice))
	makeRow("orientation", "Orientation (landscape/portrait/...)", c.Orientation)
	makeRow("mirror", "Mirror (true/false)", fmt.Sprintf("%t", c.Mirror))
	makeRow("overlayStyle", "Overlay (icon/hat)", c.OverlayStyle)
	makeRow("previewW", "Preview Width", fmt.Sprintf("%d", c.PreviewW))
	makeRow("previewH", "Preview Height", fmt.Sprintf("%d", c.PreviewH))
	makeRow("detectIntervalMs", "Detect Interval ms", fmt.Sprintf("%d", c.DetectIntervalMs))
	makeRow("minFacePx", "Min Face Px", fmt.Sprintf("%d", c.MinFacePx))
	makeRow("checkSmile", "Check Smile (true/false)", fmt.Sprintf("%t", c.CheckSmile))
	makeRow("faceApiEndpoint", "Face API Endpoint", c.FaceAPIEndpoint)
	makeRow("faceApiKey", "Face API Key", c.FaceAPIKey)
	makeRow("checkFrameHeight", "Check Frame Height", fmt.Sprintf("%d", c.CheckFrameHeight))
	makeRow("jpegQuality", "JPEG Quality (1-100)", fmt.Sprintf("%d", c.JPEGQuality))
	makeRow("checkTimeoutSeconds", "Check Timeout Seconds", fmt.Sprintf("%d", c.CheckTimeoutSeconds))
	makeRow("snapshotDir", "Snapshot Dir (empty = off)", c.SnapshotDir)
	v.applyBtn = Button(Txt("Apply Changes"), Command(func() { v.ApplyChanges() }))
	Grid(v.applyBtn, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *configPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.widgets {
		if w != nil {
			w.Configure(State(state))
		}
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

func (v *configPanel) text(w *TextWidget) string {
	if w == nil {
		return ""
	}
	parts := w.Get("1.0", END)
	return strings.TrimSpace(strings.Join(parts, ""))
}

func (v *configPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	cfg := *v.cfg // copy
	fields := make(map[string]string, len(v.widgets))
	for id, w := range v.widgets {
		fields[id] = v.text(w)
	}
	applyFields(&cfg, fields)
	if verr := cfg.Validate(); verr != nil {
		return
	}
	*v.cfg = cfg
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
	} else if v.logger != nil {
		v.logger.Info("config saved", "path", v.cfgPath)
	}
	if v.onApply != nil {
		v.onApply(v.cfg)
	}
}

// applyFields parses form values into cfg. Unparsable numbers and booleans
// keep their previous value; free text fields are taken as typed.
func applyFields(cfg *config.Config, fields map[string]string) {
	assignInt := func(id string, dst *int) {
		if s, ok := fields[id]; ok {
			if i, ok := parseIntField(s); ok {
				*dst = i
			}
		}
	}
	assignBool := func(id string, dst *bool) {
		if s, ok := fields[id]; ok {
			if b, ok := parseBoolLoose(s); ok {
				*dst = b
			}
		}
	}
	assignString := func(id string, dst *string, allowEmpty bool) {
		if s, ok := fields[id]; ok && (allowEmpty || s != "") {
			*dst = s
		}
	}
	assignInt("cameraDevice", &cfg.CameraDevice)
	assignString("orientation", &cfg.Orientation, false)
	assignBool("mirror", &cfg.Mirror)
	assignString("overlayStyle", &cfg.OverlayStyle, false)
	assignInt("previewW", &cfg.PreviewW)
	assignInt("previewH", &cfg.PreviewH)
	assignInt("detectIntervalMs", &cfg.DetectIntervalMs)
	assignInt("minFacePx", &cfg.MinFacePx)
	assignBool("checkSmile", &cfg.CheckSmile)
	assignString("faceApiEndpoint", &cfg.FaceAPIEndpoint, true)
	assignString("faceApiKey", &cfg.FaceAPIKey, true)
	assignInt("checkFrameHeight", &cfg.CheckFrameHeight)
	assignInt("jpegQuality", &cfg.JPEGQuality)
	assignInt("checkTimeoutSeconds", &cfg.CheckTimeoutSeconds)
	assignString("snapshotDir", &cfg.SnapshotDir, true)
}

// parsing helpers (unexported)
func parseIntField(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}

func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	default:
		return false, false
	}
}
