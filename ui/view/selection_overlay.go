package view

import (
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/soocke/smile-tracker-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

// SelectionOverlay is the see-through frame the user drags and resizes over
// the desktop to choose what the screen source captures.
type SelectionOverlay interface {
	OpenOrFocus()
	Clear()
	Region() image.Rectangle
}

const (
	keyColor    = "#008080" // made transparent, the desktop shows through
	borderColor = "#FFFFFF"
)

// fallback size of the first frame when no region was saved yet
var defaultFrame = image.Rect(0, 0, 640, 480)

type selectionOverlay struct {
	logger   *slog.Logger
	cfg      *config.Config
	cfgPath  string
	region   atomic.Pointer[image.Rectangle]
	win      *ToplevelWidget
	onChange func(image.Rectangle)
}

// NewSelectionOverlay restores the region saved in cfg. onChange receives
// every confirmed region, or an empty rectangle when the region is cleared
// and the whole screen should be captured again.
func NewSelectionOverlay(cfg *config.Config, cfgPath string, logger *slog.Logger, onChange func(image.Rectangle)) SelectionOverlay {
	v := &selectionOverlay{logger: logger, cfg: cfg, cfgPath: cfgPath, onChange: onChange}
	r := image.Rectangle{}
	if cfg != nil && cfg.SelectionW > 0 && cfg.SelectionH > 0 {
		r = image.Rect(cfg.SelectionX, cfg.SelectionY, cfg.SelectionX+cfg.SelectionW, cfg.SelectionY+cfg.SelectionH)
	}
	v.region.Store(&r)
	return v
}

// Region returns the confirmed capture region; empty means full screen.
func (v *selectionOverlay) Region() image.Rectangle { return *v.region.Load() }

// OpenOrFocus shows the frame over the current region, or raises it when it
// is already open.
func (v *selectionOverlay) OpenOrFocus() {
	if v.win != nil {
		WmAttributes(v.win.Window, "-topmost", 1)
		return
	}
	start := v.Region()
	if start.Empty() {
		start = defaultFrame.Add(image.Pt(100, 100))
	}
	v.win = App.Toplevel(Borderwidth(2), Background(keyColor))
	v.win.WmTitle("Screen Region")
	WmGeometry(v.win.Window, geometryOf(start))
	WmAttributes(v.win.Window, "-topmost", 1)
	WmAttributes(v.win.Window, "-toolwindow", true)
	WmAttributes(v.win.Window, "-transparentcolor", keyColor)
	v.layout()
	Bind(v.win, "<Return>", Command(v.confirm))
	Bind(v.win, "<Escape>", Command(v.destroy))
}

// layout draws thin side borders around a transparent centre and a button
// row underneath.
func (v *selectionOverlay) layout() {
	w := v.win
	GridRowConfigure(w.Window, 0, Weight(1))
	GridColumnConfigure(w.Window, 1, Weight(1))
	Grid(w.Frame(Width(4), Background(borderColor)), Row(0), Column(0), Sticky("ns"))
	Grid(w.Frame(Background(keyColor)), Row(0), Column(1), Sticky("nsew"))
	Grid(w.Frame(Width(4), Background(borderColor)), Row(0), Column(2), Sticky("ns"))
	buttons := w.Frame()
	Grid(buttons, Row(1), Column(0), Columnspan(3), Sticky("we"))
	for i, b := range []struct {
		label string
		fn    func()
	}{
		{"Capture This [Enter]", v.confirm},
		{"Cancel [Esc]", v.destroy},
		{"Full Screen", v.Clear},
	} {
		Grid(w.Button(Txt(b.label), Command(b.fn)), In(buttons), Row(0), Column(i), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	}
}

// Clear drops the region so the screen source captures the whole screen.
func (v *selectionOverlay) Clear() {
	v.store(image.Rectangle{})
	v.destroy()
}

func (v *selectionOverlay) confirm() {
	if v.win == nil {
		return
	}
	r, ok := regionFromGeometry(WmGeometry(v.win.Window))
	if !ok {
		if v.logger != nil {
			v.logger.Warn("screen region: unreadable window geometry")
		}
		return
	}
	v.store(r)
	v.destroy()
}

func (v *selectionOverlay) store(r image.Rectangle) {
	v.region.Store(&r)
	if v.cfg != nil {
		v.cfg.SelectionX, v.cfg.SelectionY = r.Min.X, r.Min.Y
		v.cfg.SelectionW, v.cfg.SelectionH = r.Dx(), r.Dy()
		if err := v.cfg.Save(v.cfgPath); err != nil && v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
	}
	if v.onChange != nil {
		v.onChange(r)
	}
}

func (v *selectionOverlay) destroy() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
	}
}

func geometryOf(r image.Rectangle) string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Dx(), r.Dy(), r.Min.X, r.Min.Y)
}

// regionFromGeometry reads a Tk "WxH+X+Y" geometry string.
func regionFromGeometry(g string) (image.Rectangle, bool) {
	var w, h, x, y int
	if n, err := fmt.Sscanf(strings.TrimSpace(g), "%dx%d+%d+%d", &w, &h, &x, &y); err != nil || n != 4 {
		return image.Rectangle{}, false
	}
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}
