package theme

// Centralized theming and styling initialization for the smile tracker UI.
// Provides palette constants and InitStyles to activate a base theme and
// configure semantic widget styles.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Palette defines core semantic colors used across widgets.
const (
	ColorBg        = "#fbf8f3" // app background
	ColorSurface   = "#ffffff" // panels, cards
	ColorBorder    = "#e2d9cc"
	ColorPrimary   = "#f59e0b" // buttons, accents
	ColorPrimaryHi = "#d97706"
	ColorDanger    = "#dc2626"
	ColorDangerHi  = "#b91c1c"
	ColorAccent    = "#10b981"
	ColorText      = "#1f2937"
	ColorTextMuted = "#6b7280"
)

// PaletteSnapshot represents resolved colors for the active mode.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Border    string
	Primary   string
	Danger    string
	Accent    string
	Text      string
	TextMuted string
}

var darkPalette = PaletteSnapshot{
	AppBg:     "#111827",
	Surface:   "#1f2937",
	Border:    "#374151",
	Primary:   "#fbbf24",
	Danger:    "#ef4444",
	Accent:    "#34d399",
	Text:      "#f9fafb",
	TextMuted: "#9ca3af",
}

var lightPalette = PaletteSnapshot{
	AppBg:     ColorBg,
	Surface:   ColorSurface,
	Border:    ColorBorder,
	Primary:   ColorPrimary,
	Danger:    ColorDanger,
	Accent:    ColorAccent,
	Text:      ColorText,
	TextMuted: ColorTextMuted,
}

// CurrentPalette returns colors for the current dark/light mode.
func CurrentPalette() PaletteSnapshot {
	if darkMode {
		return darkPalette
	}
	return lightPalette
}

// style names used with Style("primary.TButton") etc.
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleStateLabel    = "state.TLabel"
)

// internal flag for current mode
var darkMode bool

// InitStyles (re)applies styles for the current darkMode value.
func InitStyles() { applyStyles(CurrentPalette()) }

// SetDark toggles dark mode and reapplies styles. Returns new mode value.
func SetDark(dark bool) bool {
	darkMode = dark
	applyStyles(CurrentPalette())
	return darkMode
}

// IsDark reports current mode.
func IsDark() bool { return darkMode }

func applyStyles(p PaletteSnapshot) {
	_ = ActivateTheme("azure light") // baseline metrics
	App.Configure(Background(p.AppBg))

	StyleConfigure(StylePrimaryButton,
		Background(p.Primary),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleDangerButton,
		Background(p.Danger),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleStateLabel,
		Foreground(p.Text),
		Background(p.Accent),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("groove"),
	)
}
