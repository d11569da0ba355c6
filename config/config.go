package config

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/soocke/smile-tracker-go/domain/geometry"
)

// Overlay styles accepted by Config.OverlayStyle.
const (
	OverlayIcon = "icon"
	OverlayHat  = "hat"
)

// Source names accepted by Config.Source.
const (
	SourceCamera = "camera"
	SourceScreen = "screen"
)

// Config holds runtime configuration for capture, detection and the smile check.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug"`

	// Frame source
	Source       string `json:"source"`
	CameraDevice int    `json:"camera_device"`
	// Screen region used as the stream when Source is "screen" (zero size = full screen)
	SelectionX int `json:"selection_x"`
	SelectionY int `json:"selection_y"`
	SelectionW int `json:"selection_w"`
	SelectionH int `json:"selection_h"`

	// Preview
	Orientation  string `json:"orientation"`
	Mirror       bool   `json:"mirror"`
	PreviewW     int    `json:"preview_w"`
	PreviewH     int    `json:"preview_h"`
	// Decoration drawn on the largest face: "icon" or "hat"
	OverlayStyle string `json:"overlay_style"`

	// Face detection
	DetectIntervalMs int    `json:"detect_interval_ms"`
	CascadePath      string `json:"cascade_path"`
	MinFacePx        int    `json:"min_face_px"`

	// Smile check
	CheckSmile          bool   `json:"check_smile"`
	FaceAPIEndpoint     string `json:"face_api_endpoint"`
	FaceAPIKey          string `json:"face_api_key"`
	CheckFrameHeight    int    `json:"check_frame_height"`
	JPEGQuality         int    `json:"jpeg_quality"`
	CheckTimeoutSeconds int    `json:"check_timeout_seconds"`

	// Snapshot of smiling faces; empty disables saving
	SnapshotDir string `json:"snapshot_dir"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:               false,
		Source:              SourceCamera,
		CameraDevice:        0,
		Orientation:         "landscape",
		Mirror:              true,
		PreviewW:            640,
		PreviewH:            360,
		OverlayStyle:        OverlayIcon,
		DetectIntervalMs:    33,
		CascadePath:         "haarcascade_frontalface_default.xml",
		MinFacePx:           40,
		CheckSmile:          true,
		CheckFrameHeight:    480,
		JPEGQuality:         85,
		CheckTimeoutSeconds: 10,
		SnapshotDir:         "",
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	c.Source = strings.ToLower(strings.TrimSpace(c.Source))
	if c.Source != SourceCamera && c.Source != SourceScreen {
		c.Source = SourceCamera
	}
	if c.CameraDevice < 0 {
		c.CameraDevice = 0
	}
	if c.SelectionW < 0 || c.SelectionH < 0 {
		c.SelectionW, c.SelectionH = 0, 0
	}
	if o, ok := geometry.ParseOrientation(c.Orientation); ok {
		c.Orientation = o.String()
	} else {
		c.Orientation = geometry.Landscape.String()
	}
	if c.PreviewW < 50 {
		c.PreviewW = 640
	}
	if c.PreviewH < 50 {
		c.PreviewH = 360
	}
	if c.OverlayStyle != OverlayIcon && c.OverlayStyle != OverlayHat {
		c.OverlayStyle = OverlayIcon
	}
	if c.DetectIntervalMs <= 0 {
		c.DetectIntervalMs = 33
	}
	if c.MinFacePx < 1 {
		c.MinFacePx = 40
	}
	if c.CheckFrameHeight <= 0 {
		c.CheckFrameHeight = 480
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		c.JPEGQuality = 85
	}
	if c.CheckTimeoutSeconds < 0 {
		c.CheckTimeoutSeconds = 10
	}
	return nil
}

// OrientationValue returns the parsed orientation.
func (c *Config) OrientationValue() geometry.Orientation {
	o, _ := geometry.ParseOrientation(c.Orientation)
	return o
}

// DetectInterval returns the detection period as a duration.
func (c *Config) DetectInterval() time.Duration {
	return time.Duration(c.DetectIntervalMs) * time.Millisecond
}

// CheckTimeout returns the per-check deadline; zero means none.
func (c *Config) CheckTimeout() time.Duration {
	return time.Duration(c.CheckTimeoutSeconds) * time.Second
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
