package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soocke/smile-tracker-go/domain/geometry"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CheckFrameHeight != 480 || cfg.DetectInterval() != 33*time.Millisecond {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	cfg := DefaultConfig()
	cfg.Source = SourceScreen
	cfg.Orientation = "portrait"
	cfg.FaceAPIEndpoint = "https://example.invalid/face/v1.0"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Source != SourceScreen || got.OrientationValue() != geometry.Portrait || got.FaceAPIEndpoint != cfg.FaceAPIEndpoint {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestLoad_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if cfg == nil || cfg.Source != SourceCamera {
		t.Fatalf("expected defaults alongside error, got=%+v", cfg)
	}
}

func TestValidate_Clamps(t *testing.T) {
	cfg := &Config{Source: "VHS", Orientation: "diagonal", JPEGQuality: 500, CheckTimeoutSeconds: -1, SelectionW: -5}
	_ = cfg.Validate()
	if cfg.Source != SourceCamera || cfg.Orientation != "landscape" || cfg.JPEGQuality != 85 || cfg.CheckTimeoutSeconds != 10 || cfg.SelectionW != 0 {
		t.Fatalf("validate did not clamp: %+v", cfg)
	}
	if cfg.PreviewW != 640 || cfg.PreviewH != 360 || cfg.DetectIntervalMs != 33 {
		t.Fatalf("preview/detect defaults missing: %+v", cfg)
	}
}
