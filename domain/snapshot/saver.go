// Package snapshot writes crops of smiling faces to disk.
package snapshot

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/disintegration/imaging"

	"github.com/soocke/smile-tracker-go/domain/geometry"
)

// Saver stores face crops as JPEG files under a directory. A Saver with an
// empty directory is disabled and SaveFace is a no-op.
type Saver struct {
	dir    atomic.Pointer[string]
	logger *slog.Logger
	count  atomic.Uint64
}

func NewSaver(dir string, logger *slog.Logger) *Saver {
	s := &Saver{logger: logger}
	s.SetDir(dir)
	return s
}

// SetDir changes the target directory; empty disables saving.
func (s *Saver) SetDir(dir string) { s.dir.Store(&dir) }

func (s *Saver) Dir() string {
	if s == nil {
		return ""
	}
	if d := s.dir.Load(); d != nil {
		return *d
	}
	return ""
}

func (s *Saver) Enabled() bool { return s.Dir() != "" }

// Crop returns the part of frame covered by rect, clamped to the frame
// bounds. It returns nil when nothing of rect lies inside the frame.
func Crop(frame image.Image, rect geometry.Rect) *image.NRGBA {
	if frame == nil || rect.Empty() {
		return nil
	}
	r := rect.Image().Add(frame.Bounds().Min).Intersect(frame.Bounds())
	if r.Empty() {
		return nil
	}
	return imaging.Crop(frame, r)
}

// SaveFace writes the crop of rect from frame as smile-<session>-<n>.jpg and
// returns the written path.
func (s *Saver) SaveFace(session string, frame image.Image, rect geometry.Rect) (string, error) {
	dir := s.Dir()
	if dir == "" {
		return "", nil
	}
	crop := Crop(frame, rect)
	if crop == nil {
		return "", fmt.Errorf("snapshot: face %+v outside frame", rect)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("snapshot: create dir: %w", err)
	}
	if session == "" {
		session = "nosession"
	}
	n := s.count.Add(1)
	path := filepath.Join(dir, fmt.Sprintf("smile-%s-%d.jpg", session, n))
	if err := imaging.Save(crop, path, imaging.JPEGQuality(90)); err != nil {
		return "", fmt.Errorf("snapshot: save: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("smile snapshot saved", "path", path)
	}
	return path, nil
}
