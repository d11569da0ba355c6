package model

import (
	"image"
	"time"

	"github.com/soocke/smile-tracker-go/domain/geometry"
)

// OverlayModel holds what the preview currently shows. Updates occur on the
// UI thread tick; no synchronization needed.
type OverlayModel struct {
	placements []geometry.Placement
	sequence   uint64
	smiling    bool
	checkedAt  time.Time
	lastSmile  image.Image
}

func NewOverlayModel() *OverlayModel { return &OverlayModel{} }

// SetLayout stores the placements for the detection event seq. Older events
// are ignored.
func (m *OverlayModel) SetLayout(seq uint64, p []geometry.Placement) bool {
	if m == nil || (seq != 0 && seq < m.sequence) {
		return false
	}
	m.sequence = seq
	m.placements = p
	return true
}

func (m *OverlayModel) Placements() []geometry.Placement {
	if m == nil {
		return nil
	}
	return m.placements
}

// Primary returns the placement of the largest face, if any.
func (m *OverlayModel) Primary() (geometry.Placement, bool) {
	if m == nil || len(m.placements) == 0 {
		return geometry.Placement{}, false
	}
	return m.placements[0], m.placements[0].Primary
}

// SetCheck records the outcome of a completed smile check. face is the crop
// of the checked face and replaces the last smile image when smiling.
func (m *OverlayModel) SetCheck(smiling bool, at time.Time, face image.Image) {
	if m == nil {
		return
	}
	m.smiling = smiling
	m.checkedAt = at
	if smiling && face != nil {
		m.lastSmile = face
	}
}

func (m *OverlayModel) Smiling() bool {
	if m == nil {
		return false
	}
	return m.smiling
}

func (m *OverlayModel) CheckedAt() time.Time {
	if m == nil {
		return time.Time{}
	}
	return m.checkedAt
}

func (m *OverlayModel) LastSmile() image.Image {
	if m == nil {
		return nil
	}
	return m.lastSmile
}

// Clear drops all state, for example when tracking stops.
func (m *OverlayModel) Clear() {
	if m == nil {
		return
	}
	*m = OverlayModel{}
}
