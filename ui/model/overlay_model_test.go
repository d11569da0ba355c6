package model

import (
	"image"
	"testing"
	"time"

	"github.com/soocke/smile-tracker-go/domain/geometry"
)

func TestOverlayModel_IgnoresStaleLayout(t *testing.T) {
	m := NewOverlayModel()
	newer := []geometry.Placement{{Index: 0, Primary: true}}
	if !m.SetLayout(5, newer) {
		t.Fatalf("expected first layout accepted")
	}
	if m.SetLayout(3, nil) {
		t.Fatalf("expected older layout rejected")
	}
	if p, ok := m.Primary(); !ok || p.Index != 0 {
		t.Fatalf("unexpected primary %+v ok=%v", p, ok)
	}
}

func TestOverlayModel_SetCheckKeepsLastSmile(t *testing.T) {
	m := NewOverlayModel()
	face := image.NewRGBA(image.Rect(0, 0, 2, 2))
	at := time.Unix(100, 0)
	m.SetCheck(true, at, face)
	m.SetCheck(false, at.Add(time.Second), nil)
	if m.Smiling() || !m.CheckedAt().Equal(at.Add(time.Second)) {
		t.Fatalf("unexpected check state smiling=%v at=%v", m.Smiling(), m.CheckedAt())
	}
	if m.LastSmile() != face {
		t.Fatalf("expected last smile kept after a negative check")
	}
	m.Clear()
	if m.LastSmile() != nil || len(m.Placements()) != 0 {
		t.Fatalf("clear left state behind")
	}
}
