package presenter

import (
	"testing"
)

type mockModel struct{ enabled bool }

func (m *mockModel) Enabled() bool { return m.enabled }
func (m *mockModel) SetEnabled(b bool) bool {
	changed := m.enabled != b
	m.enabled = b
	return changed
}

type mockService struct{ started, stopped int }

func (s *mockService) Start() { s.started++ }
func (s *mockService) Stop()  { s.stopped++ }

type mockSession struct{ started, stopped int }

func (s *mockSession) Start() { s.started++ }
func (s *mockSession) Stop()  { s.stopped++ }

type mockOverlay struct{ resets int }

func (o *mockOverlay) Reset() { o.resets++ }

type mockView struct {
	reset, editableCalls int
	lastEditable         bool
}

func (v *mockView) PreviewReset()         { v.reset++ }
func (v *mockView) ConfigEditable(b bool) { v.editableCalls++; v.lastEditable = b }

func TestCapturePresenter_EnableDisable_Idempotent(t *testing.T) {
	m := &mockModel{}
	svc := &mockService{}
	sess := &mockSession{}
	ov := &mockOverlay{}
	view := &mockView{}
	p := NewCapturePresenter(m, svc, sess, ov, view)

	p.Enable()
	if !m.Enabled() || svc.started != 1 || sess.started != 1 || view.lastEditable || view.editableCalls != 1 {
		t.Fatalf("enable failed: enabled=%v started=%d session=%d editableCalls=%d lastEditable=%v", m.Enabled(), svc.started, sess.started, view.editableCalls, view.lastEditable)
	}
	p.Enable()
	if svc.started != 1 || sess.started != 1 {
		t.Fatalf("enable not idempotent: started=%d session=%d", svc.started, sess.started)
	}

	p.Disable()
	if m.Enabled() || svc.stopped != 1 || sess.stopped != 1 || ov.resets != 1 || view.reset != 1 || !view.lastEditable || view.editableCalls != 2 {
		t.Fatalf("disable failed: enabled=%v stopped=%d session=%d resets=%d reset=%d editableCalls=%d lastEditable=%v", m.Enabled(), svc.stopped, sess.stopped, ov.resets, view.reset, view.editableCalls, view.lastEditable)
	}
	p.Disable()
	if svc.stopped != 1 || sess.stopped != 1 || view.reset != 1 {
		t.Fatalf("disable not idempotent: stopped=%d session=%d reset=%d", svc.stopped, sess.stopped, view.reset)
	}
}

func TestCapturePresenter_Toggle(t *testing.T) {
	m := &mockModel{}
	svc := &mockService{}
	sess := &mockSession{}
	view := &mockView{}
	p := NewCapturePresenter(m, svc, sess, nil, view)
	p.Toggle()
	if !m.Enabled() || svc.started != 1 || sess.started != 1 {
		t.Fatalf("toggle enable failed")
	}
	p.Toggle()
	if m.Enabled() || svc.stopped != 1 || sess.stopped != 1 || view.reset != 1 {
		t.Fatalf("toggle disable failed")
	}
}
