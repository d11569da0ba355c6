package model

import (
	"sync/atomic"
)

// CaptureModel tracks whether tracking is enabled and which frame source is
// selected. The zero value is disabled and usable. UI callbacks and presenter
// ticks may race, so both fields are atomic.
type CaptureModel struct {
	enabled atomic.Bool
	source  atomic.Pointer[string]
}

// Enabled reports whether tracking is currently enabled.
func (m *CaptureModel) Enabled() bool {
	if m == nil {
		return false
	}
	return m.enabled.Load()
}

// SetEnabled stores the enabled flag and reports whether it changed.
func (m *CaptureModel) SetEnabled(b bool) bool {
	if m == nil {
		return false
	}
	return m.enabled.CompareAndSwap(!b, b)
}

func (m *CaptureModel) Source() string {
	if m == nil {
		return ""
	}
	if s := m.source.Load(); s != nil {
		return *s
	}
	return ""
}

func (m *CaptureModel) SetSource(s string) {
	if m == nil {
		return
	}
	m.source.Store(&s)
}
