package model

import (
	"time"
)

// SessionModel tracks the current tracking session duration, the accumulated
// active time and smile counts. Presenters poll Values() and update views.
// The zero value is ready to use.
type SessionModel struct {
	active       bool
	started      time.Time
	lastDuration time.Duration
	accumulated  time.Duration
	smiles       int
	totalSmiles  int
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick updates the model using the current tracking state and timestamp.
func (m *SessionModel) OnTick(tracking bool, now time.Time) {
	if m == nil {
		return
	}
	switch {
	case tracking && !m.active:
		m.active = true
		m.started = now
		m.lastDuration = 0
		m.smiles = 0
	case tracking:
		m.lastDuration = now.Sub(m.started)
	case m.active:
		m.lastDuration = now.Sub(m.started)
		m.accumulated += m.lastDuration
		m.active = false
	}
}

// RecordSmile counts one smiling check in the active session.
func (m *SessionModel) RecordSmile() {
	if m == nil || !m.active {
		return
	}
	m.smiles++
	m.totalSmiles++
}

// Values returns the current session duration and the total accumulated duration.
// The total includes the ongoing session when active.
func (m *SessionModel) Values() (session, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	session = m.lastDuration
	total = m.accumulated
	if m.active {
		total += session
	}
	return
}

// Smiles returns smiles counted in the current (or last) session and overall.
func (m *SessionModel) Smiles() (session, total int) {
	if m == nil {
		return 0, 0
	}
	return m.smiles, m.totalSmiles
}
