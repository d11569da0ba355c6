package view

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows session and total tracking durations plus smile counts.
type SessionStats interface {
	SetSession(d time.Duration)
	SetTotal(d time.Duration)
	SetSmiles(session, total int)
}

type sessionStats struct {
	sessionLbl *LabelWidget
	totalLbl   *LabelWidget
	smilesLbl  *LabelWidget
}

// NewSessionStats creates the labels at (row, startCol..startCol+2).
// If parent is nil, labels are positioned relative to the App root.
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{sessionLbl: Label(Width(14)), totalLbl: Label(Width(14)), smilesLbl: Label(Width(16))}
	for i, l := range []*LabelWidget{s.sessionLbl, s.totalLbl, s.smilesLbl} {
		if parent != nil {
			Grid(l, In(parent), Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		} else {
			Grid(l, Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		}
	}
	s.sessionLbl.Configure(Txt("Session: 00:00"))
	s.totalLbl.Configure(Txt("Total: 00:00"))
	s.smilesLbl.Configure(Txt("Smiles: 0 / 0"))
	return s
}

func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// SetSession updates the session duration display.
func (s *sessionStats) SetSession(d time.Duration) {
	if s == nil || s.sessionLbl == nil {
		return
	}
	s.sessionLbl.Configure(Txt("Session: " + clock(d)))
}

// SetTotal updates the total duration display.
func (s *sessionStats) SetTotal(d time.Duration) {
	if s == nil || s.totalLbl == nil {
		return
	}
	s.totalLbl.Configure(Txt("Total: " + clock(d)))
}

func (s *sessionStats) SetSmiles(session, total int) {
	if s == nil || s.smilesLbl == nil {
		return
	}
	s.smilesLbl.Configure(Txt(fmt.Sprintf("Smiles: %d / %d", session, total)))
}
