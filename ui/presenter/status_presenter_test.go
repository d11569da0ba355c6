package presenter

import (
	"testing"
	"time"

	"github.com/soocke/smile-tracker-go/domain/tracking"
	"github.com/soocke/smile-tracker-go/ui/model"
)

type fakeStatusSource struct {
	state tracking.State
	stats tracking.Stats
}

func (s *fakeStatusSource) Current() tracking.State { return s.state }
func (s *fakeStatusSource) Stats() tracking.Stats   { return s.stats }

type fakeStatusView struct {
	states, results []string
}

func (v *fakeStatusView) SetStateLabel(s string)  { v.states = append(v.states, s) }
func (v *fakeStatusView) SetResultLabel(s string) { v.results = append(v.results, s) }

func TestStatusPresenter_ReflectsLatestQueuedState(t *testing.T) {
	src := &fakeStatusSource{state: tracking.StateHalt}
	view := &fakeStatusView{}
	p := NewStatusPresenter(src, view)
	p.Tick(time.Now())
	if len(view.states) != 1 || view.states[0] != "State: halt" {
		t.Fatalf("unexpected initial label %v", view.states)
	}
	p.OnState(tracking.StateHalt, tracking.StateTracking)
	p.OnState(tracking.StateTracking, tracking.StateChecking)
	p.Tick(time.Now())
	if got := view.states[len(view.states)-1]; got != "State: checking" {
		t.Fatalf("expected checking label, got=%q", got)
	}
	// with the queue drained the label follows the source
	src.state = tracking.StateTracking
	p.Tick(time.Now())
	if got := view.states[len(view.states)-1]; got != "State: tracking" {
		t.Fatalf("expected tracking label from source, got=%q", got)
	}
}

func TestStatusPresenter_ResultLabel(t *testing.T) {
	now := time.Unix(100, 0)
	src := &fakeStatusSource{state: tracking.StateTracking, stats: tracking.Stats{LastResult: "smiling", LastSmile: now.Add(-3 * time.Second)}}
	view := &fakeStatusView{}
	p := NewStatusPresenter(src, view)
	p.Tick(now)
	if len(view.results) != 1 || view.results[0] != "Last check: smiling (last smile 3s ago)" {
		t.Fatalf("unexpected result label %v", view.results)
	}
	p.Tick(now)
	if len(view.results) != 1 {
		t.Fatalf("unchanged result must not be re-sent, got=%v", view.results)
	}
}

type fakeSessionView struct {
	session, total time.Duration
	smiles, all    int
}

func (v *fakeSessionView) SetSession(s, t time.Duration) { v.session, v.total = s, t }
func (v *fakeSessionView) SetSmiles(s, t int)            { v.smiles, v.all = s, t }

type enabledFlag bool

func (e enabledFlag) Enabled() bool { return bool(e) }

func TestSessionPresenter_Tick(t *testing.T) {
	m := model.NewSessionModel()
	view := &fakeSessionView{}
	p := NewSessionPresenter(m, enabledFlag(true), view)
	base := time.Unix(0, 0)
	p.Tick(base)
	m.RecordSmile()
	p.Tick(base.Add(2 * time.Second))
	if view.session != 2*time.Second || view.total != 2*time.Second || view.smiles != 1 || view.all != 1 {
		t.Fatalf("unexpected view values %+v", view)
	}
}
