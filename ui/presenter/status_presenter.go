package presenter

import (
	"fmt"
	"time"

	"github.com/soocke/smile-tracker-go/domain/tracking"
)

// StatusSource provides the session state and counters.
type StatusSource interface {
	Current() tracking.State
	Stats() tracking.Stats
}

// StatusView sets the state and result labels in the view.
type StatusView interface {
	SetStateLabel(string)
	SetResultLabel(string)
}

// StatusPresenter receives session transitions from the listener goroutine
// and reflects them in the view on the next Tick.
type StatusPresenter struct {
	src        StatusSource
	view       StatusView
	latest     tracking.State
	lastResult string
	pending    chan tracking.State
}

func NewStatusPresenter(src StatusSource, view StatusView) *StatusPresenter {
	return &StatusPresenter{src: src, view: view, latest: -1, pending: make(chan tracking.State, 16)}
}

// OnState queues a transitioned state. It is safe to call from the session
// loop; when the queue is full the state is dropped and Tick falls back to
// the source.
func (p *StatusPresenter) OnState(prev, next tracking.State) {
	if p == nil {
		return
	}
	select {
	case p.pending <- next:
	default:
	}
}

// Tick reflects the most recent queued state and the last check result.
func (p *StatusPresenter) Tick(now time.Time) {
	if p == nil || p.src == nil || p.view == nil {
		return
	}
	last, queued := p.latest, false
drain:
	for {
		select {
		case s := <-p.pending:
			last, queued = s, true
		default:
			break drain
		}
	}
	if !queued {
		last = p.src.Current()
	}
	if last != p.latest {
		p.latest = last
		p.view.SetStateLabel("State: " + last.String())
	}
	st := p.src.Stats()
	result := st.LastResult
	if result != "" && !st.LastSmile.IsZero() {
		result = fmt.Sprintf("%s (last smile %s ago)", result, now.Sub(st.LastSmile).Truncate(time.Second))
	}
	if result != p.lastResult {
		p.lastResult = result
		p.view.SetResultLabel("Last check: " + result)
	}
}
