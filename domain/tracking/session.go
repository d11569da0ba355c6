// Package tracking owns the lifecycle of a smile tracking session and the
// throttle that gates its smile checks.
package tracking

import (
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/smile-tracker-go/domain/throttle"
)

// Session manages tracking state transitions on a single event loop.
type Session struct {
	state     atomic.Int32
	logger    *slog.Logger
	throttle  *throttle.Throttle
	checking  func() bool
	events    chan interface{}
	done      chan struct{}
	closeOnce sync.Once
	listeners []StateListener

	mu    sync.RWMutex // guards stats
	stats Stats
}

// events
type (
	evtStart         struct{ now time.Time }
	evtStop          struct{}
	evtCheckStarted  struct{}
	evtCheckFinished struct {
		smiling bool
		err     error
		now     time.Time
	}
	evtFaces       struct{ n int }
	evtAddListener struct{ l StateListener }
)

// NewSession constructs and starts the event loop. checkEnabled reports
// whether smile checks are switched on; nil means always.
func NewSession(logger *slog.Logger, checkEnabled func() bool, opts ...throttle.Option) *Session {
	if checkEnabled == nil {
		checkEnabled = func() bool { return true }
	}
	s := &Session{logger: logger, checking: checkEnabled, events: make(chan interface{}, 64), done: make(chan struct{})}
	s.throttle = throttle.New(s.checksAllowed, opts...)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if logger != nil {
					logger.Error("session panic", "error", r, "stack", string(debug.Stack()))
				}
			}
		}()
		s.loop()
	}()
	return s
}

func (s *Session) checksAllowed() bool {
	return s.Current() != StateHalt && s.checking()
}

func (s *Session) loop() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			s.handle(ev)
		}
	}
}

func (s *Session) handle(ev interface{}) {
	switch e := ev.(type) {
	case evtAddListener:
		s.listeners = append(s.listeners, e.l)
	case evtStart:
		if s.Current() != StateHalt {
			return
		}
		s.mu.Lock()
		s.stats = Stats{ID: uuid.NewString(), Started: e.now}
		s.mu.Unlock()
		s.throttle.Reset()
		s.transition(StateTracking)
	case evtStop:
		s.throttle.Reset()
		s.transition(StateHalt)
	case evtCheckStarted:
		if s.Current() == StateTracking {
			s.mu.Lock()
			s.stats.Checks++
			s.mu.Unlock()
			s.transition(StateChecking)
		}
	case evtCheckFinished:
		if s.Current() == StateHalt {
			return
		}
		s.mu.Lock()
		switch {
		case e.err != nil:
			s.stats.Failures++
			s.stats.LastResult = "error"
		case e.smiling:
			s.stats.Smiles++
			s.stats.LastSmile = e.now
			s.stats.LastResult = "smiling"
		default:
			s.stats.LastResult = "not smiling"
		}
		s.mu.Unlock()
		s.transition(StateTracking)
	case evtFaces:
		s.mu.Lock()
		s.stats.Faces = e.n
		s.mu.Unlock()
	}
}

func (s *Session) transition(next State) {
	prev := s.Current()
	if prev == next {
		return
	}
	s.state.Store(int32(next))
	if s.logger != nil {
		s.logger.Debug("session state transition", "session", s.ID(), "from", prev.String(), "to", next.String())
	}
	for _, l := range s.listeners {
		l(prev, next)
	}
}

func (s *Session) send(ev interface{}) {
	select {
	case <-s.done:
	case s.events <- ev:
	}
}

// Throttle returns the gate for this session's smile checks. It admits
// nothing while the session is halted.
func (s *Session) Throttle() *throttle.Throttle { return s.throttle }

func (s *Session) Current() State { return State(s.state.Load()) }

func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats.ID
}

func (s *Session) Stats() Stats {
	s.mu.RLock()
	st := s.stats
	s.mu.RUnlock()
	st.State = s.Current()
	return st
}

func (s *Session) AddListener(l StateListener) { s.send(evtAddListener{l: l}) }
func (s *Session) Start()                      { s.send(evtStart{now: time.Now()}) }
func (s *Session) Stop()                       { s.send(evtStop{}) }
func (s *Session) CheckStarted()               { s.send(evtCheckStarted{}) }
func (s *Session) FacesSeen(n int)             { s.send(evtFaces{n: n}) }
func (s *Session) CheckFinished(smiling bool, err error) {
	s.send(evtCheckFinished{smiling: smiling, err: err, now: time.Now()})
}

// Close stops the event loop. Further events are dropped.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Ensure contract satisfaction
var _ SessionContract = (*Session)(nil)
