// Package throttle gates an expensive operation against a high-frequency event
// stream: at most one run in flight, runs spaced at least MinInterval apart,
// and a non-blocking decision on the caller's goroutine.
package throttle

import (
	"sync/atomic"
	"time"
)

// MinInterval is the minimum spacing between two successful acquisitions.
const MinInterval = time.Second

// state is an immutable snapshot. Transitions swap the whole pointer so the
// in-flight bit, the run that holds it and the last timestamp are always read
// and written together.
type state struct {
	inFlight  bool
	run       Run
	lastCheck *time.Time // nil until the first acquisition
}

// Run identifies one successful acquisition. Only the holder of the current
// run can end it through Done.
type Run uint64

// Throttle is a single-flight, interval-limited guard. One instance belongs to
// one tracking session; the zero value is not usable, construct with New.
type Throttle struct {
	enabled  func() bool
	interval time.Duration
	st       atomic.Pointer[state]
}

// Option customises a Throttle.
type Option func(*Throttle)

// WithInterval overrides MinInterval. Intended for tests of dependent packages.
func WithInterval(d time.Duration) Option {
	return func(t *Throttle) {
		if d >= 0 {
			t.interval = d
		}
	}
}

// New returns an idle throttle. enabled is consulted on every TryAcquire; a
// nil func means always enabled.
func New(enabled func() bool, opts ...Option) *Throttle {
	t := &Throttle{enabled: enabled, interval: MinInterval}
	for _, o := range opts {
		o(t)
	}
	t.st.Store(&state{})
	return t
}

// TryAcquire attempts to start a run at now. It never blocks. Among
// concurrent callers at most one wins; the winner must call Release exactly
// once when the run ends.
func (t *Throttle) TryAcquire(now time.Time) bool {
	_, ok := t.Acquire(now)
	return ok
}

// Acquire is TryAcquire returning the run it started. Ending the run with
// Done cannot clear a run started later.
func (t *Throttle) Acquire(now time.Time) (Run, bool) {
	if t == nil {
		return 0, false
	}
	if t.enabled != nil && !t.enabled() {
		return 0, false
	}
	for {
		cur := t.st.Load()
		if cur.inFlight {
			return 0, false
		}
		if cur.lastCheck != nil && now.Sub(*cur.lastCheck) < t.interval {
			return 0, false
		}
		stamp := now
		next := &state{inFlight: true, run: cur.run + 1, lastCheck: &stamp}
		if t.st.CompareAndSwap(cur, next) {
			return next.run, true
		}
		// lost the race against another acquire, release or reset: re-evaluate
	}
}

// Release clears the in-flight bit whichever run holds it. The last check
// timestamp is kept.
func (t *Throttle) Release() {
	if t == nil {
		return
	}
	for {
		cur := t.st.Load()
		if !cur.inFlight {
			return
		}
		if t.st.CompareAndSwap(cur, &state{run: cur.run, lastCheck: cur.lastCheck}) {
			return
		}
	}
}

// Done ends run r. It is a no-op when r no longer holds the guard.
func (t *Throttle) Done(r Run) {
	if t == nil {
		return
	}
	for {
		cur := t.st.Load()
		if !cur.inFlight || cur.run != r {
			return
		}
		if t.st.CompareAndSwap(cur, &state{run: cur.run, lastCheck: cur.lastCheck}) {
			return
		}
	}
}

// Reset forgets the last check time. Called when tracking stops or starts.
// A run still in flight keeps the guard until it ends, so a restarted
// session never overlaps a check left over from the previous one.
func (t *Throttle) Reset() {
	if t == nil {
		return
	}
	for {
		cur := t.st.Load()
		if t.st.CompareAndSwap(cur, &state{inFlight: cur.inFlight, run: cur.run}) {
			return
		}
	}
}

// InFlight reports whether a run currently holds the guard.
func (t *Throttle) InFlight() bool {
	if t == nil {
		return false
	}
	return t.st.Load().inFlight
}

// LastCheck returns the time of the last successful acquisition, if any.
func (t *Throttle) LastCheck() (time.Time, bool) {
	if t == nil {
		return time.Time{}, false
	}
	cur := t.st.Load()
	if cur.lastCheck == nil {
		return time.Time{}, false
	}
	return *cur.lastCheck, true
}

// Go acquires at now and runs fn on a new goroutine. The run ends on every
// exit path of fn including a panic; afterwards onExit, when non-nil, is
// called on the same goroutine with the recovered panic value or nil. It
// reports whether fn was started.
func (t *Throttle) Go(now time.Time, fn func(), onExit func(recovered any)) bool {
	run, ok := t.Acquire(now)
	if !ok {
		return false
	}
	go func() {
		var recovered any
		defer func() {
			if onExit != nil {
				onExit(recovered)
			}
		}()
		defer t.Done(run)
		defer func() { recovered = recover() }()
		fn()
	}()
	return true
}
