package tracking

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/soocke/smile-tracker-go/domain/smile"
	"github.com/soocke/smile-tracker-go/domain/throttle"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// waitForState waits up to timeout for the session to reach expected state.
func waitForState(t *testing.T, s *Session, expected State, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.Current() == expected {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for state %v (got %v)", expected, s.Current())
}

type transitionRecorder struct {
	mu  sync.Mutex
	seq []State
}

func (r *transitionRecorder) listener(prev, next State) {
	r.mu.Lock()
	r.seq = append(r.seq, next)
	r.mu.Unlock()
}

func (r *transitionRecorder) snapshot() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.seq...)
}

func TestSession_StartAssignsIDAndTracks(t *testing.T) {
	s := NewSession(discardLogger, nil)
	defer s.Close()
	if s.Throttle().TryAcquire(time.Now()) {
		t.Fatalf("halted session must not admit checks")
	}
	s.Start()
	waitForState(t, s, StateTracking, 200*time.Millisecond)
	if s.ID() == "" {
		t.Fatalf("expected session id after start")
	}
	if !s.Throttle().TryAcquire(time.Now()) {
		t.Fatalf("tracking session should admit a check")
	}
}

func TestSession_CheckCycle(t *testing.T) {
	s := NewSession(discardLogger, nil)
	defer s.Close()
	r := &transitionRecorder{}
	s.AddListener(r.listener)
	s.Start()
	s.CheckStarted()
	waitForState(t, s, StateChecking, 200*time.Millisecond)
	s.CheckFinished(true, nil)
	waitForState(t, s, StateTracking, 200*time.Millisecond)
	s.CheckStarted()
	s.CheckFinished(false, errors.New("boom"))
	waitForState(t, s, StateTracking, 200*time.Millisecond)
	// loop is serial, so a follow-up event flushes the previous ones
	s.FacesSeen(2)
	deadline := time.Now().Add(200 * time.Millisecond)
	for s.Stats().Faces != 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	st := s.Stats()
	if st.Checks != 2 || st.Smiles != 1 || st.Failures != 1 || st.LastResult != "error" || st.Faces != 2 {
		t.Fatalf("unexpected stats %+v", st)
	}
	if st.LastSmile.IsZero() {
		t.Fatalf("expected last smile time")
	}
	seq := r.snapshot()
	if len(seq) < 3 || seq[0] != StateTracking || seq[1] != StateChecking || seq[2] != StateTracking {
		t.Fatalf("unexpected transitions %v", seq)
	}
}

func TestSession_StopResetsThrottle(t *testing.T) {
	s := NewSession(discardLogger, nil)
	defer s.Close()
	s.Start()
	waitForState(t, s, StateTracking, 200*time.Millisecond)
	now := time.Now()
	run, ok := s.Throttle().Acquire(now)
	if !ok {
		t.Fatalf("expected acquire")
	}
	s.Stop()
	waitForState(t, s, StateHalt, 200*time.Millisecond)
	if _, ok := s.Throttle().LastCheck(); ok {
		t.Fatalf("stop should clear last check")
	}
	if !s.Throttle().InFlight() {
		t.Fatalf("stop must not drop a check that is still running")
	}
	s.Throttle().Done(run)
	s.Start()
	waitForState(t, s, StateTracking, 200*time.Millisecond)
	if !s.Throttle().TryAcquire(now.Add(10 * time.Millisecond)) {
		t.Fatalf("restarted session should admit a check immediately")
	}
}

type stillFrames struct{}

func (stillFrames) GrabFrame(context.Context) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 32, 32)), nil
}

// gatedService blocks every call until it receives a token from gate and records the
// highest number of calls running at once.
type gatedService struct {
	gate    chan struct{}
	mu      sync.Mutex
	active  int
	maxSeen int
	calls   int
}

func (g *gatedService) DetectSmile(ctx context.Context, _ []byte) ([]smile.Face, error) {
	g.mu.Lock()
	g.active++
	g.calls++
	if g.active > g.maxSeen {
		g.maxSeen = g.active
	}
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.active--
		g.mu.Unlock()
	}()
	select {
	case <-g.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return nil, nil
}

func (g *gatedService) counts() (calls, maxSeen int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls, g.maxSeen
}

func TestSession_RestartDuringCheckKeepsSingleFlight(t *testing.T) {
	s := NewSession(discardLogger, nil, throttle.WithInterval(10*time.Millisecond))
	defer s.Close()
	svc := &gatedService{gate: make(chan struct{})}
	checker := smile.NewChecker(s.Throttle(), stillFrames{}, svc, smile.Options{FrameHeight: 0, JPEGQuality: 80}, nil)

	s.Start()
	waitForState(t, s, StateTracking, 200*time.Millisecond)
	t0 := time.Now()
	first, ok := checker.Offer(context.Background(), t0)
	if !ok {
		t.Fatalf("expected the first check to start")
	}
	deadline := time.Now().Add(time.Second)
	for calls, _ := svc.counts(); calls == 0; calls, _ = svc.counts() {
		if time.Now().After(deadline) {
			t.Fatalf("first check never reached the service")
		}
		time.Sleep(time.Millisecond)
	}

	s.Stop()
	waitForState(t, s, StateHalt, 200*time.Millisecond)
	s.Start()
	waitForState(t, s, StateTracking, 200*time.Millisecond)
	if _, ok := checker.Offer(context.Background(), t0.Add(time.Second)); ok {
		t.Fatalf("second check admitted while the first is still running")
	}

	svc.gate <- struct{}{}
	select {
	case <-first:
	case <-time.After(2 * time.Second):
		t.Fatalf("first check did not finish")
	}
	second, ok := checker.Offer(context.Background(), t0.Add(2*time.Second))
	if !ok {
		t.Fatalf("expected a check once the first one ended")
	}
	if _, ok := checker.Offer(context.Background(), t0.Add(3*time.Second)); ok {
		t.Fatalf("third check admitted while the second is running")
	}
	svc.gate <- struct{}{}
	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatalf("second check did not finish")
	}
	if calls, maxSeen := svc.counts(); calls != 2 || maxSeen != 1 {
		t.Fatalf("expected 2 sequential remote calls, got calls=%d max_concurrent=%d", calls, maxSeen)
	}
}

func TestSession_ChecksDisabled(t *testing.T) {
	s := NewSession(discardLogger, func() bool { return false })
	defer s.Close()
	s.Start()
	waitForState(t, s, StateTracking, 200*time.Millisecond)
	if s.Throttle().TryAcquire(time.Now()) {
		t.Fatalf("disabled checks must not be admitted")
	}
}

func TestSession_FinishWhileHaltedIgnored(t *testing.T) {
	s := NewSession(discardLogger, nil)
	defer s.Close()
	s.CheckFinished(true, nil)
	s.Start()
	waitForState(t, s, StateTracking, 200*time.Millisecond)
	if st := s.Stats(); st.Smiles != 0 {
		t.Fatalf("finish before start must not count, got=%+v", st)
	}
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	s := NewSession(discardLogger, nil)
	s.Close()
	s.Close()
	s.Start() // dropped, must not block
	if s.Current() != StateHalt {
		t.Fatalf("expected halt after close")
	}
}
