package smile

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/soocke/smile-tracker-go/domain/geometry"
	"github.com/soocke/smile-tracker-go/domain/throttle"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

type fakeFrames struct {
	img image.Image
	err error
}

func (f *fakeFrames) GrabFrame(context.Context) (image.Image, error) { return f.img, f.err }

type fakeService struct {
	mu      sync.Mutex
	faces   []Face
	err     error
	block   chan struct{} // when set, DetectSmile waits for close or ctx
	calls   int
	lastLen int
}

func (s *fakeService) DetectSmile(ctx context.Context, data []byte) ([]Face, error) {
	s.mu.Lock()
	s.calls++
	s.lastLen = len(data)
	block := s.block
	s.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.faces, s.err
}

func newFrame(w, h int) *image.RGBA { return image.NewRGBA(image.Rect(0, 0, w, h)) }

func waitResult(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for check result")
	}
	return Result{}
}

func TestChecker_SmileInvokesCallback(t *testing.T) {
	th := throttle.New(nil)
	svc := &fakeService{faces: []Face{
		{ID: "small", Rect: geometry.Rect{X: 0, Y: 0, Width: 10, Height: 10}, Smile: 0.1},
		{ID: "big", Rect: geometry.Rect{X: 10, Y: 10, Width: 20, Height: 20}, Smile: 0.9},
	}}
	c := NewChecker(th, &fakeFrames{img: newFrame(960, 960)}, svc, Options{FrameHeight: 480, JPEGQuality: 80}, discardLogger)
	got := make(chan Result, 1)
	c.OnSmile(func(r Result) { got <- r })

	ch, ok := c.Offer(context.Background(), time.Unix(100, 0))
	if !ok {
		t.Fatalf("expected offer to start a check")
	}
	res := waitResult(t, ch)
	if res.Err != nil || !res.Found || !res.Smiling || res.Face.ID != "big" {
		t.Fatalf("unexpected result %+v", res)
	}
	want := geometry.Rect{X: 20, Y: 20, Width: 40, Height: 40}
	if res.Face.Rect != want {
		t.Fatalf("face rect not mapped back to frame: got=%+v want=%+v", res.Face.Rect, want)
	}
	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatalf("smile callback not invoked")
	}
	if th.InFlight() {
		t.Fatalf("guard still held after completion")
	}
	if st := c.Stats(); st.Checks != 1 || st.Smiles != 1 || st.Failures != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestChecker_BorderlineIsNotSmiling(t *testing.T) {
	th := throttle.New(nil)
	svc := &fakeService{faces: []Face{{Rect: geometry.Rect{Width: 5, Height: 5}, Smile: 0.5}}}
	c := NewChecker(th, &fakeFrames{img: newFrame(64, 48)}, svc, Options{}, discardLogger)
	called := false
	c.OnSmile(func(Result) { called = true })
	ch, _ := c.Offer(context.Background(), time.Unix(100, 0))
	res := waitResult(t, ch)
	if res.Smiling || called {
		t.Fatalf("0.5 must not count as smiling: %+v", res)
	}
}

func TestChecker_NoFacesIsNotAnError(t *testing.T) {
	th := throttle.New(nil)
	c := NewChecker(th, &fakeFrames{img: newFrame(64, 48)}, &fakeService{}, DefaultOptions(), discardLogger)
	ch, _ := c.Offer(context.Background(), time.Unix(100, 0))
	res := waitResult(t, ch)
	if res.Err != nil || res.Found || res.Smiling {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestChecker_FailureReleasesGuard(t *testing.T) {
	th := throttle.New(nil)
	c := NewChecker(th, &fakeFrames{err: errors.New("no frame")}, &fakeService{}, DefaultOptions(), discardLogger)
	t0 := time.Unix(100, 0)
	ch, ok := c.Offer(context.Background(), t0)
	if !ok {
		t.Fatalf("expected first offer to start")
	}
	res := waitResult(t, ch)
	if res.Err == nil {
		t.Fatalf("expected grab error")
	}
	if th.InFlight() {
		t.Fatalf("guard stuck after failure")
	}
	if _, ok := c.Offer(context.Background(), t0.Add(500*time.Millisecond)); ok {
		t.Fatalf("offer inside interval must be refused")
	}
	ch, ok = c.Offer(context.Background(), t0.Add(time.Second))
	if !ok {
		t.Fatalf("expected offer past interval to start")
	}
	waitResult(t, ch)
	if st := c.Stats(); st.Failures != 2 {
		t.Fatalf("expected two failures, got %+v", st)
	}
}

func TestChecker_SingleFlightWhileRemoteCallPending(t *testing.T) {
	th := throttle.New(nil)
	svc := &fakeService{block: make(chan struct{})}
	c := NewChecker(th, &fakeFrames{img: newFrame(64, 48)}, svc, Options{}, discardLogger)
	t0 := time.Unix(100, 0)
	ch, ok := c.Offer(context.Background(), t0)
	if !ok {
		t.Fatalf("expected first offer to start")
	}
	for i := 1; i <= 5; i++ {
		if _, ok := c.Offer(context.Background(), t0.Add(time.Duration(i)*time.Second)); ok {
			t.Fatalf("second check started while first in flight")
		}
	}
	close(svc.block)
	waitResult(t, ch)
	if _, ok := c.Offer(context.Background(), t0.Add(10*time.Second)); !ok {
		t.Fatalf("expected offer after completion to start")
	}
}

func TestChecker_DeadlineReleasesGuard(t *testing.T) {
	th := throttle.New(nil)
	svc := &fakeService{block: make(chan struct{})}
	defer close(svc.block)
	c := NewChecker(th, &fakeFrames{img: newFrame(64, 48)}, svc, Options{Timeout: 20 * time.Millisecond}, discardLogger)
	ch, _ := c.Offer(context.Background(), time.Unix(100, 0))
	res := waitResult(t, ch)
	if !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got=%v", res.Err)
	}
	if th.InFlight() {
		t.Fatalf("guard stuck after deadline")
	}
}

func TestChecker_DisabledGuard(t *testing.T) {
	th := throttle.New(func() bool { return false })
	svc := &fakeService{}
	c := NewChecker(th, &fakeFrames{img: newFrame(8, 8)}, svc, Options{}, discardLogger)
	if _, ok := c.Offer(context.Background(), time.Unix(100, 0)); ok {
		t.Fatalf("disabled guard must refuse")
	}
	if svc.calls != 0 {
		t.Fatalf("service called while disabled")
	}
}

func TestLargestFace_StableTie(t *testing.T) {
	faces := []Face{
		{ID: "a", Rect: geometry.Rect{Width: 10, Height: 20}},
		{ID: "b", Rect: geometry.Rect{Width: 20, Height: 10}},
	}
	f, ok := LargestFace(faces)
	if !ok || f.ID != "a" {
		t.Fatalf("expected first of tied faces, got=%+v", f)
	}
	if _, ok := LargestFace(nil); ok {
		t.Fatalf("expected no face for empty input")
	}
}

func TestEncodeFrame_ResizesToHeight(t *testing.T) {
	data, scale, err := EncodeFrame(newFrame(640, 480), 240, 90)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if scale != 0.5 {
		t.Fatalf("expected scale 0.5, got=%v", scale)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Fatalf("unexpected encoded size %v", b)
	}
	if _, _, err := EncodeFrame(nil, 240, 90); err == nil {
		t.Fatalf("expected error for nil frame")
	}
}

func TestChecker_SetOptions(t *testing.T) {
	c := NewChecker(throttle.New(nil), &fakeFrames{img: newFrame(8, 8)}, &fakeService{}, DefaultOptions(), discardLogger)
	c.SetOptions(Options{FrameHeight: -3, JPEGQuality: 60, Timeout: time.Second})
	got := c.Options()
	if got.FrameHeight != 0 || got.JPEGQuality != 60 || got.Timeout != time.Second {
		t.Fatalf("unexpected options %+v", got)
	}
}
