// Package smile runs the throttled smile check: grab the current preview
// frame, encode it, ask the remote attribute service for face scores and
// report whether the largest face is smiling.
package smile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/soocke/smile-tracker-go/domain/geometry"
	"github.com/soocke/smile-tracker-go/domain/throttle"
)

// Guard is the subset of throttle.Throttle the checker relies on. Go starts
// fn only when the guard admits a run and calls onExit once the run ended.
type Guard interface {
	Go(now time.Time, fn func(), onExit func(recovered any)) bool
}

var _ Guard = (*throttle.Throttle)(nil)

// Options tune a Checker.
type Options struct {
	FrameHeight int           // encoded frame height in pixels (480 by default)
	JPEGQuality int           // 1..100
	Timeout     time.Duration // per-check deadline, 0 disables
}

// DefaultOptions mirror the defaults in config.DefaultConfig.
func DefaultOptions() Options {
	return Options{FrameHeight: 480, JPEGQuality: 85, Timeout: 10 * time.Second}
}

// Stats counts checker outcomes.
type Stats struct {
	Checks   uint64
	Failures uint64
	Smiles   uint64
}

// Checker launches at most one smile check at a time, guarded by a Guard.
type Checker struct {
	guard   Guard
	frames  FrameGrabber
	service AttributeService
	opts    atomic.Pointer[Options]
	logger  *slog.Logger
	onSmile atomic.Pointer[func(Result)]

	checks   atomic.Uint64
	failures atomic.Uint64
	smiles   atomic.Uint64
}

// NewChecker wires a checker. guard is normally the session's throttle.
func NewChecker(guard Guard, frames FrameGrabber, service AttributeService, opts Options, logger *slog.Logger) *Checker {
	c := &Checker{guard: guard, frames: frames, service: service, logger: logger}
	c.SetOptions(opts)
	return c
}

// SetOptions replaces the options used by checks started afterwards.
func (c *Checker) SetOptions(opts Options) {
	if opts.FrameHeight < 0 {
		opts.FrameHeight = 0
	}
	c.opts.Store(&opts)
}

// Options returns the current options.
func (c *Checker) Options() Options { return *c.opts.Load() }

// OnSmile registers the callback invoked for every positive check. It runs on
// the check goroutine after the guard has been released.
func (c *Checker) OnSmile(fn func(Result)) {
	if fn == nil {
		c.onSmile.Store(nil)
		return
	}
	c.onSmile.Store(&fn)
}

// Stats returns a snapshot of the counters.
func (c *Checker) Stats() Stats {
	return Stats{Checks: c.checks.Load(), Failures: c.failures.Load(), Smiles: c.smiles.Load()}
}

// Offer is called once per detection event. It never blocks: when the guard
// refuses it returns (nil, false). Otherwise the check runs on its own
// goroutine and the returned channel receives exactly one Result, after the
// guard has been released.
func (c *Checker) Offer(ctx context.Context, now time.Time) (<-chan Result, bool) {
	if c == nil || c.guard == nil || c.frames == nil || c.service == nil {
		return nil, false
	}
	done := make(chan Result, 1)
	var res Result
	started := c.guard.Go(now, func() {
		c.checks.Add(1)
		res = c.check(ctx, now)
	}, func(recovered any) {
		if recovered != nil {
			res = Result{Started: now, Finished: time.Now(), Err: fmt.Errorf("smile: check panic: %v", recovered)}
			if c.logger != nil {
				c.logger.Error("smile check panic", "error", recovered)
			}
		}
		c.finish(res)
		done <- res
		close(done)
	})
	if !started {
		return nil, false
	}
	return done, true
}

func (c *Checker) check(ctx context.Context, now time.Time) Result {
	res := Result{Started: now}
	opts := c.Options()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	frame, err := c.frames.GrabFrame(ctx)
	if err != nil {
		res.Err = fmt.Errorf("smile: grab frame: %w", err)
		res.Finished = time.Now()
		return res
	}
	res.Frame = frame
	data, scale, err := EncodeFrame(frame, opts.FrameHeight, opts.JPEGQuality)
	if err != nil {
		res.Err = err
		res.Finished = time.Now()
		return res
	}
	faces, err := c.service.DetectSmile(ctx, data)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("smile: remote call exceeded %v: %w", opts.Timeout, err)
		} else {
			err = fmt.Errorf("smile: remote call: %w", err)
		}
		res.Err = err
		res.Finished = time.Now()
		return res
	}
	face, ok := LargestFace(faces)
	if ok {
		if scale > 0 && scale != 1 {
			face.Rect = geometry.Rect{
				X:      face.Rect.X / scale,
				Y:      face.Rect.Y / scale,
				Width:  face.Rect.Width / scale,
				Height: face.Rect.Height / scale,
			}
		}
		res.Face = face
		res.Found = true
		res.Smiling = IsSmiling(face)
	}
	res.Finished = time.Now()
	return res
}

func (c *Checker) finish(res Result) {
	if res.Err != nil {
		c.failures.Add(1)
		if c.logger != nil {
			c.logger.Warn("smile check failed", "error", res.Err, "elapsed", res.Finished.Sub(res.Started))
		}
		return
	}
	if c.logger != nil {
		c.logger.Debug("smile check done", "found", res.Found, "smile", res.Face.Smile, "elapsed", res.Finished.Sub(res.Started))
	}
	if !res.Smiling {
		return
	}
	c.smiles.Add(1)
	if fn := c.onSmile.Load(); fn != nil {
		func() {
			defer func() {
				if r := recover(); r != nil && c.logger != nil {
					c.logger.Error("smile callback panic", "error", r)
				}
			}()
			(*fn)(res)
		}()
	}
}
