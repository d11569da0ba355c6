package debug

// Debug goroutine metrics logger. Started only when config.Debug is true.
// Emits goroutine count, stack usage and any extra probes at a fixed interval.

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"
)

// Probe returns key/value pairs appended to each debug log line.
type Probe func() []any

// StartGoroutineLogger logs goroutine count, stack memory and the output of
// probes every interval until ctx is done.
func StartGoroutineLogger(ctx context.Context, interval time.Duration, logger *slog.Logger, probes ...Probe) {
	if logger == nil {
		return
	}
	if interval <= 0 {
		interval = time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			logger.Info("goroutine-stacks", goroutineAttrs(samples, probes)...)
		}
	}()
}

func goroutineAttrs(samples []metrics.Sample, probes []Probe) []any {
	metrics.Read(samples)
	goroutines := uint64(0)
	if samples[0].Value.Kind() == metrics.KindUint64 {
		goroutines = samples[0].Value.Uint64()
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	attrs := []any{
		slog.Uint64("goroutines", goroutines),
		slog.Uint64("stack_inuse", ms.StackInuse),
		slog.Uint64("stack_sys", ms.StackSys),
		slog.Uint64("heap_alloc", ms.HeapAlloc),
	}
	for _, p := range probes {
		if p != nil {
			attrs = append(attrs, p()...)
		}
	}
	return attrs
}
