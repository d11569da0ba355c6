package debug

import (
	"log/slog"
	"runtime/metrics"
	"testing"
)

func TestGoroutineAttrsIncludesProbes(t *testing.T) {
	samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
	attrs := goroutineAttrs(samples, []Probe{
		func() []any { return []any{slog.Int("faces", 2)} },
		nil,
	})
	if len(attrs) != 5 {
		t.Fatalf("expected 4 base attrs plus probe, got=%d", len(attrs))
	}
	last, ok := attrs[4].(slog.Attr)
	if !ok || last.Key != "faces" || last.Value.Int64() != 2 {
		t.Fatalf("unexpected probe attr %v", attrs[4])
	}
	first := attrs[0].(slog.Attr)
	if first.Value.Uint64() == 0 {
		t.Fatalf("expected a goroutine count")
	}
}
