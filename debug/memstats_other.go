//go:build !windows

package debug

import (
	"context"
	"log/slog"
	"time"
)

// StartMemLogger is only implemented on Windows.
func StartMemLogger(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if logger != nil {
		logger.Debug("memlog: not supported on this platform")
	}
}
