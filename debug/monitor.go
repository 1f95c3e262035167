// Package debug provides runtime monitoring and diagnostics.
package debug

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/drake/tusk/api"
	"github.com/drake/tusk/images"
)

// Enabled returns true if debug mode is active (TUSK_DEBUG=1).
func Enabled() bool {
	return os.Getenv("TUSK_DEBUG") == "1"
}

// Sources are the components whose counters the monitor reports. Nil
// fields are skipped.
type Sources struct {
	API      func() api.Stats
	Images   func() images.Stats
	Prefetch func() int
}

// Monitor periodically logs client statistics when debug mode is enabled.
type Monitor struct {
	src      Sources
	interval time.Duration
	ctx      context.Context
	logger   *slog.Logger
}

// NewMonitor creates a new monitor for the given sources.
// If debug mode is not enabled, returns nil.
func NewMonitor(ctx context.Context, src Sources, logger *slog.Logger) *Monitor {
	if !Enabled() {
		return nil
	}
	return newMonitor(ctx, src, logger, 5*time.Second)
}

func newMonitor(ctx context.Context, src Sources, logger *slog.Logger, interval time.Duration) *Monitor {
	return &Monitor{
		src:      src,
		interval: interval,
		ctx:      ctx,
		logger:   logger,
	}
}

// Start begins the monitoring loop in a goroutine.
func (m *Monitor) Start() {
	if m == nil {
		return
	}
	go m.run()
}

func (m *Monitor) run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Debug("monitor started", "interval", m.interval)

	for {
		select {
		case <-m.ctx.Done():
			m.logger.Debug("monitor stopped")
			return
		case <-ticker.C:
			m.logStats()
		}
	}
}

func (m *Monitor) logStats() {
	attrs := []any{"goroutines", runtime.NumGoroutine()}

	if m.src.API != nil {
		s := m.src.API()
		lastRequest := "never"
		if !s.LastRequest.IsZero() {
			lastRequest = fmt.Sprintf("%v ago", time.Since(s.LastRequest).Round(time.Second))
		}
		attrs = append(attrs, slog.Group("api",
			"requests", s.Requests,
			"failures", s.Failures,
			"bytes", s.BytesRead,
			"last", lastRequest,
		))
	}
	if m.src.Images != nil {
		s := m.src.Images()
		attrs = append(attrs, slog.Group("images",
			"fetched", s.Fetched,
			"failed", s.Failed,
			"bytes", s.Bytes,
			"cached", s.Cached,
			"inflight", s.InFlight,
		))
	}
	if m.src.Prefetch != nil {
		attrs = append(attrs, "prefetchQ", m.src.Prefetch())
	}

	m.logger.Debug("stats", attrs...)
}
