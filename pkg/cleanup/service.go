// Package cleanup periodically sweeps the external memory store so
// spilled query results do not accumulate past their retention window.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/codeready-toolchain/dataq/pkg/config"
	"github.com/codeready-toolchain/dataq/pkg/memory"
)

// Service runs memory.Store.Sweep on a fixed interval, reclaiming
// spilled results older than the workflow's configured MemoryTTL. It is
// safe to run from a single process only; the sweep itself is a plain
// DELETE and is idempotent if ever run from more than one.
type Service struct {
	store    memory.Store
	ttl      time.Duration
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService builds a Service sweeping store per cfg's memory and
// workflow sections.
func NewService(store memory.Store, cfg *config.Config) *Service {
	return &Service{
		store:    store,
		ttl:      cfg.Workflow.MemoryTTL.Duration,
		interval: cfg.Memory.SweepInterval.Duration,
	}
}

// Start launches the background sweep loop. It is a no-op if already running.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("cleanup: sweep service started", "interval", s.interval, "ttl", s.ttl)
}

// Stop signals the sweep loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("cleanup: sweep service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Service) sweep(ctx context.Context) {
	count, err := s.store.Sweep(ctx, s.ttl)
	if err != nil {
		slog.Error("cleanup: sweep failed", "error", err)
		return
	}
	if count > 0 {
		slog.Info("cleanup: swept expired memory entries", "count", count)
	}
}
