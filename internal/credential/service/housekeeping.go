package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/credkit/internal/credential/store"
)

// HousekeepingService periodically sweeps lapsed cache entries so drivers
// without native TTL eviction (sqlite, memory) don't grow without bound.
type HousekeepingService struct {
	Cache    store.Cache
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(cache store.Cache, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Cache:    cache,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs the sweep.
// This is non-blocking and should be called after the store is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress sweep.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// run is the main background worker loop.
func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run a sweep immediately on startup
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep deletes lapsed entries on drivers that expose a purge hook. Redis
// evicts expired keys natively and skips this path entirely.
func (s *HousekeepingService) sweep() {
	purger, ok := s.Cache.(store.Purger)
	if !ok {
		s.Logger.Debug("cache driver evicts natively, nothing to sweep")
		return
	}

	deleted, err := purger.PurgeExpired(context.Background())
	if err != nil {
		s.Logger.Error("failed to purge expired cache entries", "error", err)
		return
	}

	s.Logger.Info("housekeeping sweep completed", "deleted", deleted)
}
