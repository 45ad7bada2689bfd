package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/candor/internal/auth/domain"
	"github.com/aussiebroadwan/candor/internal/auth/store"
)

const (
	DefaultRetention            = 7 * 24 * time.Hour
	DefaultHousekeepingInterval = 24 * time.Hour
)

// HousekeepingService periodically removes nonces and sessions that are
// past the retention window.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration
	Now       func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. Non-positive
// durations fall back to the defaults.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = DefaultHousekeepingInterval
	}
	if retention <= 0 {
		retention = DefaultRetention
	}

	return &HousekeepingService{
		Store:     store,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started",
		"interval", s.Interval,
		"retention", s.Retention,
	)
}

// Stop shuts down the worker, blocking until any in-progress pass finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	_, _ = s.RunOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			_, _ = s.RunOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// RunOnce performs one retention pass. Each table is cleaned independently;
// the first error is returned alongside whatever counts succeeded.
func (s *HousekeepingService) RunOnce(ctx context.Context) (domain.CleanupResult, error) {
	now := s.now()
	cutoff := now.Add(-s.Retention)
	s.Logger.Info("starting housekeeping cleanup", "cutoff", cutoff)

	var (
		result   domain.CleanupResult
		firstErr error
	)

	n, err := s.Store.Nonces().DeleteStaleNonces(ctx, now, cutoff)
	if err != nil {
		s.Logger.Error("failed to delete stale nonces", "error", err)
		firstErr = err
	} else {
		result.Nonces = n
	}

	n, err = s.Store.Sessions().DeleteStaleSessions(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to delete stale sessions", "error", err)
		if firstErr == nil {
			firstErr = err
		}
	} else {
		result.Sessions = n
	}

	s.Logger.Info("housekeeping cleanup completed",
		"nonces", result.Nonces,
		"sessions", result.Sessions,
	)
	return result, firstErr
}
