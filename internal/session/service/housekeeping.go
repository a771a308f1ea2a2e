package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/certquest/sessiond/internal/session/store"
)

// DefaultLedgerRetention is how long ledger rows are kept after expiry.
const DefaultLedgerRetention = 24 * time.Hour

// HousekeepingService periodically prunes the issued-session ledger.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration
	Now       func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. Non-positive
// interval and retention fall back to one hour and DefaultLedgerRetention.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = DefaultLedgerRetention
	}

	return &HousekeepingService{
		Store:     st,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		Now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "retention", s.Retention)
}

// Stop blocks until the worker has finished any in-progress cleanup.
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
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup deletes ledger rows that expired more than Retention ago.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	cutoff := s.Now().Add(-s.Retention)

	n, err := s.Store.Sessions().DeleteSessionsExpiredBefore(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to prune session ledger", "error", err)
		return
	}
	s.Logger.Info("housekeeping cleanup completed", "deleted_sessions", n, "cutoff", cutoff)
}
