// Package sweep deactivates abandoned intake sessions: records that were
// never completed and have not been touched within the retention window.
package sweep

import (
	"context"
	"log/slog"
	"time"
)

// SessionStore abstracts the bulk-expiry operation.
type SessionStore interface {
	DeactivateExpiredSessions(cutoff time.Time) (int64, error)
}

// Sweeper periodically expires stale sessions. Failures are logged and
// swallowed; the sweep never surfaces errors to request handling.
type Sweeper struct {
	store    SessionStore
	maxAge   time.Duration
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewSweeper creates a Sweeper. maxAge defaults to 48h and interval to 1h
// when non-positive.
func NewSweeper(store SessionStore, maxAge, interval time.Duration) *Sweeper {
	if maxAge <= 0 {
		maxAge = 48 * time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		store:    store,
		maxAge:   maxAge,
		interval: interval,
		logger:   slog.Default(),
		now:      time.Now,
	}
}

// Run sweeps immediately, then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.RunOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce performs a single sweep and returns how many sessions were expired.
func (s *Sweeper) RunOnce() int64 {
	cutoff := s.now().UTC().Add(-s.maxAge)
	n, err := s.store.DeactivateExpiredSessions(cutoff)
	if err != nil {
		s.logger.Error("session sweep failed", "error", err)
		return 0
	}
	if n > 0 {
		s.logger.Info("expired stale sessions", "count", n, "cutoff", cutoff)
	}
	return n
}
