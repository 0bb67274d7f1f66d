package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/hail-faro/public-backend/pkg/jwtx"
)

const keyRefreshTimeout = 15 * time.Second

// KeyRefresher periodically refetches the configured pool's key set so that
// verification rarely waits on a cold cache.
type KeyRefresher struct {
	Keys     *jwtx.RemoteKeySets
	Region   string
	PoolID   string
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewKeyRefresher creates a refresher. If interval is 0 or negative it
// defaults to 30 minutes.
func NewKeyRefresher(keys *jwtx.RemoteKeySets, region, poolID string, logger *slog.Logger, interval time.Duration) *KeyRefresher {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &KeyRefresher{
		Keys:     keys,
		Region:   region,
		PoolID:   poolID,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to end it.
func (s *KeyRefresher) Start() {
	go s.run()
	s.Logger.Info("key refresher started", "interval", s.Interval, "pool", s.PoolID)
}

// Stop ends the worker, waiting for an in-progress refresh.
func (s *KeyRefresher) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("key refresher stopped")
}

func (s *KeyRefresher) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Warm the cache immediately on startup
	s.refresh()

	for {
		select {
		case <-ticker.C:
			s.refresh()
		case <-s.stopCh:
			return
		}
	}
}

func (s *KeyRefresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), keyRefreshTimeout)
	defer cancel()

	set, err := s.Keys.Refresh(ctx, s.Region, s.PoolID)
	if err != nil {
		s.Logger.Error("key set refresh failed", "pool", s.PoolID, "error", err)
		return
	}
	s.Logger.Debug("key set refreshed", "pool", s.PoolID, "keys", set.Len())
}
