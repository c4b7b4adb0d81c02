package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/avidcandu/ChatSnap/internal/pkg/clock"
	"github.com/avidcandu/ChatSnap/internal/pkg/config"
	"github.com/avidcandu/ChatSnap/internal/pkg/metrics"
)

// ExpiredSessionDeleter is the slice of the session store the sweeper needs.
type ExpiredSessionDeleter interface {
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Cleaner drops stale in-memory bookkeeping, such as rate limiter windows.
type Cleaner interface {
	Cleanup()
}

// Sweeper periodically deletes sessions whose cookie can no longer reach
// them and runs auxiliary cleaners on the same tick.
type Sweeper struct {
	store     ExpiredSessionDeleter
	cleaners  []Cleaner
	clock     clock.Clock
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSweeper(store ExpiredSessionDeleter, clk clock.Clock, cfg config.SessionConfig, logger *slog.Logger, cleaners ...Cleaner) *Sweeper {
	return &Sweeper{
		store:     store,
		cleaners:  cleaners,
		clock:     clk,
		retention: cfg.Retention,
		interval:  cfg.SweepInterval,
		logger:    logger,
	}
}

// SweepOnce deletes every session created before now minus the retention.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := s.clock.Now().Add(-s.retention)
	n, err := s.store.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.SessionsSweptTotal.Add(float64(n))
		s.logger.InfoContext(ctx, "cleaned up expired sessions", slog.Int64("count", n))
	}
	for _, c := range s.cleaners {
		c.Cleanup()
	}
	return n, nil
}

// Start launches the sweep loop. It returns immediately.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := s.SweepOnce(ctx); err != nil {
					s.logger.ErrorContext(ctx, "cleanup expired sessions", slog.Any("error", err))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
