package components

import (
	"context"
	"log/slog"

	"github.com/avidcandu/ChatSnap/internal/handler/middleware"
	"github.com/avidcandu/ChatSnap/internal/pkg/clock"
	"github.com/avidcandu/ChatSnap/internal/pkg/config"
	"github.com/avidcandu/ChatSnap/internal/usecase"
	"github.com/avidcandu/ChatSnap/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(NewSweeper),
	fx.Invoke(startSweeper),
)

// NewSweeper also prunes the checkout rate limiter on each tick.
func NewSweeper(store usecase.SessionStore, clk clock.Clock, cfg config.Config, logger *slog.Logger, limiter *middleware.RateLimiter) *worker.Sweeper {
	return worker.NewSweeper(store, clk, cfg.Session, logger, limiter)
}

func startSweeper(lc fx.Lifecycle, sweeper *worker.Sweeper) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			sweeper.Start(context.Background())
			return nil
		},
		OnStop: func(_ context.Context) error {
			sweeper.Stop()
			return nil
		},
	})
}
