package bootstrap

import (
	"context"
	"log/slog"

	"github.com/avidcandu/ChatSnap/internal/infra/db"
	"github.com/avidcandu/ChatSnap/internal/infra/store"
	"github.com/avidcandu/ChatSnap/internal/pkg/clock"
	"github.com/avidcandu/ChatSnap/internal/pkg/config"
	"github.com/avidcandu/ChatSnap/internal/usecase"

	"go.uber.org/fx"
)

var StoreModule = fx.Module("store",
	fx.Provide(
		NewSessionStore,
	),
)

// NewSessionStore picks the session backend from STORE_DRIVER. The postgres
// backend is migrated before the server starts accepting requests.
func NewSessionStore(lc fx.Lifecycle, cfg config.Config, clk clock.Clock, logger *slog.Logger) (usecase.SessionStore, error) {
	if cfg.Store.Driver != config.StoreDriverPostgres {
		logger.Info("using in-memory session store", "shards", cfg.Store.Shards)
		return store.NewMemoryStore(cfg.Store.Shards, clk, logger), nil
	}

	ctx := context.Background()
	pool, cleanup, err := db.Connect(ctx, cfg.DB, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, pool, logger); err != nil {
		cleanup()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			cleanup()
			return nil
		},
	})

	return store.NewPostgresStore(pool, clk, logger), nil
}
