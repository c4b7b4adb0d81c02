package components

import (
	"github.com/avidcandu/ChatSnap/internal/pkg/clock"
	"github.com/avidcandu/ChatSnap/internal/pkg/config"
	"github.com/avidcandu/ChatSnap/internal/pkg/sessiontoken"
	"github.com/avidcandu/ChatSnap/internal/usecase"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		NewSessionTokens,
		usecase.NewQuotaUseCase,
	),
)

func NewSessionTokens(cfg config.Config) *sessiontoken.Service {
	return sessiontoken.NewService(cfg.Session.TokenSecret, cfg.Cookie.MaxAge)
}
