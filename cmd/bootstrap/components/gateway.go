package components

import (
	"log/slog"

	"github.com/avidcandu/ChatSnap/internal/infra/gateway"
	"github.com/avidcandu/ChatSnap/internal/pkg/config"
	"github.com/avidcandu/ChatSnap/internal/usecase"

	"go.uber.org/fx"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		fx.Annotate(
			NewStripeGateway,
			fx.As(new(usecase.PaymentGateway)),
		),
	),
)

func NewStripeGateway(cfg config.Config, logger *slog.Logger) *gateway.StripeGateway {
	return gateway.NewStripeGateway(cfg.Stripe, logger)
}
