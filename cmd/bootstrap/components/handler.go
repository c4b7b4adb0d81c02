package components

import (
	"github.com/avidcandu/ChatSnap/internal/handler"
	"github.com/avidcandu/ChatSnap/internal/handler/api"
	"github.com/avidcandu/ChatSnap/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewSessionHandler,
		middleware.NewSessionMiddleware,
		middleware.NewRateLimiter,
	),
	fx.Invoke(handler.NewRouter),
)
