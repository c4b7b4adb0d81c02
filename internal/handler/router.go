package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/avidcandu/ChatSnap/internal/handler/api"
	"github.com/avidcandu/ChatSnap/internal/handler/middleware"
	"github.com/avidcandu/ChatSnap/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	logger *middleware.Logger,
	sessionHandler *api.SessionHandler,
	sessionMiddleware *middleware.SessionMiddleware,
	limiter *middleware.RateLimiter,
) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, cfg, sessionHandler, sessionMiddleware, limiter)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.RequestMetrics())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	cfg config.Config,
	sessionHandler *api.SessionHandler,
	sessionMiddleware *middleware.SessionMiddleware,
	limiter *middleware.RateLimiter,
) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	apiGroup.Use(sessionMiddleware.LoadSession())
	{
		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/session", Handler: sessionHandler.GetSession},
			{Method: http.MethodGet, Path: "/pricing", Handler: sessionHandler.GetPricing},
		})

		sessionRequired := apiGroup.Group("")
		sessionRequired.Use(sessionMiddleware.RequireSession())
		addRoutes(sessionRequired, []route{
			{Method: http.MethodPost, Path: "/screenshot/use", Handler: sessionHandler.UseScreenshot},
			{
				Method:  http.MethodPost,
				Path:    "/payment-intent",
				Handler: sessionHandler.CreatePaymentIntent,
				Mw: []gin.HandlerFunc{
					middleware.RateLimitByIP(limiter, cfg.Server.CheckoutRateLimit, cfg.Server.RateLimitWindow),
				},
			},
			{Method: http.MethodPost, Path: "/confirm-payment", Handler: sessionHandler.ConfirmPayment},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
