package api

import (
	"net/http"

	reqdto "github.com/avidcandu/ChatSnap/internal/handler/dto/request"
	resdto "github.com/avidcandu/ChatSnap/internal/handler/dto/response"
	"github.com/avidcandu/ChatSnap/internal/handler/httperr"
	"github.com/avidcandu/ChatSnap/internal/handler/middleware"
	"github.com/avidcandu/ChatSnap/internal/pkg/config"
	"github.com/avidcandu/ChatSnap/internal/pkg/cookie"
	"github.com/avidcandu/ChatSnap/internal/pkg/errs"
	"github.com/avidcandu/ChatSnap/internal/pkg/sessiontoken"
	"github.com/avidcandu/ChatSnap/internal/usecase"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	quota     usecase.QuotaUseCase
	tokens    *sessiontoken.Service
	cookieCfg config.CookieConfig
	currency  string
}

func NewSessionHandler(quota usecase.QuotaUseCase, tokens *sessiontoken.Service, cfg config.Config) *SessionHandler {
	return &SessionHandler{
		quota:     quota,
		tokens:    tokens,
		cookieCfg: cfg.Cookie,
		currency:  cfg.Stripe.Currency,
	}
}

// @Summary Get or create session
// @Description Returns the caller's session, creating a free one and setting the session cookie when none exists
// @Tags session
// @Produce json
// @Success 200 {object} resdto.SessionResponse
// @Failure 500 {object} httperr.Response
// @Router /api/session [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, _ := middleware.GetSessionID(c)

	s, created, err := h.quota.ResolveSession(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternalError, "Failed to create session")
		return
	}

	if created {
		token, err := h.tokens.Issue(s.ID())
		if err != nil {
			httperr.AbortWithError(c, http.StatusInternalServerError, errs.Wrap(err, "issue session token"), httperr.CodeInternalError, "Failed to create session")
			return
		}
		cookie.SetSessionCookie(c, h.cookieCfg, token)
	}

	c.JSON(http.StatusOK, resdto.FromSession(s))
}

// @Summary Use a screenshot
// @Description Counts one screenshot export against the session quota
// @Tags session
// @Produce json
// @Success 200 {object} resdto.SessionResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 500 {object} httperr.Response
// @Router /api/screenshot/use [post]
func (h *SessionHandler) UseScreenshot(c *gin.Context) {
	id, _ := middleware.GetSessionID(c)

	s, err := h.quota.AttemptUsage(c.Request.Context(), id)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromSession(s))
}

// @Summary Create payment intent
// @Description Opens a checkout for a pricing tier and returns the client secret
// @Tags payment
// @Accept json
// @Produce json
// @Param request body reqdto.CreatePaymentIntentRequest true "Tier to purchase"
// @Success 200 {object} resdto.PaymentIntentResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 429 {object} httperr.Response
// @Failure 500 {object} httperr.Response
// @Router /api/payment-intent [post]
func (h *SessionHandler) CreatePaymentIntent(c *gin.Context) {
	var req reqdto.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeInvalidTier, "Invalid pricing tier")
		return
	}

	id, _ := middleware.GetSessionID(c)
	checkout, err := h.quota.OpenPendingPayment(c.Request.Context(), id, req.Tier)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.PaymentIntentResponse{ClientSecret: checkout.ClientSecret})
}

// @Summary Confirm payment
// @Description Verifies a succeeded payment intent and activates the purchased tier
// @Tags payment
// @Accept json
// @Produce json
// @Param request body reqdto.ConfirmPaymentRequest true "Payment intent to confirm"
// @Success 200 {object} resdto.SessionResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 500 {object} httperr.Response
// @Router /api/confirm-payment [post]
func (h *SessionHandler) ConfirmPayment(c *gin.Context) {
	var req reqdto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeBadRequest, "Payment intent ID required")
		return
	}

	id, _ := middleware.GetSessionID(c)
	s, err := h.quota.ConfirmPayment(c.Request.Context(), id, req.PaymentIntentID)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromSession(s))
}

// @Summary List pricing tiers
// @Tags payment
// @Produce json
// @Success 200 {object} resdto.PricingResponse
// @Router /api/pricing [get]
func (h *SessionHandler) GetPricing(c *gin.Context) {
	c.JSON(http.StatusOK, resdto.FromPlans(h.quota.Pricing(), h.currency))
}
