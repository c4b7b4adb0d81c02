package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/avidcandu/ChatSnap/internal/domain/payment"
	"github.com/avidcandu/ChatSnap/internal/pkg/config"
	"github.com/avidcandu/ChatSnap/internal/pkg/errs"
	"github.com/avidcandu/ChatSnap/internal/pkg/metrics"

	stripe "github.com/stripe/stripe-go/v84"
)

// StripeGateway talks to Stripe's PaymentIntents API. Every call is bounded by
// the configured timeout so a slow processor cannot hold a request forever.
type StripeGateway struct {
	client  *stripe.Client
	timeout time.Duration
	logger  *slog.Logger
}

func NewStripeGateway(cfg config.StripeConfig, logger *slog.Logger, opts ...stripe.ClientOption) *StripeGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &StripeGateway{
		client:  stripe.NewClient(cfg.SecretKey, opts...),
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, req payment.CreateIntentRequest) (*payment.CreatedIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(req.AmountMinorUnits),
		Currency: stripe.String(req.Currency),
		Metadata: req.Metadata,
	}

	start := time.Now()
	pi, err := g.client.V1PaymentIntents.Create(ctx, params)
	g.observe("create", start, err)
	if err != nil {
		return nil, g.mapError(ctx, "create", "", err)
	}

	return &payment.CreatedIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) RetrieveIntent(ctx context.Context, id string) (*payment.Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	pi, err := g.client.V1PaymentIntents.Retrieve(ctx, id, nil)
	g.observe("retrieve", start, err)
	if err != nil {
		return nil, g.mapError(ctx, "retrieve", id, err)
	}

	return &payment.Intent{
		ID:               pi.ID,
		Status:           payment.IntentStatus(pi.Status),
		AmountMinorUnits: pi.Amount,
		Currency:         string(pi.Currency),
		Metadata:         pi.Metadata,
	}, nil
}

func (g *StripeGateway) CancelIntent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	_, err := g.client.V1PaymentIntents.Cancel(ctx, id, nil)
	g.observe("cancel", start, err)
	if err != nil {
		return g.mapError(ctx, "cancel", id, err)
	}
	return nil
}

func (g *StripeGateway) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.GatewayDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}

// mapError turns Stripe failures into payment errors. Missing intents become
// payment.ErrIntentNotFound; everything else, timeouts included, is ErrGateway.
func (g *StripeGateway) mapError(ctx context.Context, op, id string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) &&
		(stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == http.StatusNotFound) {
		return errs.Mark(errs.Wrapf(err, "payment intent %s", id), payment.ErrIntentNotFound)
	}

	g.logger.WarnContext(ctx, "stripe request failed",
		slog.String("operation", op),
		slog.String("payment_intent_id", id),
		slog.Any("error", err))
	return errs.Mark(errs.Wrapf(err, "stripe %s", op), payment.ErrGateway)
}
