package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/avidcandu/ChatSnap/internal/domain/payment"
	"github.com/avidcandu/ChatSnap/internal/domain/session"
	"github.com/avidcandu/ChatSnap/internal/infra"
	"github.com/avidcandu/ChatSnap/internal/pkg/config"
	"github.com/avidcandu/ChatSnap/internal/pkg/errs"
	"github.com/avidcandu/ChatSnap/internal/pkg/metrics"

	"github.com/google/uuid"
)

//go:generate mockgen -source=quota.go -destination=mock/mock_quota.go -package=mock

var (
	ErrSessionNotFound     = errs.New("session not found")
	ErrBadRequest          = errs.New("bad request")
	ErrInvalidTier         = errs.New("invalid pricing tier")
	ErrForbidden           = errs.New("forbidden")
	ErrQuotaExceeded       = errs.New("screenshot limit reached")
	ErrPaymentInProgress   = errs.New("payment already in progress")
	ErrAmountMismatch      = errs.New("payment amount mismatch")
	ErrPaymentNotCompleted = errs.New("payment not completed")
	ErrIntentNotFound      = errs.New("payment intent not found")
	ErrGateway             = errs.New("payment gateway error")
	ErrInternal            = errs.New("internal error")
)

var (
	ErrMissingIntentID = errs.Mark(errs.New("payment intent id required"), ErrBadRequest)
	ErrNoPendingTier   = errs.Mark(errs.New("no pending tier"), ErrBadRequest)
	// ErrIntentNotOwned means the confirmed intent is not the one this session opened.
	ErrIntentNotOwned = errs.Mark(errs.New("payment intent not associated with this session"), ErrForbidden)
	// ErrSessionMismatch means the gateway attributes the intent to another session.
	ErrSessionMismatch = errs.Mark(errs.New("payment session mismatch"), ErrForbidden)
)

// Checkout is what the client needs to finish a payment in the browser.
type Checkout struct {
	ClientSecret    string
	PaymentIntentID string
	Plan            session.Plan
}

type QuotaUseCase interface {
	// ResolveSession returns the session for id, creating a fresh free-tier one
	// when id is uuid.Nil or unknown. created reports whether a cookie must be
	// issued.
	ResolveSession(ctx context.Context, id uuid.UUID) (s *session.Session, created bool, err error)
	AttemptUsage(ctx context.Context, id uuid.UUID) (*session.Session, error)
	OpenPendingPayment(ctx context.Context, id uuid.UUID, tier string) (*Checkout, error)
	ConfirmPayment(ctx context.Context, id uuid.UUID, paymentIntentID string) (*session.Session, error)
	Pricing() []session.Plan
}

type quotaUseCaseImpl struct {
	store    SessionStore
	gateway  PaymentGateway
	currency string
	logger   *slog.Logger
}

func NewQuotaUseCase(store SessionStore, gateway PaymentGateway, cfg config.Config, logger *slog.Logger) QuotaUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &quotaUseCaseImpl{
		store:    store,
		gateway:  gateway,
		currency: strings.ToLower(cfg.Stripe.Currency),
		logger:   logger,
	}
}

func (q *quotaUseCaseImpl) ResolveSession(ctx context.Context, id uuid.UUID) (*session.Session, bool, error) {
	if id != uuid.Nil {
		s, err := q.store.Get(ctx, id)
		if err == nil {
			return s, false, nil
		}
		if !infra.IsKind(err, infra.KindNotFound) {
			return nil, false, errs.Mark(err, ErrInternal)
		}
		q.logger.DebugContext(ctx, "session cookie points at unknown session, issuing a new one",
			slog.String("session_id", id.String()))
	}

	s, err := q.store.Create(ctx, nil)
	if err != nil {
		return nil, false, errs.Mark(err, ErrInternal)
	}
	metrics.SessionsCreatedTotal.Inc()
	return s, true, nil
}

func (q *quotaUseCaseImpl) AttemptUsage(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	s, err := q.load(ctx, id)
	if err != nil {
		metrics.UsageAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if err := s.CanUse(); err != nil {
		metrics.UsageAttemptsTotal.WithLabelValues("quota_exceeded").Inc()
		return nil, ErrQuotaExceeded
	}

	// The store repeats the limit check under its lock; a concurrent request
	// may have taken the last slot since the read above.
	updated, err := q.store.IncrementUsage(ctx, id)
	if err != nil {
		switch {
		case errs.Is(err, session.ErrQuotaExceeded):
			metrics.UsageAttemptsTotal.WithLabelValues("quota_exceeded").Inc()
			return nil, ErrQuotaExceeded
		case infra.IsKind(err, infra.KindNotFound):
			metrics.UsageAttemptsTotal.WithLabelValues("error").Inc()
			return nil, ErrSessionNotFound
		default:
			metrics.UsageAttemptsTotal.WithLabelValues("error").Inc()
			return nil, errs.Mark(err, ErrInternal)
		}
	}
	metrics.UsageAttemptsTotal.WithLabelValues("allowed").Inc()
	return updated, nil
}

func (q *quotaUseCaseImpl) OpenPendingPayment(ctx context.Context, id uuid.UUID, rawTier string) (*Checkout, error) {
	tier, err := session.NewTier(rawTier)
	if err != nil {
		return nil, ErrInvalidTier
	}
	plan, ok := session.PlanFor(tier)
	if !ok {
		return nil, ErrInvalidTier
	}

	checkout, outcome, err := q.openPendingPayment(ctx, id, plan)
	metrics.CheckoutsTotal.WithLabelValues(tier.String(), outcome).Inc()
	return checkout, err
}

func (q *quotaUseCaseImpl) openPendingPayment(ctx context.Context, id uuid.UUID, plan session.Plan) (*Checkout, string, error) {
	s, err := q.load(ctx, id)
	if err != nil {
		return nil, "error", err
	}

	prior := s.PendingPaymentIntentID()
	outcome := "created"
	if prior != "" {
		intent, err := q.gateway.RetrieveIntent(ctx, prior)
		switch {
		case err == nil && intent.Status.InProgress():
			return nil, "in_progress", ErrPaymentInProgress
		case err == nil:
			outcome = "superseded"
		case errs.Is(err, payment.ErrIntentNotFound):
			// The gateway forgot the old intent; it can no longer be paid.
			outcome = "superseded"
		default:
			return nil, "error", errs.Mark(err, ErrGateway)
		}
	}

	created, err := q.gateway.CreateIntent(ctx, payment.CreateIntentRequest{
		AmountMinorUnits: plan.AmountMinorUnits(),
		Currency:         q.currency,
		Metadata: map[string]string{
			payment.MetadataSessionID: id.String(),
			payment.MetadataTier:      plan.Tier.String(),
		},
	})
	if err != nil {
		return nil, "error", errs.Mark(err, ErrGateway)
	}

	if _, err := q.store.SetPendingPayment(ctx, id, created.ID, plan.Tier, prior); err != nil {
		q.cancelOrphan(ctx, created.ID)
		switch {
		case errs.Is(err, session.ErrPendingChanged):
			return nil, "in_progress", ErrPaymentInProgress
		case infra.IsKind(err, infra.KindNotFound):
			return nil, "error", ErrSessionNotFound
		default:
			return nil, "error", errs.Mark(err, ErrInternal)
		}
	}

	q.logger.InfoContext(ctx, "payment intent opened",
		slog.String("session_id", id.String()),
		slog.String("payment_intent_id", created.ID),
		slog.String("tier", plan.Tier.String()),
		slog.String("superseded", prior),
	)
	return &Checkout{
		ClientSecret:    created.ClientSecret,
		PaymentIntentID: created.ID,
		Plan:            plan,
	}, outcome, nil
}

// cancelOrphan releases an intent that lost the race to become the session's
// pending payment. Failure only leaves an unpaid intent at the gateway.
func (q *quotaUseCaseImpl) cancelOrphan(ctx context.Context, intentID string) {
	if err := q.gateway.CancelIntent(context.WithoutCancel(ctx), intentID); err != nil {
		q.logger.WarnContext(ctx, "failed to cancel orphaned payment intent",
			slog.String("payment_intent_id", intentID),
			slog.Any("error", err))
	}
}

func (q *quotaUseCaseImpl) ConfirmPayment(ctx context.Context, id uuid.UUID, paymentIntentID string) (*session.Session, error) {
	s, outcome, err := q.confirmPayment(ctx, id, strings.TrimSpace(paymentIntentID))
	metrics.ConfirmationsTotal.WithLabelValues(outcome).Inc()
	return s, err
}

func (q *quotaUseCaseImpl) confirmPayment(ctx context.Context, id uuid.UUID, intentID string) (*session.Session, string, error) {
	if id == uuid.Nil {
		return nil, "rejected", ErrSessionNotFound
	}
	if intentID == "" {
		return nil, "rejected", ErrMissingIntentID
	}

	s, err := q.load(ctx, id)
	if err != nil {
		return nil, "error", err
	}
	if s.PendingPaymentIntentID() != intentID {
		return nil, "rejected", ErrIntentNotOwned
	}
	if s.PendingTier() == "" {
		return nil, "rejected", ErrNoPendingTier
	}

	intent, err := q.gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		if errs.Is(err, payment.ErrIntentNotFound) {
			return nil, "rejected", errs.Mark(err, ErrIntentNotFound)
		}
		return nil, "error", errs.Mark(err, ErrGateway)
	}
	if !intent.Status.Succeeded() {
		return nil, "not_completed", ErrPaymentNotCompleted
	}
	if intent.SessionID() != id.String() {
		q.logger.WarnContext(ctx, "payment intent belongs to another session",
			slog.String("session_id", id.String()),
			slog.String("payment_intent_id", intentID))
		return nil, "rejected", ErrSessionMismatch
	}

	plan, ok := session.PlanFor(s.PendingTier())
	if !ok {
		return nil, "rejected", ErrInvalidTier
	}
	if intent.AmountMinorUnits != plan.AmountMinorUnits() ||
		(intent.Currency != "" && !strings.EqualFold(intent.Currency, q.currency)) {
		q.logger.WarnContext(ctx, "payment amount does not match pending tier",
			slog.String("payment_intent_id", intentID),
			slog.Int64("paid", intent.AmountMinorUnits),
			slog.Int64("expected", plan.AmountMinorUnits()),
			slog.String("currency", intent.Currency))
		return nil, "rejected", ErrAmountMismatch
	}

	updated, err := q.store.Activate(ctx, id, intentID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, "error", ErrSessionNotFound
		}
		// The pending slot moved between the read and the write. The caller
		// may retry once the other request settles.
		q.logger.ErrorContext(ctx, "failed to activate plan",
			slog.String("session_id", id.String()),
			slog.String("payment_intent_id", intentID),
			slog.Any("error", err))
		return nil, "error", errs.Mark(err, ErrInternal)
	}

	q.logger.InfoContext(ctx, "plan activated",
		slog.String("session_id", id.String()),
		slog.String("tier", plan.Tier.String()))
	return updated, "activated", nil
}

func (q *quotaUseCaseImpl) Pricing() []session.Plan {
	return session.Plans()
}

func (q *quotaUseCaseImpl) load(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	if id == uuid.Nil {
		return nil, ErrSessionNotFound
	}
	s, err := q.store.Get(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, errs.Mark(err, ErrInternal)
	}
	return s, nil
}
