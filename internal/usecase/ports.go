package usecase

import (
	"context"
	"time"

	"github.com/avidcandu/ChatSnap/internal/domain/payment"
	"github.com/avidcandu/ChatSnap/internal/domain/session"

	"github.com/google/uuid"
)

//go:generate mockgen -source=ports.go -destination=mock/mock_ports.go -package=mock

// SessionStore persists sessions. Each mutating call runs as one atomic unit
// per session id. Unknown ids are reported as infra.KindNotFound; domain rule
// violations detected under the lock come back as infra.KindConflict wrapping
// the session package error.
type SessionStore interface {
	Get(ctx context.Context, id uuid.UUID) (*session.Session, error)
	Create(ctx context.Context, defaults *session.Defaults) (*session.Session, error)
	IncrementUsage(ctx context.Context, id uuid.UUID) (*session.Session, error)
	SetPendingPayment(ctx context.Context, id uuid.UUID, intentID string, tier session.Tier, expectedPrior string) (*session.Session, error)
	Activate(ctx context.Context, id uuid.UUID, intentID string) (*session.Session, error)
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PaymentGateway is the capability surface of the external payment processor.
// RetrieveIntent reports payment.ErrIntentNotFound for unknown or expired ids.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, req payment.CreateIntentRequest) (*payment.CreatedIntent, error)
	RetrieveIntent(ctx context.Context, id string) (*payment.Intent, error)
	CancelIntent(ctx context.Context, id string) error
}
