package response

import (
	"time"

	"github.com/avidcandu/ChatSnap/internal/domain/session"
	"github.com/avidcandu/ChatSnap/internal/pkg/patch"

	"github.com/google/uuid"
)

type SessionResponse struct {
	ID                     uuid.UUID `json:"id"`
	CreatedAt              time.Time `json:"createdAt"`
	ScreenshotsUsed        int       `json:"screenshotsUsed"`
	ScreenshotLimit        int       `json:"screenshotLimit"`
	IsUnlimited            bool      `json:"isUnlimited"`
	PendingPaymentIntentID *string   `json:"pendingPaymentIntentId"`
	PendingTier            *string   `json:"pendingTier"`
}

func FromSession(s *session.Session) SessionResponse {
	return SessionResponse{
		ID:                     s.ID(),
		CreatedAt:              s.CreatedAt(),
		ScreenshotsUsed:        s.ScreenshotsUsed(),
		ScreenshotLimit:        s.ScreenshotLimit(),
		IsUnlimited:            s.IsUnlimited(),
		PendingPaymentIntentID: patch.NilIfZero(s.PendingPaymentIntentID()),
		PendingTier:            patch.NilIfZero(s.PendingTier().String()),
	}
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

type PlanResponse struct {
	Tier        string  `json:"tier"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Screenshots int     `json:"screenshots"`
	Description string  `json:"description"`
	Popular     bool    `json:"popular"`
}

type PricingResponse struct {
	Currency string         `json:"currency"`
	Tiers    []PlanResponse `json:"tiers"`
}

func FromPlans(plans []session.Plan, currency string) PricingResponse {
	tiers := make([]PlanResponse, 0, len(plans))
	for _, p := range plans {
		tiers = append(tiers, PlanResponse{
			Tier:        p.Tier.String(),
			Name:        p.DisplayName,
			Price:       p.Price,
			Screenshots: p.Allowance,
			Description: p.Description,
			Popular:     p.Popular,
		})
	}
	return PricingResponse{Currency: currency, Tiers: tiers}
}
