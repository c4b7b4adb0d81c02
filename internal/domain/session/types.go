package session

import (
	"strings"

	"github.com/avidcandu/ChatSnap/internal/pkg/errs"
)

var (
	ErrInvalidTier      = errs.New("invalid pricing tier")
	ErrQuotaExceeded    = errs.New("screenshot limit reached")
	ErrPendingMismatch  = errs.New("payment intent not associated with this session")
	ErrNoPendingTier    = errs.New("no pending tier found")
	ErrPendingChanged   = errs.New("pending payment changed concurrently")
	ErrEmptyIntentID    = errs.New("payment intent id is empty")
	ErrNegativeCounters = errs.New("screenshot counters cannot be negative")
)

type Tier string

const (
	TierStarter   Tier = "starter"
	TierPro       Tier = "pro"
	TierUnlimited Tier = "unlimited"
)

func NewTier(s string) (Tier, error) {
	t := Tier(strings.TrimSpace(s))
	if _, ok := plans[t]; !ok {
		return "", ErrInvalidTier
	}
	return t, nil
}

func (t Tier) String() string {
	return string(t)
}

func (t Tier) IsValid() bool {
	_, ok := plans[t]
	return ok
}
