package session

import (
	"time"

	"github.com/avidcandu/ChatSnap/internal/pkg/patch"

	"github.com/google/uuid"
)

const DefaultScreenshotLimit = 3

// Defaults overrides the counters of a freshly created session. Nil fields keep
// the free-tier values.
type Defaults struct {
	ScreenshotsUsed *int
	ScreenshotLimit *int
	IsUnlimited     *bool
}

// Session is the per-client quota and payment state. It is a value type:
// copying it yields an independent snapshot.
type Session struct {
	id                     uuid.UUID
	createdAt              time.Time
	screenshotsUsed        int
	screenshotLimit        int
	isUnlimited            bool
	pendingPaymentIntentID string
	pendingTier            Tier
}

func NewSession(id uuid.UUID, now time.Time, d *Defaults) (*Session, error) {
	if d == nil {
		d = &Defaults{}
	}
	used := patch.Coalesce(d.ScreenshotsUsed, 0)
	limit := patch.Coalesce(d.ScreenshotLimit, DefaultScreenshotLimit)
	if used < 0 || limit < 0 {
		return nil, ErrNegativeCounters
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	return &Session{
		id:              id,
		createdAt:       now,
		screenshotsUsed: used,
		screenshotLimit: limit,
		isUnlimited:     patch.Coalesce(d.IsUnlimited, false),
	}, nil
}

// Reconstruct rebuilds a session from persisted columns without re-validating.
func Reconstruct(
	id uuid.UUID,
	createdAt time.Time,
	used, limit int,
	unlimited bool,
	pendingIntentID *string,
	pendingTier *string,
) *Session {
	s := &Session{
		id:              id,
		createdAt:       createdAt,
		screenshotsUsed: used,
		screenshotLimit: limit,
		isUnlimited:     unlimited,
	}
	if pendingIntentID != nil && pendingTier != nil {
		s.pendingPaymentIntentID = *pendingIntentID
		s.pendingTier = Tier(*pendingTier)
	}
	return s
}

func (s *Session) ID() uuid.UUID                  { return s.id }
func (s *Session) CreatedAt() time.Time           { return s.createdAt }
func (s *Session) ScreenshotsUsed() int           { return s.screenshotsUsed }
func (s *Session) ScreenshotLimit() int           { return s.screenshotLimit }
func (s *Session) IsUnlimited() bool              { return s.isUnlimited }
func (s *Session) PendingPaymentIntentID() string { return s.pendingPaymentIntentID }
func (s *Session) PendingTier() Tier              { return s.pendingTier }

func (s *Session) HasPending() bool {
	return s.pendingPaymentIntentID != ""
}

// CanUse reports ErrQuotaExceeded when another export would break the limit.
func (s *Session) CanUse() error {
	if !s.isUnlimited && s.screenshotsUsed >= s.screenshotLimit {
		return ErrQuotaExceeded
	}
	return nil
}

// ConsumeScreenshot checks the limit and counts one export. Callers must hold
// the per-session lock so the check and the increment cannot interleave.
func (s *Session) ConsumeScreenshot() error {
	if err := s.CanUse(); err != nil {
		return err
	}
	s.screenshotsUsed++
	return nil
}

// OpenPending locks tier in for intentID. expectedPrior is the pending intent id
// the caller saw when it decided to open a new payment ("" for none); if the
// stored value moved since, the write is rejected.
func (s *Session) OpenPending(expectedPrior, intentID string, tier Tier) error {
	if intentID == "" {
		return ErrEmptyIntentID
	}
	if !tier.IsValid() {
		return ErrInvalidTier
	}
	if s.pendingPaymentIntentID != expectedPrior {
		return ErrPendingChanged
	}
	s.pendingPaymentIntentID = intentID
	s.pendingTier = tier
	return nil
}

// Activate converts the pending tier into the session's quota. The allowance
// replaces the old limit and usage restarts from zero.
func (s *Session) Activate(intentID string) error {
	if intentID == "" || s.pendingPaymentIntentID != intentID {
		return ErrPendingMismatch
	}
	if s.pendingTier == "" {
		return ErrNoPendingTier
	}
	plan, ok := PlanFor(s.pendingTier)
	if !ok {
		return ErrInvalidTier
	}

	s.screenshotsUsed = 0
	if plan.IsUnlimited() {
		s.screenshotLimit = 0
		s.isUnlimited = true
	} else {
		s.screenshotLimit = plan.Allowance
		s.isUnlimited = false
	}
	s.clearPending()
	return nil
}

func (s *Session) clearPending() {
	s.pendingPaymentIntentID = ""
	s.pendingTier = ""
}
