//go:build unit || e2e

package store_test

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/avidcandu/ChatSnap/internal/domain/session"
	"github.com/avidcandu/ChatSnap/internal/infra"
	"github.com/avidcandu/ChatSnap/internal/pkg/clock"
	"github.com/avidcandu/ChatSnap/internal/pkg/errs"
	"github.com/avidcandu/ChatSnap/internal/pkg/patch"
	"github.com/avidcandu/ChatSnap/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// storeContractSuite holds the behavior every SessionStore implementation
// must share. Concrete suites embed it and supply newStore.
type storeContractSuite struct {
	suite.Suite
	clock    *clock.MockClock
	store    usecase.SessionStore
	newStore func(clk clock.Clock) usecase.SessionStore
}

func (s *storeContractSuite) SetupTest() {
	s.clock = clock.NewMockClock(baseTime)
	s.store = s.newStore(s.clock)
}

func (s *storeContractSuite) create(used, limit int) *session.Session {
	created, err := s.store.Create(context.Background(), &session.Defaults{
		ScreenshotsUsed: patch.Ptr(used),
		ScreenshotLimit: patch.Ptr(limit),
	})
	s.Require().NoError(err)
	return created
}

func (s *storeContractSuite) TestCreateAndGet() {
	ctx := context.Background()

	created, err := s.store.Create(ctx, nil)
	s.Require().NoError(err)
	s.NotEqual(uuid.Nil, created.ID())
	s.Equal(0, created.ScreenshotsUsed())
	s.Equal(session.DefaultScreenshotLimit, created.ScreenshotLimit())
	s.False(created.IsUnlimited())
	s.False(created.HasPending())

	got, err := s.store.Get(ctx, created.ID())
	s.Require().NoError(err)
	s.Equal(created.ID(), got.ID())
	s.True(baseTime.Equal(got.CreatedAt()))
}

func (s *storeContractSuite) TestUnknownSession() {
	ctx := context.Background()
	id := uuid.New()

	_, err := s.store.Get(ctx, id)
	s.True(infra.IsKind(err, infra.KindNotFound), "get: %v", err)

	_, err = s.store.IncrementUsage(ctx, id)
	s.True(infra.IsKind(err, infra.KindNotFound), "increment: %v", err)

	_, err = s.store.SetPendingPayment(ctx, id, "pi_1", session.TierPro, "")
	s.True(infra.IsKind(err, infra.KindNotFound), "set pending: %v", err)

	_, err = s.store.Activate(ctx, id, "pi_1")
	s.True(infra.IsKind(err, infra.KindNotFound), "activate: %v", err)
}

func (s *storeContractSuite) TestIncrementUsage() {
	ctx := context.Background()
	created := s.create(2, 3)

	updated, err := s.store.IncrementUsage(ctx, created.ID())
	s.Require().NoError(err)
	s.Equal(3, updated.ScreenshotsUsed())

	_, err = s.store.IncrementUsage(ctx, created.ID())
	s.True(infra.IsKind(err, infra.KindConflict))
	s.True(errs.Is(err, session.ErrQuotaExceeded))

	got, err := s.store.Get(ctx, created.ID())
	s.Require().NoError(err)
	s.Equal(3, got.ScreenshotsUsed(), "rejected increment must not persist")
}

func (s *storeContractSuite) TestConcurrentIncrementNeverExceedsLimit() {
	tests := []struct {
		name      string
		used      int
		limit     int
		attempts  int
		wantAllow int32
	}{
		{name: "fresh session", used: 0, limit: 3, attempts: 40, wantAllow: 3},
		{name: "partly used session", used: 1, limit: 3, attempts: 20, wantAllow: 2},
		{name: "exhausted session", used: 3, limit: 3, attempts: 10, wantAllow: 0},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			ctx := context.Background()
			created := s.create(tt.used, tt.limit)

			var allowed atomic.Int32
			var g errgroup.Group
			for range tt.attempts {
				g.Go(func() error {
					_, err := s.store.IncrementUsage(ctx, created.ID())
					switch {
					case err == nil:
						allowed.Add(1)
						return nil
					case errs.Is(err, session.ErrQuotaExceeded):
						return nil
					default:
						return err
					}
				})
			}
			s.Require().NoError(g.Wait())

			s.Equal(tt.wantAllow, allowed.Load())
			got, err := s.store.Get(ctx, created.ID())
			s.Require().NoError(err)
			s.Equal(tt.used+int(tt.wantAllow), got.ScreenshotsUsed())
		})
	}
}

func (s *storeContractSuite) TestSetPendingPaymentCompares() {
	ctx := context.Background()
	created := s.create(1, 3)

	opened, err := s.store.SetPendingPayment(ctx, created.ID(), "pi_first", session.TierStarter, "")
	s.Require().NoError(err)
	s.Equal("pi_first", opened.PendingPaymentIntentID())
	s.Equal(session.TierStarter, opened.PendingTier())

	_, err = s.store.SetPendingPayment(ctx, created.ID(), "pi_stale", session.TierPro, "")
	s.True(infra.IsKind(err, infra.KindConflict))
	s.True(errs.Is(err, session.ErrPendingChanged))

	replaced, err := s.store.SetPendingPayment(ctx, created.ID(), "pi_second", session.TierPro, "pi_first")
	s.Require().NoError(err)
	s.Equal("pi_second", replaced.PendingPaymentIntentID())
	s.Equal(session.TierPro, replaced.PendingTier())
	s.Equal(1, replaced.ScreenshotsUsed(), "opening a payment leaves usage alone")
}

func (s *storeContractSuite) TestConcurrentOpenHasSingleWinner() {
	ctx := context.Background()
	created := s.create(0, 3)

	var won atomic.Int32
	var g errgroup.Group
	for i := range 20 {
		g.Go(func() error {
			_, err := s.store.SetPendingPayment(ctx, created.ID(), uuid.NewString(), session.TierPro, "")
			switch {
			case err == nil:
				won.Add(1)
				return nil
			case errs.Is(err, session.ErrPendingChanged):
				return nil
			default:
				s.T().Logf("attempt %d: %v", i, err)
				return err
			}
		})
	}
	s.Require().NoError(g.Wait())
	s.Equal(int32(1), won.Load())
}

func (s *storeContractSuite) TestActivate() {
	ctx := context.Background()
	created := s.create(2, 3)

	_, err := s.store.SetPendingPayment(ctx, created.ID(), "pi_pro", session.TierPro, "")
	s.Require().NoError(err)

	_, err = s.store.Activate(ctx, created.ID(), "pi_other")
	s.True(errs.Is(err, session.ErrPendingMismatch))

	activated, err := s.store.Activate(ctx, created.ID(), "pi_pro")
	s.Require().NoError(err)
	s.Equal(0, activated.ScreenshotsUsed())
	s.Equal(25, activated.ScreenshotLimit())
	s.False(activated.IsUnlimited())
	s.False(activated.HasPending())

	got, err := s.store.Get(ctx, created.ID())
	s.Require().NoError(err)
	s.Equal(25, got.ScreenshotLimit())
	s.Empty(got.PendingPaymentIntentID())
	s.Empty(got.PendingTier())

	_, err = s.store.Activate(ctx, created.ID(), "pi_pro")
	s.True(errs.Is(err, session.ErrPendingMismatch), "second activation must fail")
}

func (s *storeContractSuite) TestUnlimitedActivation() {
	ctx := context.Background()
	created := s.create(3, 3)

	_, err := s.store.SetPendingPayment(ctx, created.ID(), "pi_unl", session.TierUnlimited, "")
	s.Require().NoError(err)
	activated, err := s.store.Activate(ctx, created.ID(), "pi_unl")
	s.Require().NoError(err)
	s.True(activated.IsUnlimited())
	s.Equal(0, activated.ScreenshotLimit())

	for range 10 {
		_, err := s.store.IncrementUsage(ctx, created.ID())
		s.Require().NoError(err)
	}
	got, err := s.store.Get(ctx, created.ID())
	s.Require().NoError(err)
	s.Equal(10, got.ScreenshotsUsed())
}

func (s *storeContractSuite) TestDeleteCreatedBefore() {
	ctx := context.Background()
	old := s.create(0, 3)
	s.clock.Add(2 * time.Hour)
	fresh := s.create(0, 3)

	deleted, err := s.store.DeleteCreatedBefore(ctx, baseTime.Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(int64(1), deleted)

	_, err = s.store.Get(ctx, old.ID())
	s.True(infra.IsKind(err, infra.KindNotFound))
	_, err = s.store.Get(ctx, fresh.ID())
	s.NoError(err)
}
