//go:build unit

package usecase_test

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avidcandu/ChatSnap/internal/domain/payment"
	"github.com/avidcandu/ChatSnap/internal/domain/session"
	"github.com/avidcandu/ChatSnap/internal/infra"
	"github.com/avidcandu/ChatSnap/internal/infra/store"
	"github.com/avidcandu/ChatSnap/internal/pkg/clock"
	"github.com/avidcandu/ChatSnap/internal/pkg/config"
	"github.com/avidcandu/ChatSnap/internal/pkg/errs"
	"github.com/avidcandu/ChatSnap/internal/pkg/patch"
	"github.com/avidcandu/ChatSnap/internal/usecase"
	usecasemock "github.com/avidcandu/ChatSnap/internal/usecase/mock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"
)

type QuotaUseCaseTestSuite struct {
	suite.Suite
	ctx         context.Context
	mockCtrl    *gomock.Controller
	mockGateway *usecasemock.MockPaymentGateway
	store       *store.MemoryStore
	uc          usecase.QuotaUseCase
}

func (s *QuotaUseCaseTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.mockCtrl = gomock.NewController(s.T())
	s.mockGateway = usecasemock.NewMockPaymentGateway(s.mockCtrl)
	s.store = store.NewMemoryStore(8, clock.NewMockClock(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)), nil)
	s.uc = usecase.NewQuotaUseCase(s.store, s.mockGateway, config.NewTestConfig(), slog.New(slog.DiscardHandler))
}

func (s *QuotaUseCaseTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestQuotaUseCaseSuite(t *testing.T) {
	suite.Run(t, new(QuotaUseCaseTestSuite))
}

func (s *QuotaUseCaseTestSuite) newSession(used, limit int) *session.Session {
	created, err := s.store.Create(s.ctx, &session.Defaults{
		ScreenshotsUsed: patch.Ptr(used),
		ScreenshotLimit: patch.Ptr(limit),
	})
	s.Require().NoError(err)
	return created
}

func (s *QuotaUseCaseTestSuite) withPending(id uuid.UUID, intentID string, tier session.Tier) {
	_, err := s.store.SetPendingPayment(s.ctx, id, intentID, tier, "")
	s.Require().NoError(err)
}

func (s *QuotaUseCaseTestSuite) current(id uuid.UUID) *session.Session {
	got, err := s.store.Get(s.ctx, id)
	s.Require().NoError(err)
	return got
}

func succeededIntent(id string, sessionID uuid.UUID, amount int64) *payment.Intent {
	return &payment.Intent{
		ID:               id,
		Status:           payment.StatusSucceeded,
		AmountMinorUnits: amount,
		Currency:         "usd",
		Metadata:         map[string]string{payment.MetadataSessionID: sessionID.String()},
	}
}

func (s *QuotaUseCaseTestSuite) TestResolveSession() {
	s.Run("no cookie creates a free session", func() {
		got, created, err := s.uc.ResolveSession(s.ctx, uuid.Nil)
		s.Require().NoError(err)
		s.True(created)
		s.Equal(0, got.ScreenshotsUsed())
		s.Equal(session.DefaultScreenshotLimit, got.ScreenshotLimit())
	})

	s.Run("known session is returned as is", func() {
		existing := s.newSession(2, 3)
		got, created, err := s.uc.ResolveSession(s.ctx, existing.ID())
		s.Require().NoError(err)
		s.False(created)
		s.Equal(existing.ID(), got.ID())
		s.Equal(2, got.ScreenshotsUsed())
	})

	s.Run("unknown session id gets a replacement", func() {
		stale := uuid.New()
		got, created, err := s.uc.ResolveSession(s.ctx, stale)
		s.Require().NoError(err)
		s.True(created)
		s.NotEqual(stale, got.ID())
	})
}

func (s *QuotaUseCaseTestSuite) TestAttemptUsage() {
	s.Run("free quota is exhausted after three exports", func() {
		sess := s.newSession(0, 3)
		for i := 1; i <= 3; i++ {
			got, err := s.uc.AttemptUsage(s.ctx, sess.ID())
			s.Require().NoError(err)
			s.Equal(i, got.ScreenshotsUsed())
		}

		_, err := s.uc.AttemptUsage(s.ctx, sess.ID())
		s.ErrorIs(err, usecase.ErrQuotaExceeded)
		s.Equal(3, s.current(sess.ID()).ScreenshotsUsed())
	})

	s.Run("unknown session", func() {
		_, err := s.uc.AttemptUsage(s.ctx, uuid.New())
		s.ErrorIs(err, usecase.ErrSessionNotFound)
	})

	concurrent := []struct {
		name      string
		used      int
		limit     int
		attempts  int
		wantAllow int32
	}{
		{name: "concurrent attempts never exceed the limit", used: 0, limit: 3, attempts: 30, wantAllow: 3},
		{name: "concurrent attempts only take the remaining slots", used: 1, limit: 3, attempts: 20, wantAllow: 2},
		{name: "fewer attempts than remaining slots all succeed", used: 1, limit: 10, attempts: 5, wantAllow: 5},
	}
	for _, tc := range concurrent {
		s.Run(tc.name, func() {
			sess := s.newSession(tc.used, tc.limit)
			var allowed atomic.Int32
			var g errgroup.Group
			for range tc.attempts {
				g.Go(func() error {
					_, err := s.uc.AttemptUsage(s.ctx, sess.ID())
					if err == nil {
						allowed.Add(1)
						return nil
					}
					if errs.Is(err, usecase.ErrQuotaExceeded) {
						return nil
					}
					return err
				})
			}
			s.Require().NoError(g.Wait())
			s.Equal(tc.wantAllow, allowed.Load())
			s.Equal(tc.used+int(tc.wantAllow), s.current(sess.ID()).ScreenshotsUsed())
		})
	}
}

func (s *QuotaUseCaseTestSuite) TestOpenPendingPayment() {
	s.Run("invalid tier is rejected before anything else", func() {
		sess := s.newSession(0, 3)
		_, err := s.uc.OpenPendingPayment(s.ctx, sess.ID(), "99")
		s.ErrorIs(err, usecase.ErrInvalidTier)
	})

	s.Run("fresh session opens a pro intent", func() {
		sess := s.newSession(1, 3)
		s.mockGateway.EXPECT().CreateIntent(gomock.Any(), payment.CreateIntentRequest{
			AmountMinorUnits: 699,
			Currency:         "usd",
			Metadata: map[string]string{
				payment.MetadataSessionID: sess.ID().String(),
				payment.MetadataTier:      "pro",
			},
		}).Return(&payment.CreatedIntent{ID: "pi_pro", ClientSecret: "pi_pro_secret"}, nil)

		checkout, err := s.uc.OpenPendingPayment(s.ctx, sess.ID(), "pro")
		s.Require().NoError(err)
		s.Equal("pi_pro_secret", checkout.ClientSecret)

		got := s.current(sess.ID())
		s.Equal("pi_pro", got.PendingPaymentIntentID())
		s.Equal(session.TierPro, got.PendingTier())
		s.Equal(1, got.ScreenshotsUsed())
	})

	s.Run("in-flight prior intent blocks a second checkout", func() {
		sess := s.newSession(0, 3)
		s.withPending(sess.ID(), "pi_open", session.TierStarter)
		s.mockGateway.EXPECT().RetrieveIntent(gomock.Any(), "pi_open").
			Return(&payment.Intent{ID: "pi_open", Status: payment.StatusRequiresAction}, nil)

		_, err := s.uc.OpenPendingPayment(s.ctx, sess.ID(), "unlimited")
		s.ErrorIs(err, usecase.ErrPaymentInProgress)
		s.Equal("pi_open", s.current(sess.ID()).PendingPaymentIntentID())
	})

	s.Run("abandoned prior intent is superseded", func() {
		sess := s.newSession(0, 3)
		s.withPending(sess.ID(), "pi_old", session.TierStarter)
		gomock.InOrder(
			s.mockGateway.EXPECT().RetrieveIntent(gomock.Any(), "pi_old").
				Return(&payment.Intent{ID: "pi_old", Status: payment.StatusCanceled}, nil),
			s.mockGateway.EXPECT().CreateIntent(gomock.Any(), gomock.Any()).
				Return(&payment.CreatedIntent{ID: "pi_new", ClientSecret: "sec"}, nil),
		)

		_, err := s.uc.OpenPendingPayment(s.ctx, sess.ID(), "unlimited")
		s.Require().NoError(err)
		got := s.current(sess.ID())
		s.Equal("pi_new", got.PendingPaymentIntentID())
		s.Equal(session.TierUnlimited, got.PendingTier())
	})

	s.Run("prior intent unknown to the gateway is superseded", func() {
		sess := s.newSession(0, 3)
		s.withPending(sess.ID(), "pi_gone", session.TierPro)
		s.mockGateway.EXPECT().RetrieveIntent(gomock.Any(), "pi_gone").
			Return(nil, errs.Mark(errs.New("no such intent"), payment.ErrIntentNotFound))
		s.mockGateway.EXPECT().CreateIntent(gomock.Any(), gomock.Any()).
			Return(&payment.CreatedIntent{ID: "pi_fresh", ClientSecret: "sec"}, nil)

		_, err := s.uc.OpenPendingPayment(s.ctx, sess.ID(), "starter")
		s.Require().NoError(err)
		s.Equal("pi_fresh", s.current(sess.ID()).PendingPaymentIntentID())
	})

	s.Run("gateway failure while checking prior intent", func() {
		sess := s.newSession(0, 3)
		s.withPending(sess.ID(), "pi_old", session.TierPro)
		s.mockGateway.EXPECT().RetrieveIntent(gomock.Any(), "pi_old").
			Return(nil, errs.Mark(context.DeadlineExceeded, payment.ErrGateway))

		_, err := s.uc.OpenPendingPayment(s.ctx, sess.ID(), "pro")
		s.True(errs.Is(err, usecase.ErrGateway))
		s.Equal("pi_old", s.current(sess.ID()).PendingPaymentIntentID())
	})

	s.Run("create failure leaves the session untouched", func() {
		sess := s.newSession(0, 3)
		s.mockGateway.EXPECT().CreateIntent(gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(errs.New("card network down"), payment.ErrGateway))

		_, err := s.uc.OpenPendingPayment(s.ctx, sess.ID(), "pro")
		s.True(errs.Is(err, usecase.ErrGateway))
		s.False(s.current(sess.ID()).HasPending())
	})

	s.Run("unknown session", func() {
		_, err := s.uc.OpenPendingPayment(s.ctx, uuid.New(), "pro")
		s.ErrorIs(err, usecase.ErrSessionNotFound)
	})
}

func (s *QuotaUseCaseTestSuite) TestOpenPendingPaymentLosesRace() {
	mockStore := usecasemock.NewMockSessionStore(s.mockCtrl)
	uc := usecase.NewQuotaUseCase(mockStore, s.mockGateway, config.NewTestConfig(), nil)

	sess, err := session.NewSession(uuid.New(), time.Now(), nil)
	s.Require().NoError(err)
	conflict := infra.WrapRepoErr(nil, infra.KindConflict, "session update rejected", session.ErrPendingChanged)

	mockStore.EXPECT().Get(gomock.Any(), sess.ID()).Return(sess, nil)
	s.mockGateway.EXPECT().CreateIntent(gomock.Any(), gomock.Any()).
		Return(&payment.CreatedIntent{ID: "pi_orphan", ClientSecret: "sec"}, nil)
	mockStore.EXPECT().SetPendingPayment(gomock.Any(), sess.ID(), "pi_orphan", session.TierPro, "").
		Return(nil, conflict)
	s.mockGateway.EXPECT().CancelIntent(gomock.Any(), "pi_orphan").Return(nil)

	_, err = uc.OpenPendingPayment(s.ctx, sess.ID(), "pro")
	s.ErrorIs(err, usecase.ErrPaymentInProgress)
}

func (s *QuotaUseCaseTestSuite) TestConfirmPayment() {
	s.Run("pro purchase replaces the free limit", func() {
		sess := s.newSession(2, 3)
		s.withPending(sess.ID(), "pi_pro", session.TierPro)
		s.mockGateway.EXPECT().RetrieveIntent(gomock.Any(), "pi_pro").
			Return(succeededIntent("pi_pro", sess.ID(), 699), nil)

		got, err := s.uc.ConfirmPayment(s.ctx, sess.ID(), "pi_pro")
		s.Require().NoError(err)
		s.Equal(0, got.ScreenshotsUsed())
		s.Equal(25, got.ScreenshotLimit())
		s.False(got.IsUnlimited())
		s.False(got.HasPending())
	})

	s.Run("unlimited purchase", func() {
		sess := s.newSession(3, 3)
		s.withPending(sess.ID(), "pi_unl", session.TierUnlimited)
		s.mockGateway.EXPECT().RetrieveIntent(gomock.Any(), "pi_unl").
			Return(succeededIntent("pi_unl", sess.ID(), 1599), nil)

		got, err := s.uc.ConfirmPayment(s.ctx, sess.ID(), "pi_unl")
		s.Require().NoError(err)
		s.True(got.IsUnlimited())
		s.Equal(0, got.ScreenshotLimit())

		_, err = s.uc.AttemptUsage(s.ctx, sess.ID())
		s.NoError(err)
	})

	s.Run("foreign intent id is forbidden without asking the gateway", func() {
		sess := s.newSession(1, 3)
		s.withPending(sess.ID(), "pi_mine", session.TierPro)

		_, err := s.uc.ConfirmPayment(s.ctx, sess.ID(), "pi_someone_else")
		s.True(errs.Is(err, usecase.ErrForbidden))
		got := s.current(sess.ID())
		s.Equal(3, got.ScreenshotLimit())
		s.Equal("pi_mine", got.PendingPaymentIntentID())
	})

	s.Run("nothing pending is forbidden", func() {
		sess := s.newSession(0, 3)
		_, err := s.uc.ConfirmPayment(s.ctx, sess.ID(), "pi_any")
		s.True(errs.Is(err, usecase.ErrForbidden))
	})

	s.Run("empty intent id is a bad request", func() {
		sess := s.newSession(0, 3)
		_, err := s.uc.ConfirmPayment(s.ctx, sess.ID(), "  ")
		s.True(errs.Is(err, usecase.ErrBadRequest))
	})

	s.Run("unfinished payment changes nothing", func() {
		sess := s.newSession(3, 3)
		s.withPending(sess.ID(), "pi_wait", session.TierStarter)
		s.mockGateway.EXPECT().RetrieveIntent(gomock.Any(), "pi_wait").
			Return(&payment.Intent{ID: "pi_wait", Status: payment.StatusProcessing, AmountMinorUnits: 399}, nil)

		_, err := s.uc.ConfirmPayment(s.ctx, sess.ID(), "pi_wait")
		s.ErrorIs(err, usecase.ErrPaymentNotCompleted)
		got := s.current(sess.ID())
		s.Equal(3, got.ScreenshotsUsed())
		s.Equal("pi_wait", got.PendingPaymentIntentID())
	})

	s.Run("intent paid for another session", func() {
		sess := s.newSession(0, 3)
		s.withPending(sess.ID(), "pi_x", session.TierPro)
		s.mockGateway.EXPECT().RetrieveIntent(gomock.Any(), "pi_x").
			Return(succeededIntent("pi_x", uuid.New(), 699), nil)

		_, err := s.uc.ConfirmPayment(s.ctx, sess.ID(), "pi_x")
		s.True(errs.Is(err, usecase.ErrForbidden))
		s.True(errs.Is(err, usecase.ErrSessionMismatch))
	})

	s.Run("amount below the tier price", func() {
		sess := s.newSession(0, 3)
		s.withPending(sess.ID(), "pi_cheap", session.TierPro)
		s.mockGateway.EXPECT().RetrieveIntent(gomock.Any(), "pi_cheap").
			Return(succeededIntent("pi_cheap", sess.ID(), 399), nil)

		_, err := s.uc.ConfirmPayment(s.ctx, sess.ID(), "pi_cheap")
		s.ErrorIs(err, usecase.ErrAmountMismatch)
		got := s.current(sess.ID())
		s.Equal(3, got.ScreenshotLimit())
		s.False(got.IsUnlimited())
		s.Equal("pi_cheap", got.PendingPaymentIntentID(), "session stays pending")
		s.Equal(session.TierPro, got.PendingTier())
	})

	s.Run("gateway timeout changes nothing", func() {
		sess := s.newSession(1, 3)
		s.withPending(sess.ID(), "pi_slow", session.TierPro)
		s.mockGateway.EXPECT().RetrieveIntent(gomock.Any(), "pi_slow").
			Return(nil, errs.Mark(context.DeadlineExceeded, payment.ErrGateway))

		_, err := s.uc.ConfirmPayment(s.ctx, sess.ID(), "pi_slow")
		s.True(errs.Is(err, usecase.ErrGateway))
		got := s.current(sess.ID())
		s.Equal(1, got.ScreenshotsUsed())
		s.Equal("pi_slow", got.PendingPaymentIntentID())
	})

	s.Run("intent missing at the gateway", func() {
		sess := s.newSession(0, 3)
		s.withPending(sess.ID(), "pi_gone", session.TierPro)
		s.mockGateway.EXPECT().RetrieveIntent(gomock.Any(), "pi_gone").
			Return(nil, errs.Mark(errs.New("resource_missing"), payment.ErrIntentNotFound))

		_, err := s.uc.ConfirmPayment(s.ctx, sess.ID(), "pi_gone")
		s.True(errs.Is(err, usecase.ErrIntentNotFound))
	})

	s.Run("second confirmation of the same intent is refused", func() {
		sess := s.newSession(0, 3)
		s.withPending(sess.ID(), "pi_once", session.TierStarter)
		s.mockGateway.EXPECT().RetrieveIntent(gomock.Any(), "pi_once").
			Return(succeededIntent("pi_once", sess.ID(), 399), nil)

		_, err := s.uc.ConfirmPayment(s.ctx, sess.ID(), "pi_once")
		s.Require().NoError(err)
		_, err = s.uc.ConfirmPayment(s.ctx, sess.ID(), "pi_once")
		s.True(errs.Is(err, usecase.ErrForbidden))
		s.Equal(15, s.current(sess.ID()).ScreenshotLimit())
	})
}

func (s *QuotaUseCaseTestSuite) TestStoreFailures() {
	mockStore := usecasemock.NewMockSessionStore(s.mockCtrl)
	uc := usecase.NewQuotaUseCase(mockStore, s.mockGateway, config.NewTestConfig(), nil)
	dbErr := infra.WrapRepoErr(nil, infra.KindDBFailure, "failed to get session", errs.New("connection reset"))
	id := uuid.New()

	s.Run("resolve", func() {
		mockStore.EXPECT().Get(gomock.Any(), id).Return(nil, dbErr)
		_, _, err := uc.ResolveSession(s.ctx, id)
		s.True(errs.Is(err, usecase.ErrInternal))
	})

	s.Run("usage", func() {
		mockStore.EXPECT().Get(gomock.Any(), id).Return(nil, dbErr)
		_, err := uc.AttemptUsage(s.ctx, id)
		s.True(errs.Is(err, usecase.ErrInternal))
	})

	s.Run("create", func() {
		mockStore.EXPECT().Create(gomock.Any(), gomock.Nil()).Return(nil, dbErr)
		_, _, err := uc.ResolveSession(s.ctx, uuid.Nil)
		s.True(errs.Is(err, usecase.ErrInternal))
	})
}

func (s *QuotaUseCaseTestSuite) TestPricing() {
	plans := s.uc.Pricing()
	s.Require().Len(plans, 3)
	s.Equal(session.TierStarter, plans[0].Tier)
	s.Equal(15, plans[0].Allowance)
	s.True(plans[0].Popular)
	s.False(plans[1].Popular)
	s.True(plans[2].IsUnlimited())
}
