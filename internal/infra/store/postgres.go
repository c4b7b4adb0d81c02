package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avidcandu/ChatSnap/internal/domain/session"
	"github.com/avidcandu/ChatSnap/internal/infra"
	"github.com/avidcandu/ChatSnap/internal/infra/db"
	"github.com/avidcandu/ChatSnap/internal/pkg/clock"
	"github.com/avidcandu/ChatSnap/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionColumns = `id, created_at, screenshots_used, screenshot_limit, is_unlimited, pending_payment_intent_id, pending_tier`

const (
	selectSessionSQL = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	selectSessionForUpdateSQL = selectSessionSQL + ` FOR UPDATE`

	insertSessionSQL = `
INSERT INTO sessions (id, created_at, updated_at, screenshots_used, screenshot_limit, is_unlimited)
VALUES ($1, $2, $2, $3, $4, $5)
RETURNING ` + sessionColumns

	updateSessionSQL = `
UPDATE sessions
SET screenshots_used = $2,
    screenshot_limit = $3,
    is_unlimited = $4,
    pending_payment_intent_id = $5,
    pending_tier = $6,
    updated_at = $7
WHERE id = $1
RETURNING ` + sessionColumns

	deleteSessionsBeforeSQL = `DELETE FROM sessions WHERE created_at < $1`
)

// PostgresStore persists sessions in PostgreSQL. Mutations lock the row with
// SELECT ... FOR UPDATE so concurrent requests for one session serialize.
type PostgresStore struct {
	pool   *pgxpool.Pool
	clock  clock.Clock
	logger *slog.Logger
}

func NewPostgresStore(pool *pgxpool.Pool, clk clock.Clock, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, clock: clk, logger: logger}
}

func (p *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	s, err := scanSession(p.pool.QueryRow(ctx, selectSessionSQL, pgconv.UUIDToPgtype(id)))
	if err != nil {
		return nil, p.classify(err, "failed to get session")
	}
	return s, nil
}

func (p *PostgresStore) Create(ctx context.Context, defaults *session.Defaults) (*session.Session, error) {
	s, err := session.NewSession(uuid.New(), p.clock.Now(), defaults)
	if err != nil {
		return nil, infra.WrapRepoErr(p.logger, infra.KindConflict, "invalid session defaults", err)
	}

	created, err := scanSession(p.pool.QueryRow(ctx, insertSessionSQL,
		pgconv.UUIDToPgtype(s.ID()),
		pgconv.TimestamptzFromTime(s.CreatedAt()),
		s.ScreenshotsUsed(),
		s.ScreenshotLimit(),
		s.IsUnlimited(),
	))
	if err != nil {
		return nil, infra.WrapRepoErr(p.logger, infra.KindDBFailure, "failed to create session", err)
	}
	return created, nil
}

func (p *PostgresStore) IncrementUsage(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	return p.mutate(ctx, id, func(s *session.Session) error {
		return s.ConsumeScreenshot()
	})
}

func (p *PostgresStore) SetPendingPayment(ctx context.Context, id uuid.UUID, intentID string, tier session.Tier, expectedPrior string) (*session.Session, error) {
	return p.mutate(ctx, id, func(s *session.Session) error {
		return s.OpenPending(expectedPrior, intentID, tier)
	})
}

func (p *PostgresStore) Activate(ctx context.Context, id uuid.UUID, intentID string) (*session.Session, error) {
	return p.mutate(ctx, id, func(s *session.Session) error {
		return s.Activate(intentID)
	})
}

func (p *PostgresStore) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, deleteSessionsBeforeSQL, pgconv.TimestamptzFromTime(cutoff))
	if err != nil {
		return 0, infra.WrapRepoErr(p.logger, infra.KindDBFailure, "failed to delete expired sessions", err)
	}
	return tag.RowsAffected(), nil
}

// errRejected carries a domain rejection out of the transaction so it rolls
// back without being reported as a database failure.
type errRejected struct{ err error }

func (e errRejected) Error() string { return e.err.Error() }
func (e errRejected) Unwrap() error { return e.err }

func (p *PostgresStore) mutate(ctx context.Context, id uuid.UUID, fn func(*session.Session) error) (*session.Session, error) {
	updated, err := db.WithRetry(ctx, p.pool, func(tx pgx.Tx) (*session.Session, error) {
		current, err := scanSession(tx.QueryRow(ctx, selectSessionForUpdateSQL, pgconv.UUIDToPgtype(id)))
		if err != nil {
			return nil, err
		}
		if err := fn(current); err != nil {
			return nil, errRejected{err: err}
		}
		return scanSession(tx.QueryRow(ctx, updateSessionSQL,
			pgconv.UUIDToPgtype(id),
			current.ScreenshotsUsed(),
			current.ScreenshotLimit(),
			current.IsUnlimited(),
			pgconv.TextFromString(current.PendingPaymentIntentID()),
			pgconv.TextFromString(current.PendingTier().String()),
			pgconv.TimestamptzFromTime(p.clock.Now()),
		))
	})
	if err != nil {
		var rejected errRejected
		if errors.As(err, &rejected) {
			return nil, infra.WrapRepoErr(p.logger, infra.KindConflict, "session update rejected", rejected.err)
		}
		return nil, p.classify(err, "failed to update session")
	}
	return updated, nil
}

func (p *PostgresStore) classify(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return infra.WrapRepoErr(p.logger, infra.KindNotFound, "session not found", nil)
	}
	return infra.WrapRepoErr(p.logger, infra.KindDBFailure, msg, err)
}

func scanSession(row pgx.Row) (*session.Session, error) {
	var (
		id          pgtype.UUID
		createdAt   pgtype.Timestamptz
		used        int32
		limit       int32
		unlimited   bool
		pendingID   pgtype.Text
		pendingTier pgtype.Text
	)
	if err := row.Scan(&id, &createdAt, &used, &limit, &unlimited, &pendingID, &pendingTier); err != nil {
		return nil, err
	}
	return session.Reconstruct(
		pgconv.UUIDFromPgtype(id),
		pgconv.TimeFromPgtype(createdAt),
		int(used),
		int(limit),
		unlimited,
		pgconv.StringPtrFromPgtype(pendingID),
		pgconv.StringPtrFromPgtype(pendingTier),
	), nil
}
