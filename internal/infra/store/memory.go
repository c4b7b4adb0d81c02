package store

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/avidcandu/ChatSnap/internal/domain/session"
	"github.com/avidcandu/ChatSnap/internal/infra"
	"github.com/avidcandu/ChatSnap/internal/pkg/clock"

	"github.com/google/uuid"
)

type shard struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]session.Session
}

// MemoryStore keeps sessions in process memory. Sessions are spread over
// independently locked shards so unrelated sessions never contend, while every
// mutation of one session runs under its shard's lock.
type MemoryStore struct {
	shards []*shard
	clock  clock.Clock
	logger *slog.Logger
}

func NewMemoryStore(shards int, clk clock.Clock, logger *slog.Logger) *MemoryStore {
	if shards <= 0 {
		shards = 1
	}
	m := &MemoryStore{
		shards: make([]*shard, shards),
		clock:  clk,
		logger: logger,
	}
	for i := range m.shards {
		m.shards[i] = &shard{sessions: make(map[uuid.UUID]session.Session)}
	}
	return m
}

func (m *MemoryStore) shardFor(id uuid.UUID) *shard {
	h := fnv.New32a()
	_, _ = h.Write(id[:])
	return m.shards[h.Sum32()%uint32(len(m.shards))]
}

func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (*session.Session, error) {
	sh := m.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	s, ok := sh.sessions[id]
	if !ok {
		return nil, infra.WrapRepoErr(m.logger, infra.KindNotFound, "session not found", nil)
	}
	return &s, nil
}

func (m *MemoryStore) Create(_ context.Context, defaults *session.Defaults) (*session.Session, error) {
	for {
		s, err := session.NewSession(uuid.New(), m.clock.Now(), defaults)
		if err != nil {
			return nil, infra.WrapRepoErr(m.logger, infra.KindConflict, "invalid session defaults", err)
		}

		sh := m.shardFor(s.ID())
		sh.mu.Lock()
		if _, taken := sh.sessions[s.ID()]; taken {
			sh.mu.Unlock()
			continue
		}
		sh.sessions[s.ID()] = *s
		sh.mu.Unlock()
		return s, nil
	}
}

func (m *MemoryStore) IncrementUsage(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	return m.mutate(ctx, id, func(s *session.Session) error {
		return s.ConsumeScreenshot()
	})
}

func (m *MemoryStore) SetPendingPayment(ctx context.Context, id uuid.UUID, intentID string, tier session.Tier, expectedPrior string) (*session.Session, error) {
	return m.mutate(ctx, id, func(s *session.Session) error {
		return s.OpenPending(expectedPrior, intentID, tier)
	})
}

func (m *MemoryStore) Activate(ctx context.Context, id uuid.UUID, intentID string) (*session.Session, error) {
	return m.mutate(ctx, id, func(s *session.Session) error {
		return s.Activate(intentID)
	})
}

func (m *MemoryStore) DeleteCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	for _, sh := range m.shards {
		sh.mu.Lock()
		for id, s := range sh.sessions {
			if s.CreatedAt().Before(cutoff) {
				delete(sh.sessions, id)
				deleted++
			}
		}
		sh.mu.Unlock()
	}
	return deleted, nil
}

// Len reports the number of stored sessions.
func (m *MemoryStore) Len() int {
	n := 0
	for _, sh := range m.shards {
		sh.mu.Lock()
		n += len(sh.sessions)
		sh.mu.Unlock()
	}
	return n
}

// mutate applies fn to a copy of the stored session and commits the copy only
// when fn succeeds, so a rejected change leaves no trace.
func (m *MemoryStore) mutate(_ context.Context, id uuid.UUID, fn func(*session.Session) error) (*session.Session, error) {
	sh := m.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	current, ok := sh.sessions[id]
	if !ok {
		return nil, infra.WrapRepoErr(m.logger, infra.KindNotFound, "session not found", nil)
	}
	next := current
	if err := fn(&next); err != nil {
		return nil, infra.WrapRepoErr(m.logger, infra.KindConflict, "session update rejected", err)
	}
	sh.sessions[id] = next
	return &next, nil
}
