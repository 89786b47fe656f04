package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
)

// InMemorySetupRepository keeps setups keyed by id, mirroring the Postgres
// upsert contract. Used when DATABASE_URL is unset and in tests.
type InMemorySetupRepository struct {
	mu     sync.RWMutex
	setups map[string]domain.Setup
}

func NewInMemorySetupRepository() *InMemorySetupRepository {
	return &InMemorySetupRepository{
		setups: make(map[string]domain.Setup),
	}
}

func (r *InMemorySetupRepository) UpsertSetups(ctx context.Context, setups []domain.Setup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range setups {
		if existing, ok := r.setups[s.ID]; ok {
			// Identity fields stay stable across recomputes.
			s.CreatedAt = existing.CreatedAt
			s.Symbol = existing.Symbol
		}
		r.setups[s.ID] = s
	}
	return nil
}

func (r *InMemorySetupRepository) GetSetups(ctx context.Context, symbol string, limit int) ([]domain.Setup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Setup
	for _, s := range r.setups {
		if s.Symbol == symbol {
			out = append(out, s)
		}
	}
	sortByScore(out)
	return clip(out, limit), nil
}

func (r *InMemorySetupRepository) GetTopSetups(ctx context.Context, limit int) ([]domain.Setup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Setup, 0, len(r.setups))
	for _, s := range r.setups {
		out = append(out, s)
	}
	sortByScore(out)
	return clip(out, limit), nil
}

func sortByScore(setups []domain.Setup) {
	sort.Slice(setups, func(i, j int) bool {
		if setups[i].Score != setups[j].Score {
			return setups[i].Score > setups[j].Score
		}
		return setups[i].CreatedAt > setups[j].CreatedAt
	})
}

func clip(setups []domain.Setup, limit int) []domain.Setup {
	if limit > 0 && len(setups) > limit {
		return setups[:limit]
	}
	return setups
}

// InMemoryEventRepository collects transition events, mostly for tests.
type InMemoryEventRepository struct {
	mu     sync.Mutex
	events []domain.SetupEvent
}

func NewInMemoryEventRepository() *InMemoryEventRepository {
	return &InMemoryEventRepository{}
}

func (r *InMemoryEventRepository) RecordEvents(ctx context.Context, events []domain.SetupEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *InMemoryEventRepository) Events() []domain.SetupEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.SetupEvent, len(r.events))
	copy(out, r.events)
	return out
}
