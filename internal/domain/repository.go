package domain

import (
	"context"
	"time"
)

// SetupRepository persists computed setups. Upsert must be keyed by Setup.ID:
// mutable fields (status, score, levels, updatedAt) overwrite, while id,
// symbol and createdAt stay stable.
type SetupRepository interface {
	UpsertSetups(ctx context.Context, setups []Setup) error
	GetSetups(ctx context.Context, symbol string, limit int) ([]Setup, error)
	GetTopSetups(ctx context.Context, limit int) ([]Setup, error)
}

// PairRepository holds the instruments the screener watches.
type PairRepository interface {
	SeedPairs(ctx context.Context, pairs []Pair) error
	GetEnabledPairs(ctx context.Context) ([]Pair, error)
}

// EventRepository records status-transition snapshots per run.
type EventRepository interface {
	RecordEvents(ctx context.Context, events []SetupEvent) error
}

// CacheStore is a get/set/ttl store injected into collaborators that need
// caching. The detection core never touches it.
type CacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
