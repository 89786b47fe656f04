package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
)

type PostgresPairRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPairRepository(pool *pgxpool.Pool) *PostgresPairRepository {
	return &PostgresPairRepository{pool: pool}
}

// SeedPairs inserts the configured watchlist, keeping rows that already exist
// so a pair disabled by hand stays disabled across restarts.
func (r *PostgresPairRepository) SeedPairs(ctx context.Context, pairs []domain.Pair) error {
	for _, p := range pairs {
		_, err := r.pool.Exec(ctx,
			`insert into pairs (symbol, display_symbol, enabled)
			 values ($1, $2, $3)
			 on conflict (symbol) do nothing`,
			p.Symbol, p.DisplaySymbol, p.Enabled)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresPairRepository) GetEnabledPairs(ctx context.Context) ([]domain.Pair, error) {
	rows, err := r.pool.Query(ctx,
		`select symbol, display_symbol, enabled from pairs where enabled order by symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []domain.Pair
	for rows.Next() {
		var p domain.Pair
		if err := rows.Scan(&p.Symbol, &p.DisplaySymbol, &p.Enabled); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

type InMemoryPairRepository struct {
	mu    sync.RWMutex
	pairs map[string]domain.Pair
}

func NewInMemoryPairRepository() *InMemoryPairRepository {
	return &InMemoryPairRepository{pairs: make(map[string]domain.Pair)}
}

func (r *InMemoryPairRepository) SeedPairs(ctx context.Context, pairs []domain.Pair) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pairs {
		if _, ok := r.pairs[p.Symbol]; !ok {
			r.pairs[p.Symbol] = p
		}
	}
	return nil
}

func (r *InMemoryPairRepository) GetEnabledPairs(ctx context.Context) ([]domain.Pair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Pair
	for _, p := range r.pairs {
		if p.Enabled {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// DisplaySymbol strips the quote currency for UI purposes ("BTCUSDT" -> "BTC").
func DisplaySymbol(symbol string) string {
	for _, quote := range []string{"USDT", "USDC", "USD"} {
		if strings.HasSuffix(symbol, quote) && len(symbol) > len(quote) {
			return strings.TrimSuffix(symbol, quote)
		}
	}
	return symbol
}
