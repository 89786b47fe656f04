package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
)

// PostgresEventRepository appends status-transition snapshots. The pipeline
// re-derives status from scratch each run, so this log is the only place a
// consumer can reconstruct when a setup triggered or hit its stop.
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

func (r *PostgresEventRepository) RecordEvents(ctx context.Context, events []domain.SetupEvent) error {
	for _, e := range events {
		_, err := r.pool.Exec(ctx, `
			insert into setup_events(setup_id, symbol, from_status, to_status, price, at)
			values ($1,$2,$3,$4,$5,$6)
		`,
			e.SetupID,
			e.Symbol,
			e.FromStatus,
			e.ToStatus,
			e.Price,
			e.At,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
