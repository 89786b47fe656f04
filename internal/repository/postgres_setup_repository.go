package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
)

// PostgresSetupRepository stores pipeline output in Postgres. Writes are
// idempotent: the setup id is derived from the gap that produced it, so a
// recompute hits the same row and overwrites only the mutable columns.
// Identity columns (id, symbol, timeframe, direction, created_at, fvg
// bounds) are never touched by the conflict branch.
type PostgresSetupRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSetupRepository(pool *pgxpool.Pool) *PostgresSetupRepository {
	return &PostgresSetupRepository{pool: pool}
}

const setupColumns = `
	id, symbol, timeframe, direction, status, score,
	created_at, updated_at, fvg_low, fvg_high, sweep_level,
	entry_price, stop_loss, tp1, tp2, tp3,
	rr_to_tp1, invalidation_text, meta`

func (r *PostgresSetupRepository) UpsertSetups(ctx context.Context, setups []domain.Setup) error {
	for _, s := range setups {
		if s.ID == "" {
			return errors.New("setup without id")
		}

		_, err := r.pool.Exec(ctx, `
			insert into setups(`+setupColumns+`)
			values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
			on conflict (id) do update set
				status=excluded.status,
				score=excluded.score,
				updated_at=excluded.updated_at,
				sweep_level=excluded.sweep_level,
				entry_price=excluded.entry_price,
				stop_loss=excluded.stop_loss,
				tp1=excluded.tp1,
				tp2=excluded.tp2,
				tp3=excluded.tp3,
				rr_to_tp1=excluded.rr_to_tp1,
				invalidation_text=excluded.invalidation_text,
				meta=excluded.meta
		`,
			s.ID,
			s.Symbol,
			s.Timeframe,
			s.Direction,
			s.Status,
			s.Score,
			s.CreatedAt,
			s.UpdatedAt,
			s.FvgLow,
			s.FvgHigh,
			s.SweepLevel,
			s.EntryPrice,
			s.StopLoss,
			s.TP1,
			s.TP2,
			s.TP3,
			s.RRToTP1,
			s.InvalidationText,
			s.Meta,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresSetupRepository) GetSetups(ctx context.Context, symbol string, limit int) ([]domain.Setup, error) {
	rows, err := r.pool.Query(ctx, `
		select `+setupColumns+`
		from setups
		where symbol = $1
		order by score desc, created_at desc
		limit $2
	`, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSetups(rows)
}

func (r *PostgresSetupRepository) GetTopSetups(ctx context.Context, limit int) ([]domain.Setup, error) {
	rows, err := r.pool.Query(ctx, `
		select `+setupColumns+`
		from setups
		order by score desc, created_at desc
		limit $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSetups(rows)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func collectSetups(rows interface {
	scanner
	Next() bool
}) ([]domain.Setup, error) {
	setups := make([]domain.Setup, 0)
	for rows.Next() {
		s, err := scanSetup(rows)
		if err != nil {
			return nil, err
		}
		setups = append(setups, *s)
	}
	return setups, nil
}

func scanSetup(s scanner) (*domain.Setup, error) {
	var out domain.Setup
	var sweepLevel, tp2, tp3 pgtype.Float8

	if err := s.Scan(
		&out.ID,
		&out.Symbol,
		&out.Timeframe,
		&out.Direction,
		&out.Status,
		&out.Score,
		&out.CreatedAt,
		&out.UpdatedAt,
		&out.FvgLow,
		&out.FvgHigh,
		&sweepLevel,
		&out.EntryPrice,
		&out.StopLoss,
		&out.TP1,
		&tp2,
		&tp3,
		&out.RRToTP1,
		&out.InvalidationText,
		&out.Meta,
	); err != nil {
		return nil, err
	}

	if sweepLevel.Valid {
		v := sweepLevel.Float64
		out.SweepLevel = &v
	}
	if tp2.Valid {
		v := tp2.Float64
		out.TP2 = &v
	}
	if tp3.Valid {
		v := tp3.Float64
		out.TP3 = &v
	}

	return &out, nil
}
