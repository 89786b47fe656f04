package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the minimal tables needed by this app.
// This keeps setup simple (no external migration tool), but still gives persistence.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`create table if not exists pairs (
			symbol text primary key,
			display_symbol text not null,
			enabled boolean not null default true,
			created_at timestamptz not null default now()
		);`,
		`create table if not exists setups (
			id uuid primary key,
			symbol text not null,
			timeframe text not null default '15m',
			direction text not null,
			status text not null default 'WAITING',
			score int not null,
			created_at bigint not null,
			updated_at bigint not null,
			fvg_low double precision not null,
			fvg_high double precision not null,
			sweep_level double precision null,
			entry_price double precision not null,
			stop_loss double precision not null,
			tp1 double precision not null,
			tp2 double precision null,
			tp3 double precision null,
			rr_to_tp1 double precision not null,
			invalidation_text text not null default '',
			meta jsonb null
		);`,
		`create index if not exists setups_symbol_created_at_idx on setups(symbol, created_at desc);`,
		`create index if not exists setups_score_idx on setups(score desc);`,
		`create index if not exists setups_status_idx on setups(status);`,
		`create table if not exists setup_events (
			id bigserial primary key,
			setup_id uuid not null,
			symbol text not null,
			from_status text not null,
			to_status text not null,
			price double precision not null,
			at bigint not null
		);`,
		`create index if not exists setup_events_setup_id_idx on setup_events(setup_id, at desc);`,
		`create table if not exists device_tokens (
			token text primary key,
			platform text not null default 'android',
			created_at timestamptz not null default now()
		);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
