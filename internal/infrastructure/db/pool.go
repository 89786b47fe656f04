package db

import (
	"context"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConns:          8,
		MinConns:          2,
		MaxConnLifetime:   30 * time.Minute,
		MaxConnIdleTime:   5 * time.Minute,
		HealthCheckPeriod: 30 * time.Second,
	}
}

func PoolConfigFromEnv() PoolConfig {
	cfg := DefaultPoolConfig()

	if n, ok := envInt32("DB_MAX_CONNS"); ok {
		cfg.MaxConns = n
	}
	if n, ok := envInt32("DB_MIN_CONNS"); ok {
		cfg.MinConns = n
	}
	if d, ok := envDuration("DB_MAX_CONN_LIFETIME"); ok {
		cfg.MaxConnLifetime = d
	}
	if d, ok := envDuration("DB_MAX_CONN_IDLE_TIME"); ok {
		cfg.MaxConnIdleTime = d
	}
	if d, ok := envDuration("DB_HEALTHCHECK_PERIOD"); ok {
		cfg.HealthCheckPeriod = d
	}

	if cfg.MaxConns < 1 {
		cfg.MaxConns = 1
	}
	if cfg.MinConns < 0 {
		cfg.MinConns = 0
	}
	if cfg.MinConns > cfg.MaxConns {
		cfg.MinConns = cfg.MaxConns
	}

	return cfg
}

func envInt32(key string) (int32, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

func envDuration(key string) (time.Duration, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}

// ensureSSLMode defaults sslmode=require; hosted Postgres rejects plain
// connections. Set an explicit sslmode in DATABASE_URL to override.
func ensureSSLMode(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		// pgx will surface a connection error for the raw string.
		return dbURL
	}

	q := u.Query()
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "require")
		u.RawQuery = q.Encode()
	}

	return strings.TrimSpace(u.String())
}

func NewPool(ctx context.Context, databaseURL string, cfg PoolConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(ensureSSLMode(databaseURL))
	if err != nil {
		return nil, err
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod

	return pgxpool.NewWithConfig(ctx, poolCfg)
}
