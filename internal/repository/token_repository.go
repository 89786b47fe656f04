package repository

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DeviceToken represents a registered push-notification target.
type DeviceToken struct {
	Token     string
	Platform  string // "android" or "ios"
	CreatedAt int64
}

// TokenRepository manages device tokens for push notifications. Tokens live
// in memory for fast multicast fan-out; with a pool attached they are also
// persisted so registrations survive restarts.
type TokenRepository struct {
	tokens map[string]*DeviceToken
	mu     sync.RWMutex
	pool   *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	r := &TokenRepository{
		tokens: make(map[string]*DeviceToken),
		pool:   pool,
	}
	r.load()
	return r
}

func (r *TokenRepository) load() {
	if r.pool == nil {
		return
	}

	rows, err := r.pool.Query(context.Background(),
		`select token, platform, extract(epoch from created_at)::bigint from device_tokens`)
	if err != nil {
		log.Printf("Error loading device tokens: %v", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var t DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform, &t.CreatedAt); err != nil {
			continue
		}
		r.tokens[t.Token] = &t
	}
}

// RegisterToken adds or updates a device token.
func (r *TokenRepository) RegisterToken(token, platform string) {
	r.mu.Lock()
	r.tokens[token] = &DeviceToken{
		Token:     token,
		Platform:  platform,
		CreatedAt: time.Now().Unix(),
	}
	r.mu.Unlock()

	if r.pool != nil {
		_, err := r.pool.Exec(context.Background(), `
			insert into device_tokens(token, platform) values ($1, $2)
			on conflict (token) do update set platform = excluded.platform
		`, token, platform)
		if err != nil {
			log.Printf("Error persisting device token: %v", err)
		}
	}
}

// UnregisterToken removes a device token.
func (r *TokenRepository) UnregisterToken(token string) {
	r.mu.Lock()
	delete(r.tokens, token)
	r.mu.Unlock()

	if r.pool != nil {
		if _, err := r.pool.Exec(context.Background(),
			`delete from device_tokens where token = $1`, token); err != nil {
			log.Printf("Error deleting device token: %v", err)
		}
	}
}

// GetAllTokens returns all registered tokens.
func (r *TokenRepository) GetAllTokens() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tokens := make([]string, 0, len(r.tokens))
	for token := range r.tokens {
		tokens = append(tokens, token)
	}
	return tokens
}

// GetTokenCount returns the number of registered tokens.
func (r *TokenRepository) GetTokenCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tokens)
}
