package session

import (
	"errors"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// TTLRepo is an in-memory session repository with automatic expiry.
type TTLRepo struct {
	cache *ttlcache.Cache[string, Token]
	ttl   time.Duration
}

var _ Repo = (*TTLRepo)(nil)

// NewTTLRepo creates a session repository whose entries expire after ttl.
func NewTTLRepo(ttl time.Duration) *TTLRepo {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, Token](ttl),
		ttlcache.WithDisableTouchOnHit[string, Token](),
	)
	go cache.Start()

	return &TTLRepo{cache: cache, ttl: ttl}
}

// Upsert creates or replaces the token state for a session.
func (r *TTLRepo) Upsert(sessionID string, token Token) error {
	if sessionID == "" {
		return errors.New("sessionID is required")
	}
	r.cache.Set(sessionID, token, r.ttl)
	return nil
}

// Get retrieves the token state for a session.
func (r *TTLRepo) Get(sessionID string) (Token, error) {
	if sessionID == "" {
		return Token{}, errors.New("sessionID is required")
	}
	item := r.cache.Get(sessionID)
	if item == nil {
		return Token{}, errors.New("session not found")
	}
	return item.Value(), nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (r *TTLRepo) Delete(sessionID string) error {
	if sessionID == "" {
		return errors.New("sessionID is required")
	}
	r.cache.Delete(sessionID)
	return nil
}

// Stop halts the background expiry loop.
func (r *TTLRepo) Stop() {
	r.cache.Stop()
}
