package flowstate

import (
	"errors"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// TTLRepo stores flow state in memory with automatic expiry, so abandoned
// sign-in attempts clean themselves up.
type TTLRepo struct {
	cache *ttlcache.Cache[string, *State]
	ttl   time.Duration
}

var _ Repo = (*TTLRepo)(nil)

// NewTTLRepo creates a flow-state repository whose entries expire after ttl.
func NewTTLRepo(ttl time.Duration) *TTLRepo {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, *State](ttl),
		ttlcache.WithDisableTouchOnHit[string, *State](),
	)
	go cache.Start()

	return &TTLRepo{cache: cache, ttl: ttl}
}

// Upsert stores or updates flow state under the state parameter.
func (r *TTLRepo) Upsert(state string, flowState *State) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if flowState == nil {
		return errors.New("flowState cannot be nil")
	}
	copied := *flowState
	r.cache.Set(state, &copied, r.ttl)
	return nil
}

// Get retrieves flow state by state parameter.
func (r *TTLRepo) Get(state string) (*State, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}
	item := r.cache.Get(state)
	if item == nil {
		return nil, errors.New("state not found")
	}
	copied := *item.Value()
	return &copied, nil
}

// Delete removes flow state after the callback consumed it.
func (r *TTLRepo) Delete(state string) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	r.cache.Delete(state)
	return nil
}

// Stop halts the background expiry loop.
func (r *TTLRepo) Stop() {
	r.cache.Stop()
}
