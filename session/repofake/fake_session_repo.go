package repofake

import (
	"errors"
	"sync"

	"github.com/gradeflow/session-gateway/session"
)

// FakeSessionRepo is a test double for session.Repo.
type FakeSessionRepo struct {
	mu     sync.RWMutex
	tokens map[string]session.Token
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{tokens: make(map[string]session.Token)}
}

func (r *FakeSessionRepo) Upsert(sessionID string, token session.Token) error {
	if sessionID == "" {
		return errors.New("sessionID is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[sessionID] = token
	return nil
}

func (r *FakeSessionRepo) Get(sessionID string) (session.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	token, ok := r.tokens[sessionID]
	if !ok {
		return session.Token{}, errors.New("session not found")
	}
	return token, nil
}

func (r *FakeSessionRepo) Delete(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, sessionID)
	return nil
}

// Len reports the number of stored sessions.
func (r *FakeSessionRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}
