package refreshclient

import "sync"

// TokenStore is the session-state service the wrapper reads and mutates.
// An explicit store makes concurrent writers visible and testable.
type TokenStore interface {
	AccessToken() string
	ClassroomID() string
	SetTokens(accessToken, classroomID string)
	Clear()
}

// MemoryTokenStore is a mutex-guarded in-process TokenStore.
type MemoryTokenStore struct {
	mu          sync.RWMutex
	accessToken string
	classroomID string
}

var _ TokenStore = (*MemoryTokenStore)(nil)

func NewMemoryTokenStore(accessToken, classroomID string) *MemoryTokenStore {
	return &MemoryTokenStore{accessToken: accessToken, classroomID: classroomID}
}

func (s *MemoryTokenStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *MemoryTokenStore) ClassroomID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.classroomID
}

func (s *MemoryTokenStore) SetTokens(accessToken, classroomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.classroomID = classroomID
}

func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.classroomID = ""
}
