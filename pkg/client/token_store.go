package client

import "sync"

// TokenStore keeps the access token of a client session
type TokenStore interface {
	GetToken() string
	SetToken(token string)
	ClearToken()
	IsAuthenticated() bool
}

// MemoryTokenStore is a TokenStore living only as long as the process
type MemoryTokenStore struct {
	mutex sync.RWMutex
	token string
}

// GetToken returns the stored token, empty when there is none
func (s *MemoryTokenStore) GetToken() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.token
}

// SetToken stores a token
func (s *MemoryTokenStore) SetToken(token string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = token
}

// ClearToken forgets the stored token
func (s *MemoryTokenStore) ClearToken() {
	s.SetToken("")
}

// IsAuthenticated reports whether a token is stored
func (s *MemoryTokenStore) IsAuthenticated() bool {
	return s.GetToken() != ""
}
