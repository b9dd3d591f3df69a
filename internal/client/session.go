package client

import "sync"

// Session holds the tokens of one signed-in user. It is passed to the
// client explicitly and updated in place when the client refreshes.
type Session struct {
	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

func NewSession(accessToken, refreshToken string) *Session {
	return &Session{accessToken: accessToken, refreshToken: refreshToken}
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// SetTokens replaces both tokens. Refresh tokens are single use so the pair
// always changes together.
func (s *Session) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
}

// Clear drops both tokens after the server refused to refresh them.
func (s *Session) Clear() {
	s.SetTokens("", "")
}
