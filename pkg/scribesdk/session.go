package scribesdk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Access tokens are treated as expired this long before the server would
// reject them.
const refreshBuffer = 30 * time.Second

// ErrSessionExpired is returned when the access token has expired and the
// session holds no refresh token.
var ErrSessionExpired = errors.New("scribesdk: access token expired and no refresh token available")

// Session is a signed in caller. Its methods refresh the access token
// transparently and are safe for concurrent use.
type Session struct {
	client *SDKClient

	mu      sync.RWMutex
	access  string
	refresh string
	renewAt time.Time
}

func newSession(client *SDKClient, tokens *TokenResponse) *Session {
	s := &Session{client: client}
	s.store(tokens)
	return s
}

// store must be called with mu held for writing, or before s is shared.
func (s *Session) store(tokens *TokenResponse) {
	s.access = tokens.AccessToken
	if tokens.RefreshToken != "" {
		s.refresh = tokens.RefreshToken
	}
	s.renewAt = time.Now().Add(time.Duration(tokens.ExpiresIn)*time.Second - refreshBuffer)
}

func (s *Session) current() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access, time.Now().Before(s.renewAt)
}

func (s *Session) getValidToken(ctx context.Context) (string, error) {
	if token, ok := s.current(); ok {
		return token, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if time.Now().Before(s.renewAt) {
		return s.access, nil
	}
	if s.refresh == "" {
		return "", ErrSessionExpired
	}

	auth, err := s.client.Refresh(ctx, s.refresh)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	s.store(&auth.TokenResponse)
	return s.access, nil
}

// AccessToken returns the current access token, expired or not.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}
