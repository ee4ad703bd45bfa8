package memory

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/domain"
)

type tokenEntry struct {
	email     string
	expiresAt time.Time
}

// TokenStore is the in-memory fallback/test double. Expiry is checked lazily
// on Resolve so expired and never-issued tokens look the same.
type TokenStore struct {
	mu sync.RWMutex
	// purpose|token -> entry
	data map[string]tokenEntry

	now func() time.Time
}

func NewTokenStore() *TokenStore {
	return &TokenStore{
		data: make(map[string]tokenEntry),
		now:  time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (s *TokenStore) WithClock(now func() time.Time) *TokenStore {
	if now != nil {
		s.now = now
	}
	return s
}

func key(purpose account.TokenPurpose, token string) string { return string(purpose) + "|" + token }

func (s *TokenStore) Issue(ctx context.Context, purpose account.TokenPurpose, email string, ttl time.Duration) (string, error) {
	if email == "" {
		return "", domain.ErrMissingField("email")
	}
	if ttl <= 0 {
		return "", domain.ErrMissingField("ttl")
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", domain.ErrRandomFailed(err)
	}
	token := base64.RawURLEncoding.EncodeToString(b)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key(purpose, token)] = tokenEntry{
		email:     email,
		expiresAt: s.now().Add(ttl),
	}
	return token, nil
}

func (s *TokenStore) Resolve(ctx context.Context, purpose account.TokenPurpose, token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key(purpose, token)]
	if !ok || s.now().After(e.expiresAt) {
		return "", domain.ErrInvalidOrExpiredToken()
	}
	return e.email, nil
}

func (s *TokenStore) Revoke(ctx context.Context, purpose account.TokenPurpose, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key(purpose, token))
	return nil
}
