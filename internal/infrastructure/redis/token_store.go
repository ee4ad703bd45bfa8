package redis

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/domain"
)

// opaqueTokenBytes gives 256 bits of entropy per token.
const opaqueTokenBytes = 32

// TokenStore maps (purpose, token) -> email with a TTL. A resolve on a key
// redis has already expired is indistinguishable from a resolve on a token
// that never existed.
type TokenStore struct {
	rdb    *goredis.Client
	prefix string // e.g. "ott:"
}

func NewTokenStore(c *Client) *TokenStore {
	var rdb *goredis.Client
	if c != nil {
		rdb = c.rdb
	}
	return &TokenStore{
		rdb:    rdb,
		prefix: "ott:",
	}
}

func (s *TokenStore) Issue(ctx context.Context, purpose account.TokenPurpose, email string, ttl time.Duration) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", domain.ErrMissingField("email")
	}
	if ttl <= 0 {
		return "", domain.ErrMissingField("ttl")
	}
	if s.rdb == nil {
		return "", errors.New("redis token store not configured")
	}

	token, err := newOpaqueToken(opaqueTokenBytes)
	if err != nil {
		return "", domain.ErrRandomFailed(err)
	}

	// overwrite is fine (a fresh request generates a fresh token anyway)
	if err := s.rdb.Set(ctx, s.key(purpose, token), email, ttl).Err(); err != nil {
		return "", domain.ErrStoreUnavailable(err)
	}
	return token, nil
}

func (s *TokenStore) Resolve(ctx context.Context, purpose account.TokenPurpose, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrMissingField("token")
	}
	if s.rdb == nil {
		return "", errors.New("redis token store not configured")
	}

	email, err := s.rdb.Get(ctx, s.key(purpose, token)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", domain.ErrInvalidOrExpiredToken()
		}
		return "", domain.ErrStoreUnavailable(fmt.Errorf("token resolve: %w", err))
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return "", domain.ErrInvalidOrExpiredToken()
	}
	return email, nil
}

func (s *TokenStore) Revoke(ctx context.Context, purpose account.TokenPurpose, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrMissingField("token")
	}
	if s.rdb == nil {
		return errors.New("redis token store not configured")
	}

	// Deleting an already-gone key is fine; revoke is idempotent.
	if err := s.rdb.Del(ctx, s.key(purpose, token)).Err(); err != nil {
		return domain.ErrStoreUnavailable(fmt.Errorf("token revoke: %w", err))
	}
	return nil
}

func (s *TokenStore) key(purpose account.TokenPurpose, token string) string {
	// purpose is a controlled constant ("registration"/"password_reset")
	return s.prefix + string(purpose) + ":" + token
}

// newOpaqueToken returns a URL-safe opaque token.
func newOpaqueToken(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		return "", errors.New("invalid token length")
	}
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
