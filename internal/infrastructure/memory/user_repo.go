package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/baechuer/account-service/internal/domain"
)

// UserRepo is the in-memory fallback/test double. The mutex around Insert is
// its uniqueness guarantee, the same contract the Mongo index provides.
type UserRepo struct {
	mu      sync.RWMutex
	byEmail map[string]domain.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{byEmail: make(map[string]domain.User)}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (r *UserRepo) Insert(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[u.Email]; exists {
		return domain.User{}, domain.ErrEmailExists()
	}
	r.byEmail[u.Email] = u
	return u, nil
}

func (r *UserRepo) SetRegistered(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalizeEmail(email)
	u, ok := r.byEmail[key]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.IsRegistered = true
	r.byEmail[key] = u
	return nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, email string, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalizeEmail(email)
	u, ok := r.byEmail[key]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.PasswordHash = newHash
	r.byEmail[key] = u
	return nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalizeEmail(email)
	u, ok := r.byEmail[key]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	r.byEmail[key] = u
	return u, nil
}
