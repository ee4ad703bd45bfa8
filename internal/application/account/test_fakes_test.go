package account

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/account-service/internal/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byEmail map[string]domain.User

	// injected errors (if set, method returns error)
	findErr          error
	insertErr        error
	setRegisteredErr error
	updatePwdErr     error
	updateProfileErr error

	// record calls
	registered []string
	updatedPwd []struct{ email, hash string }
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]domain.User{}}
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findErr != nil {
		return domain.User{}, f.findErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

// Insert enforces email uniqueness under the lock, mirroring the unique
// index the real document store relies on.
func (f *fakeUserRepo) Insert(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return domain.User{}, f.insertErr
	}
	if _, exists := f.byEmail[u.Email]; exists {
		return domain.User{}, domain.ErrEmailExists()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUserRepo) SetRegistered(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setRegisteredErr != nil {
		return f.setRegisteredErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.IsRegistered = true
	f.byEmail[email] = u
	f.registered = append(f.registered, email)
	return nil
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, email string, newHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updatePwdErr != nil {
		return f.updatePwdErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.PasswordHash = newHash
	f.byEmail[email] = u
	f.updatedPwd = append(f.updatedPwd, struct{ email, hash string }{email, newHash})
	return nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateProfileErr != nil {
		return domain.User{}, f.updateProfileErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	f.byEmail[email] = u
	return u, nil
}

// count returns how many users the repo holds.
func (f *fakeUserRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byEmail)
}

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Compare(hash string, password string) error {
	if h.compareFn != nil {
		return h.compareFn(hash, password)
	}
	if hash == "hash:"+password {
		return nil
	}
	return errors.New("mismatch")
}

type fakeTokens struct {
	mu sync.Mutex

	data map[string]string // purpose|token -> email
	seq  int

	issueErr   error
	resolveErr error
	revokeErr  error

	issued  []string
	revoked []string
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{data: map[string]string{}}
}

func tokenKey(purpose TokenPurpose, token string) string {
	return string(purpose) + "|" + token
}

func (f *fakeTokens) Issue(ctx context.Context, purpose TokenPurpose, email string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.issueErr != nil {
		return "", f.issueErr
	}
	f.seq++
	token := fmt.Sprintf("tok-%d", f.seq)
	f.data[tokenKey(purpose, token)] = email
	f.issued = append(f.issued, token)
	return token, nil
}

func (f *fakeTokens) Resolve(ctx context.Context, purpose TokenPurpose, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	email, ok := f.data[tokenKey(purpose, token)]
	if !ok {
		return "", domain.ErrInvalidOrExpiredToken()
	}
	return email, nil
}

func (f *fakeTokens) Revoke(ctx context.Context, purpose TokenPurpose, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.revokeErr != nil {
		return f.revokeErr
	}
	delete(f.data, tokenKey(purpose, token))
	f.revoked = append(f.revoked, token)
	return nil
}

type sentNotification struct {
	purpose TokenPurpose
	email   string
	token   string
}

type fakeNotifier struct {
	mu sync.Mutex

	notifyErr error
	sent      []sentNotification
}

func (f *fakeNotifier) Notify(ctx context.Context, purpose TokenPurpose, email, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.notifyErr != nil {
		return f.notifyErr
	}
	f.sent = append(f.sent, sentNotification{purpose: purpose, email: email, token: token})
	return nil
}

/*
Service factory for tests
*/

func newSvcForTest(t *testing.T) (*Service, *fakeUserRepo, *fakeHasher, *fakeTokens, *fakeNotifier, *[]auditEntry) {
	t.Helper()

	users := newFakeUserRepo()
	hasher := &fakeHasher{}
	tokens := newFakeTokens()
	notifier := &fakeNotifier{}

	audits := &[]auditEntry{}
	cfg := Config{
		RegistrationTokenTTL:  24 * time.Hour,
		PasswordResetTokenTTL: 30 * time.Minute,
	}

	svc := NewService(users, hasher, tokens, notifier, cfg).
		WithAudit(func(action string, fields map[string]string) {
			cp := map[string]string{}
			for k, v := range fields {
				cp[k] = v
			}
			*audits = append(*audits, auditEntry{action: action, fields: cp})
		})

	if svc == nil {
		t.Fatalf("svc is nil")
	}

	return svc, users, hasher, tokens, notifier, audits
}
