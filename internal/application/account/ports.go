package account

import (
	"context"
	"time"

	"github.com/baechuer/account-service/internal/domain"
)

/*
UserRepo
--------
Persistence port for users in the document store.
Only describes WHAT the account service needs, not HOW it's stored.
The email uniqueness guarantee lives behind Insert: concurrent inserts for
the same email must serialize at the storage layer.
*/
type UserRepo interface {
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	Insert(ctx context.Context, u domain.User) (domain.User, error)

	// Updates needed by business flows
	SetRegistered(ctx context.Context, email string) error
	UpdatePasswordHash(ctx context.Context, email string, newHash string) error
	UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (domain.User, error)
}

/*
PasswordHasher
--------------
Abstracts bcrypt / argon2. Hash salts internally, so two calls on the same
input produce different output; Compare must not leak timing.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenStore
----------
One-time tokens namespaced by purpose so a registration token can never be
replayed as a password-reset token. Resolve does not consume: unknown and
expired tokens are indistinguishable to the caller.
*/
type TokenPurpose string

const (
	PurposeRegistration  TokenPurpose = "registration"
	PurposePasswordReset TokenPurpose = "password_reset"
)

type TokenStore interface {
	// Issue generates an unguessable opaque token and stores
	// (purpose, token) -> email with the given TTL.
	Issue(ctx context.Context, purpose TokenPurpose, email string, ttl time.Duration) (token string, err error)

	// Resolve returns the email a token was issued for, or
	// ErrInvalidOrExpiredToken for anything it cannot find.
	Resolve(ctx context.Context, purpose TokenPurpose, token string) (email string, err error)

	// Revoke invalidates a token ahead of its natural expiry.
	Revoke(ctx context.Context, purpose TokenPurpose, token string) error
}

/*
Notifier
--------
Requests delivery of a token to an email address. The account service never
sends email itself; it only interprets success/failure. Failures surface as
domain dispatch errors carrying the dispatcher's status and detail.
*/
type Notifier interface {
	Notify(ctx context.Context, purpose TokenPurpose, email string, token string) error
}
