package account

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/baechuer/account-service/internal/domain"
)

// RegisterResult carries the created record plus an instructive message for
// the caller. The password hash never leaves the service through it.
type RegisterResult struct {
	User    domain.User
	Message string
}

const registeredMessage = "Registration successful. Please check your email to activate your account."

// Register creates an unconfirmed user. It does not issue a confirmation
// token: delivery is SendRegistrationToken's job, so a failed email can be
// retried without re-registering.
//
// Validation happens before any store access so a mismatch leaves zero
// partial effects. Duplicate emails are rejected by the repository's
// uniqueness guarantee, not by a read-then-insert check.
func (s *Service) Register(ctx context.Context, email, password, confirmPassword string) (RegisterResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return RegisterResult{}, domain.ErrMissingField("email")
	}
	if password == "" {
		return RegisterResult{}, domain.ErrMissingField("password")
	}
	if password != confirmPassword {
		return RegisterResult{}, domain.ErrPasswordMismatch()
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return RegisterResult{}, domain.ErrHashFailed(err)
	}

	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		IsRegistered: false,
	}

	created, err := s.users.Insert(ctx, u)
	if err != nil {
		return RegisterResult{}, err
	}

	s.audit("user_registered", map[string]string{"user_id": created.ID})

	created.PasswordHash = ""
	return RegisterResult{User: created, Message: registeredMessage}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
