package account

import (
	"context"
	"strings"

	"github.com/baechuer/account-service/internal/domain"
)

const passwordChangedMessage = "Your password has been changed successfully."

// ChangePassword redeems a password-reset token and replaces the password
// hash for the email the token resolves to.
//
// The mismatch check runs before token resolution, so a bad confirmation
// leaves the token untouched and still redeemable. After a successful
// update the token is revoked; a revocation failure is not worth failing
// the whole operation over, the token would age out anyway.
func (s *Service) ChangePassword(ctx context.Context, token, password, confirmPassword string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrMissingField("token")
	}
	if password == "" {
		return "", domain.ErrMissingField("password")
	}
	if password != confirmPassword {
		return "", domain.ErrPasswordMismatch()
	}

	email, err := s.tokens.Resolve(ctx, PurposePasswordReset, token)
	if err != nil {
		return "", err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", domain.ErrHashFailed(err)
	}

	if err := s.users.UpdatePasswordHash(ctx, email, hash); err != nil {
		return "", err
	}

	_ = s.tokens.Revoke(ctx, PurposePasswordReset, token)

	s.audit("password_changed", map[string]string{"email": email})
	return passwordChangedMessage, nil
}
