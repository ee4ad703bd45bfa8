package account

import (
	"context"

	"github.com/baechuer/account-service/internal/domain"
)

// Login authenticates a user and returns the identity on success. Session or
// token issuance is the caller's business.
//
// Unknown email and wrong password fail identically (no user enumeration).
// Correct credentials on an unconfirmed account fail with a distinct error:
// that disclosure is intentional, the caller must be able to re-request a
// confirmation token.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			// Hide not-found behind invalid credentials
			return domain.User{}, domain.ErrInvalidCredentials()
		}
		return domain.User{}, err
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return domain.User{}, domain.ErrInvalidCredentials()
	}

	if !u.IsRegistered {
		return domain.User{}, domain.ErrRegistrationIncomplete()
	}

	s.audit("user_logged_in", map[string]string{"user_id": u.ID})

	u.PasswordHash = ""
	return u, nil
}
