package account

import (
	"context"

	"github.com/baechuer/account-service/internal/domain"
)

// UpdateProfile applies an allow-listed partial update to the user's
// profile. The typed ProfileUpdate struct is the whole allow-list: email,
// password hash and registration state cannot be smuggled through it.
func (s *Service) UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if upd.Empty() {
		return domain.User{}, domain.ErrInvalidField("profile", "no updatable fields")
	}

	u, err := s.users.UpdateProfile(ctx, email, upd)
	if err != nil {
		return domain.User{}, err
	}

	s.audit("profile_updated", map[string]string{"user_id": u.ID})

	u.PasswordHash = ""
	return u, nil
}
