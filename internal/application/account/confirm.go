package account

import (
	"context"
	"strings"

	"github.com/baechuer/account-service/internal/domain"
)

const accountConfirmedMessage = "Your account has been registered successfully."

// ConfirmToken redeems a registration token and activates the account.
//
// The token is resolved, not consumed: re-confirming with a still-valid
// token is a harmless no-op, which keeps lost-response retries safe. The
// token then ages out via its store TTL.
func (s *Service) ConfirmToken(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrMissingField("token")
	}

	email, err := s.tokens.Resolve(ctx, PurposeRegistration, token)
	if err != nil {
		return "", err
	}

	if err := s.users.SetRegistered(ctx, email); err != nil {
		return "", err
	}

	s.audit("account_confirmed", map[string]string{"email": email})
	return accountConfirmedMessage, nil
}
