package account

import (
	"context"
	"strings"
	"time"

	"github.com/baechuer/account-service/internal/domain"
)

const (
	registrationTokenSentMessage  = "Token has been sent. Please check your email to activate your account."
	passwordResetTokenSentMessage = "Reset password token has been sent. Please check your email to reset your password."
)

// SendRegistrationToken issues a registration token and asks the dispatcher
// to deliver it. No existence check on the email: issuance is unconditional
// and dispatch failures propagate verbatim, with no retry at this layer.
func (s *Service) SendRegistrationToken(ctx context.Context, email string) (string, error) {
	if err := s.sendToken(ctx, PurposeRegistration, email, s.registrationTTL); err != nil {
		return "", err
	}
	return registrationTokenSentMessage, nil
}

// SendResetPasswordToken issues a password-reset token and asks the
// dispatcher to deliver it.
func (s *Service) SendResetPasswordToken(ctx context.Context, email string) (string, error) {
	if err := s.sendToken(ctx, PurposePasswordReset, email, s.passwordResetTTL); err != nil {
		return "", err
	}
	return passwordResetTokenSentMessage, nil
}

func (s *Service) sendToken(ctx context.Context, purpose TokenPurpose, email string, ttl time.Duration) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}
	if !strings.Contains(email, "@") {
		return domain.ErrInvalidField("email", "invalid format")
	}

	token, err := s.tokens.Issue(ctx, purpose, email, ttl)
	if err != nil {
		return err
	}

	if err := s.notifier.Notify(ctx, purpose, email, token); err != nil {
		return err
	}

	s.audit("token_sent", map[string]string{"purpose": string(purpose)})
	return nil
}
