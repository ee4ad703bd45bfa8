package account

import (
	"time"
)

// Service is the account lifecycle state machine: unregistered ->
// pending-confirmation -> registered, with one-time tokens gating the
// transitions. It holds no mutable state beyond configuration and the
// injected clients, so a single instance is shared across requests.
type Service struct {
	users    UserRepo
	hasher   PasswordHasher
	tokens   TokenStore
	notifier Notifier

	registrationTTL  time.Duration
	passwordResetTTL time.Duration

	audit func(action string, fields map[string]string)
}

type Config struct {
	RegistrationTokenTTL  time.Duration
	PasswordResetTokenTTL time.Duration
}

func NewService(users UserRepo, hasher PasswordHasher, tokens TokenStore, notifier Notifier, cfg Config) *Service {
	regTTL := cfg.RegistrationTokenTTL
	if regTTL <= 0 {
		regTTL = 24 * time.Hour
	}
	resetTTL := cfg.PasswordResetTokenTTL
	if resetTTL <= 0 {
		resetTTL = 30 * time.Minute
	}
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,

		registrationTTL:  regTTL,
		passwordResetTTL: resetTTL,

		audit: func(string, map[string]string) {},
	}
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}
