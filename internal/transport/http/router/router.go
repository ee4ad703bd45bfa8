package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/account-service/internal/metrics"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AccountHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	SendRegistrationToken(w http.ResponseWriter, r *http.Request)
	SendResetPasswordToken(w http.ResponseWriter, r *http.Request)
	ConfirmToken(w http.ResponseWriter, r *http.Request)
	ChangePassword(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health  HealthHandler
	Account AccountHandler

	RequestIDMW func(http.Handler) http.Handler
	AuthMW      func(http.Handler) http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Account == nil {
		return nil, fmt.Errorf("nil Account handler")
	}
	if deps.RequestIDMW == nil {
		return nil, fmt.Errorf("nil RequestID middleware")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}

	r := chi.NewRouter()
	r.Use(deps.RequestIDMW)
	r.Use(metrics.Middleware)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/register", deps.Account.Register)
		r.Post("/send_registration_token", deps.Account.SendRegistrationToken)
		r.Post("/send_reset_password_token", deps.Account.SendResetPasswordToken)
		r.Post("/confirm_token", deps.Account.ConfirmToken)
		r.Post("/change_password", deps.Account.ChangePassword)
		r.Post("/login", deps.Account.Login)

		r.With(deps.AuthMW).Patch("/update_profile", deps.Account.UpdateProfile)
	})

	return r, nil
}
