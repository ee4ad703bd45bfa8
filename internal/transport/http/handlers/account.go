package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/logger"
	"github.com/baechuer/account-service/internal/metrics"
	"github.com/baechuer/account-service/internal/transport/http/dto"
	"github.com/baechuer/account-service/internal/transport/http/middleware"
	"github.com/baechuer/account-service/internal/transport/http/response"
)

// AccessTokenSigner is what the handler needs to mint a bearer token after a
// successful login. Session management beyond that single token lives with
// the caller.
type AccessTokenSigner interface {
	SignAccessToken(userID, email string, ttl time.Duration) (string, error)
}

type AccountHandler struct {
	svc       *account.Service
	signer    AccessTokenSigner
	accessTTL time.Duration
}

func NewAccountHandler(svc *account.Service, signer AccessTokenSigner, accessTTL time.Duration) *AccountHandler {
	return &AccountHandler{
		svc:       svc,
		signer:    signer,
		accessTTL: accessTTL,
	}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Register(r.Context(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Msg("user_registered")
	metrics.RecordRegistration()

	response.Created(w, dto.RegisterData{
		User:    dto.NewUserView(res.User),
		Message: res.Message,
	})
}

func (h *AccountHandler) SendRegistrationToken(w http.ResponseWriter, r *http.Request) {
	h.sendToken(w, r, h.svc.SendRegistrationToken)
}

func (h *AccountHandler) SendResetPasswordToken(w http.ResponseWriter, r *http.Request) {
	h.sendToken(w, r, h.svc.SendResetPasswordToken)
}

func (h *AccountHandler) sendToken(w http.ResponseWriter, r *http.Request, send func(ctx context.Context, email string) (string, error)) {
	var req dto.SendTokenRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	msg, err := send(r.Context(), req.Email)
	if err != nil {
		if domain.Is(err, "dispatch_failed") {
			metrics.RecordDispatchFailure()
		}
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.MessageData{Message: msg})
}

func (h *AccountHandler) ConfirmToken(w http.ResponseWriter, r *http.Request) {
	var req dto.ConfirmTokenRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	msg, err := h.svc.ConfirmToken(r.Context(), req.Token)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().Msg("account_confirmed")
	metrics.RecordConfirmation()

	response.OK(w, dto.MessageData{Message: msg})
}

func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	msg, err := h.svc.ChangePassword(r.Context(), req.Token, req.Password, req.ConfirmPassword)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().Msg("password_changed")
	metrics.RecordPasswordReset()

	response.OK(w, dto.MessageData{Message: msg})
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	access, err := h.signer.SignAccessToken(u.ID, u.Email, h.accessTTL)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", u.ID).
		Msg("user_logged_in")
	metrics.RecordLogin()

	response.OK(w, dto.LoginData{
		User:        dto.NewUserView(u),
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.accessTTL.Seconds()),
	})
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrAccessTokenInvalid())
		return
	}

	var req dto.UpdateProfileRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.UpdateProfile(r.Context(), claims.Email, domain.ProfileUpdate{
		FullName: req.FullName,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", u.ID).
		Msg("profile_updated")

	response.OK(w, dto.ProfileData{
		User:    dto.NewUserView(u),
		Message: "User has been updated successfully.",
	})
}
