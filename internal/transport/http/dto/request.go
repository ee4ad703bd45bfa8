package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/baechuer/account-service/internal/domain"
)

var validate = validator.New()

func init() {
	// Report json field names in validation errors, not Go field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateStruct maps the first validator failure onto a domain error.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return domain.ErrMissingField(fe.Field())
		}
		return domain.ErrInvalidField(fe.Field(), fe.Tag())
	}
	return domain.ErrInternal(err)
}

// -------- Registration --------

type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	return validateStruct(r)
}

// SendTokenRequest covers both send_registration_token and
// send_reset_password_token.
type SendTokenRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *SendTokenRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	return validateStruct(r)
}

type ConfirmTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

func (r *ConfirmTokenRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	return validateStruct(r)
}

// -------- Password reset --------

type ChangePasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

func (r *ChangePasswordRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	return validateStruct(r)
}

// -------- Login --------

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	return validateStruct(r)
}

// -------- Profile update --------

// UpdateProfileRequest is the typed allow-list for PATCH /update_profile.
// Unknown fields are rejected at decode time; identity and credential fields
// have no representation here at all.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	if r.FullName == nil {
		return domain.ErrInvalidField("profile", "no updatable fields")
	}
	return nil
}
