package domain

import (
	"errors"
	"fmt"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"     // 400
	KindAuth           ErrKind = "auth"           // 401
	KindForbidden      ErrKind = "forbidden"      // 403
	KindNotFound       ErrKind = "not_found"      // 404
	KindConflict       ErrKind = "conflict"       // 409
	KindInfrastructure ErrKind = "infrastructure" // 500
	KindInternal       ErrKind = "internal"       // 500
)

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code (do not change casually)
// - Message: safe summary for clients (avoid leaking sensitive details)
// - Meta: optional details (field, reason, etc.)
// - Status: explicit HTTP status override; 0 means "derive from Kind".
//   Used by dispatch failures, which propagate the dispatcher status verbatim.
// - Cause: wrapped internal error for logging/diagnostics
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Status  int
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

// Is reports whether err carries the given stable code.
func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ----------------------
// Validation errors (400)
// ----------------------

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

func ErrMissingField(field string) *Error {
	return WithMeta(New(KindValidation, "missing_field", "missing required field"), map[string]string{
		"field": field,
	})
}

func ErrInvalidField(field, reason string) *Error {
	return WithMeta(New(KindValidation, "invalid_field", "invalid field"), map[string]string{
		"field":  field,
		"reason": reason,
	})
}

// Password and confirmation must match; checked before any store mutation.
func ErrPasswordMismatch() *Error {
	return New(KindValidation, "password_mismatch", "passwords must match")
}

// ----------------------
// Auth errors (401)
// ----------------------

func ErrTokenMissing() *Error {
	return New(KindAuth, "token_missing", "no token provided")
}

func ErrAccessTokenInvalid() *Error {
	return New(KindAuth, "access_token_invalid", "invalid access token")
}

func ErrAccessTokenExpired() *Error {
	return New(KindAuth, "access_token_expired", "access token is expired")
}

// ----------------------
// Forbidden (403)
// ----------------------

// Correct credentials, but the confirmation token was never redeemed.
// The caller needs to distinguish this from bad credentials to resend a token.
func ErrRegistrationIncomplete() *Error {
	return New(KindForbidden, "registration_incomplete", "account registration has not been completed")
}

// ----------------------
// Not Found (404)
// ----------------------

// IMPORTANT: identical for unknown email and wrong password. Callers must
// not learn which of the two failed.
func ErrInvalidCredentials() *Error {
	return New(KindNotFound, "invalid_credentials", "invalid email or password")
}

// Unknown and expired tokens surface the same error.
func ErrInvalidOrExpiredToken() *Error {
	return New(KindNotFound, "invalid_token", "token is invalid or expired, request another one")
}

func ErrUserNotFound() *Error {
	return New(KindNotFound, "user_not_found", "user not found")
}

// ----------------------
// Conflict (409)
// ----------------------

func ErrEmailExists() *Error {
	return New(KindConflict, "email_exists", "email already registered")
}

// ----------------------
// Dispatch / infrastructure / internal
// ----------------------

// ErrDispatchFailed carries the notification dispatcher's status and detail
// verbatim; no retry happens at this layer.
func ErrDispatchFailed(status int, detail string) *Error {
	e := WithMeta(New(KindInfrastructure, "dispatch_failed", "notification dispatch failed"), map[string]string{
		"detail": detail,
	})
	e.Status = status
	return e
}

// ErrStoreUnavailable wraps any unexpected store error. The cause stays
// internal; clients only ever see the safe message.
func ErrStoreUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "store_unavailable", "storage unavailable", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "password hashing failed", cause)
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, "token_sign_failed", "token signing failed", cause)
}

func ErrRandomFailed(cause error) *Error {
	return Wrap(KindInternal, "random_failed", "random generation failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "internal error", cause)
}
