package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/infrastructure/memory"
	"github.com/baechuer/account-service/internal/infrastructure/security"
	"github.com/baechuer/account-service/internal/transport/http/middleware"
	"github.com/baechuer/account-service/internal/transport/http/response"
	"github.com/baechuer/account-service/internal/transport/http/router"
)

// newTestServer wires the real router and handlers onto in-memory
// infrastructure.
func newTestServer(t *testing.T) (http.Handler, *memory.RecordingDispatcher) {
	t.Helper()

	users := memory.NewUserRepo()
	tokens := memory.NewTokenStore()
	dispatcher := memory.NewRecordingDispatcher()
	hasher := security.NewBcryptHasher(4)
	signer := security.NewJWTSigner("test-secret", "account-service")

	svc := account.NewService(users, hasher, tokens, dispatcher, account.Config{
		RegistrationTokenTTL:  24 * time.Hour,
		PasswordResetTokenTTL: 30 * time.Minute,
	})

	accountH := NewAccountHandler(svc, signer, 15*time.Minute)
	healthH := NewHealthHandler(map[string]Pinger{
		"memory": PingFunc(func(ctx context.Context) error { return nil }),
	})

	mux, err := router.New(router.Deps{
		Health:      healthH,
		Account:     accountH,
		RequestIDMW: middleware.RequestID,
		AuthMW:      middleware.Auth(signer, response.WriteError),
	})
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return mux, dispatcher
}

func doJSON(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal %q: %v", rec.Body.String(), err)
	}
	return m
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	body := decodeBody(t, rec)
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHTTP_Register_Created(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/register",
		`{"email":"bob@x.com","password":"secret","confirm_password":"secret"}`, nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	user := data["user"].(map[string]any)
	if user["email"] != "bob@x.com" {
		t.Fatalf("unexpected user: %v", user)
	}
	if user["is_registered"] != false {
		t.Fatalf("new user must start unconfirmed: %v", user)
	}
	if _, leaked := user["password"]; leaked {
		t.Fatalf("password leaked: %v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password hash leaked: %v", user)
	}
}

func TestHTTP_Register_Mismatch_400(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/register",
		`{"email":"bob@x.com","password":"secret","confirm_password":"other"}`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if errCode(t, rec) != "password_mismatch" {
		t.Fatalf("expected password_mismatch, got %q", errCode(t, rec))
	}
}

func TestHTTP_Register_Duplicate_409(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t)

	first := doJSON(t, h, http.MethodPost, "/api/v1/register",
		`{"email":"bob@x.com","password":"secret","confirm_password":"secret"}`, nil)
	if first.Code != http.StatusCreated {
		t.Fatalf("first register: %d", first.Code)
	}

	rec := doJSON(t, h, http.MethodPost, "/api/v1/register",
		`{"email":"bob@x.com","password":"other","confirm_password":"other"}`, nil)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if errCode(t, rec) != "email_exists" {
		t.Fatalf("expected email_exists, got %q", errCode(t, rec))
	}
}

func TestHTTP_Register_UnknownField_400(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/register",
		`{"email":"bob@x.com","password":"secret","confirm_password":"secret","is_registered":true}`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if errCode(t, rec) != "invalid_json" {
		t.Fatalf("expected invalid_json, got %q", errCode(t, rec))
	}
}

func TestHTTP_ConfirmUnknownToken_404(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/confirm_token",
		`{"token":"never-issued"}`, nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if errCode(t, rec) != "invalid_token" {
		t.Fatalf("expected invalid_token, got %q", errCode(t, rec))
	}
}

func TestHTTP_UpdateProfile_NoToken_401(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodPatch, "/api/v1/update_profile",
		`{"full_name":"Bob"}`, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHTTP_Health(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestHTTP_Metrics_Exposed(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

// Full lifecycle over the wire: register, confirm, login, update profile,
// reset password, login again.
func TestHTTP_AccountLifecycle(t *testing.T) {
	t.Parallel()

	h, dispatcher := newTestServer(t)

	// register
	rec := doJSON(t, h, http.MethodPost, "/api/v1/register",
		`{"email":"bob@x.com","password":"secret","confirm_password":"secret"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d: %s", rec.Code, rec.Body.String())
	}

	// login before confirmation
	rec = doJSON(t, h, http.MethodPost, "/api/v1/login",
		`{"email":"bob@x.com","password":"secret"}`, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("login before confirm: expected 403, got %d", rec.Code)
	}
	if errCode(t, rec) != "registration_incomplete" {
		t.Fatalf("expected registration_incomplete, got %q", errCode(t, rec))
	}

	// request a confirmation token
	rec = doJSON(t, h, http.MethodPost, "/api/v1/send_registration_token",
		`{"email":"bob@x.com"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("send_registration_token: %d: %s", rec.Code, rec.Body.String())
	}
	sent := dispatcher.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(sent))
	}
	regToken := sent[0].Token

	// confirm
	rec = doJSON(t, h, http.MethodPost, "/api/v1/confirm_token",
		`{"token":"`+regToken+`"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: %d: %s", rec.Code, rec.Body.String())
	}

	// re-confirming with the same still-valid token is a no-op
	rec = doJSON(t, h, http.MethodPost, "/api/v1/confirm_token",
		`{"token":"`+regToken+`"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat confirm: expected 200, got %d", rec.Code)
	}

	// login
	rec = doJSON(t, h, http.MethodPost, "/api/v1/login",
		`{"email":"bob@x.com","password":"secret"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d: %s", rec.Code, rec.Body.String())
	}
	loginData := decodeBody(t, rec)["data"].(map[string]any)
	accessToken, _ := loginData["access_token"].(string)
	if accessToken == "" {
		t.Fatalf("expected access token, got %v", loginData)
	}

	// update profile with the bearer token
	rec = doJSON(t, h, http.MethodPatch, "/api/v1/update_profile",
		`{"full_name":"Bob Builder"}`,
		map[string]string{"Authorization": "Bearer " + accessToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("update_profile: %d: %s", rec.Code, rec.Body.String())
	}
	profData := decodeBody(t, rec)["data"].(map[string]any)
	user := profData["user"].(map[string]any)
	if user["full_name"] != "Bob Builder" {
		t.Fatalf("expected updated name, got %v", user)
	}

	// password reset
	rec = doJSON(t, h, http.MethodPost, "/api/v1/send_reset_password_token",
		`{"email":"bob@x.com"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("send_reset_password_token: %d", rec.Code)
	}
	sent = dispatcher.Sent()
	resetToken := sent[len(sent)-1].Token

	rec = doJSON(t, h, http.MethodPost, "/api/v1/change_password",
		`{"token":"`+resetToken+`","password":"newsecret","confirm_password":"newsecret"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("change_password: %d: %s", rec.Code, rec.Body.String())
	}

	// old password no longer works, indistinguishable from unknown user
	rec = doJSON(t, h, http.MethodPost, "/api/v1/login",
		`{"email":"bob@x.com","password":"secret"}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("old password: expected 404, got %d", rec.Code)
	}
	if errCode(t, rec) != "invalid_credentials" {
		t.Fatalf("expected invalid_credentials, got %q", errCode(t, rec))
	}

	// new password works
	rec = doJSON(t, h, http.MethodPost, "/api/v1/login",
		`{"email":"bob@x.com","password":"newsecret"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login with new password: %d: %s", rec.Code, rec.Body.String())
	}
}
