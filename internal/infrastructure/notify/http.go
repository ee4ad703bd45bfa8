package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/domain"
)

// maxDetailBytes caps how much of an upstream error body we carry around.
const maxDetailBytes = 2048

// HTTPDispatcher posts token-delivery requests to the notification service.
// Any non-2xx answer propagates as a dispatch failure carrying the upstream
// status and response body verbatim; there is no retry here.
type HTTPDispatcher struct {
	client *http.Client

	registrationURL  string
	passwordResetURL string
}

type Config struct {
	RegistrationURL  string
	PasswordResetURL string
	Timeout          time.Duration
}

func NewHTTPDispatcher(cfg Config) *HTTPDispatcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPDispatcher{
		client:           &http.Client{Timeout: timeout},
		registrationURL:  cfg.RegistrationURL,
		passwordResetURL: cfg.PasswordResetURL,
	}
}

type notifyPayload struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func (d *HTTPDispatcher) Notify(ctx context.Context, purpose account.TokenPurpose, email, token string) error {
	url, err := d.urlFor(purpose)
	if err != nil {
		return err
	}

	body, err := json.Marshal(notifyPayload{Email: email, Token: token})
	if err != nil {
		return domain.ErrInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.ErrInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return domain.ErrDispatchFailed(http.StatusBadGateway, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxDetailBytes))
		return domain.ErrDispatchFailed(resp.StatusCode, string(detail))
	}
	return nil
}

func (d *HTTPDispatcher) urlFor(purpose account.TokenPurpose) (string, error) {
	switch purpose {
	case account.PurposeRegistration:
		if d.registrationURL == "" {
			return "", domain.ErrInternal(fmt.Errorf("registration notify URL not configured"))
		}
		return d.registrationURL, nil
	case account.PurposePasswordReset:
		if d.passwordResetURL == "" {
			return "", domain.ErrInternal(fmt.Errorf("password reset notify URL not configured"))
		}
		return d.passwordResetURL, nil
	default:
		return "", domain.ErrInternal(fmt.Errorf("unknown notify purpose %q", purpose))
	}
}
