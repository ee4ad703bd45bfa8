package memory

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/baechuer/account-service/internal/application/account"
)

// NoopDispatcher logs instead of delivering. Dev fallback when no
// notification backend is configured.
type NoopDispatcher struct {
	log zerolog.Logger
}

func NewNoopDispatcher(log zerolog.Logger) *NoopDispatcher {
	return &NoopDispatcher{log: log}
}

func (d *NoopDispatcher) Notify(ctx context.Context, purpose account.TokenPurpose, email, token string) error {
	d.log.Info().
		Str("purpose", string(purpose)).
		Str("email", email).
		Msg("noop dispatch")
	return nil
}

// RecordingDispatcher captures dispatch requests for tests.
type RecordingDispatcher struct {
	mu   sync.Mutex
	sent []DispatchRecord
}

type DispatchRecord struct {
	Purpose account.TokenPurpose
	Email   string
	Token   string
}

func NewRecordingDispatcher() *RecordingDispatcher {
	return &RecordingDispatcher{}
}

func (d *RecordingDispatcher) Notify(ctx context.Context, purpose account.TokenPurpose, email, token string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, DispatchRecord{Purpose: purpose, Email: email, Token: token})
	return nil
}

func (d *RecordingDispatcher) Sent() []DispatchRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]DispatchRecord, len(d.sent))
	copy(out, d.sent)
	return out
}
