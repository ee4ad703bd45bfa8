package mongo

import (
	"testing"
	"time"

	"github.com/baechuer/account-service/internal/domain"
)

// Integration behavior against a live server is exercised through the
// in-memory repo, which carries the same contract. These cover the pure
// mapping helpers.

func TestToDomainUser(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	rec := userRecord{
		ID:           "u1",
		Email:        "bob@x.com",
		PasswordHash: "h",
		FullName:     "Bob",
		IsRegistered: true,
		CreatedAt:    now,
	}

	u := toDomainUser(rec)
	want := domain.User{
		ID:           "u1",
		Email:        "bob@x.com",
		PasswordHash: "h",
		FullName:     "Bob",
		IsRegistered: true,
		CreatedAt:    now,
	}
	if u != want {
		t.Fatalf("expected %+v, got %+v", want, u)
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"  Bob@X.Com ": "bob@x.com",
		"bob@x.com":    "bob@x.com",
		"   ":          "",
	}
	for in, want := range cases {
		if got := normalizeEmail(in); got != want {
			t.Fatalf("normalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
