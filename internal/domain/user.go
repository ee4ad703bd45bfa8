package domain

import "time"

// User is the account identity record. Email is the primary identifier and
// never changes once set; PasswordHash is opaque to everything but the hasher.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	IsRegistered bool
	CreatedAt    time.Time
}

// ProfileUpdate is the allow-list of mutable profile fields. Identity and
// credential fields (email, password_hash, is_registered) are not
// representable here.
type ProfileUpdate struct {
	FullName *string
}

// Empty reports whether the update would change nothing.
func (p ProfileUpdate) Empty() bool {
	return p.FullName == nil
}
