package models

import "time"

// MagicCode is the pending one-time code for an email address. Only the
// argon2 hash of the code is stored.
type MagicCode struct {
	Email     string
	CodeHash  []byte
	Salt      []byte
	Attempts  int
	ExpiresAt time.Time
	CreatedAt time.Time
}
