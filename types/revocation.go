package types

import "time"

// RevokedToken records a bearer token that was invalidated before its
// natural expiry, usually by logout.
type RevokedToken struct {
	// ID is the unique identifier of the ledger entry.
	ID int `json:"id" db:"id"`

	// TokenHash is the hex-encoded SHA-256 of the token string.
	// It is unique across the ledger.
	TokenHash string `json:"-" db:"token_hash"`

	// UserID identifies the user the token was issued to.
	UserID int `json:"user_id" db:"user_id"`

	// RevokedAt is the time the token was revoked.
	RevokedAt time.Time `json:"revoked_at" db:"revoked_at"`

	// ExpiresAt is the token's own expiry. Once it has passed the entry
	// can be garbage-collected because the token no longer verifies.
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}
