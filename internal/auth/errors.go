package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized matches every AuthError. Handlers map it to 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned by the authorization gate on denial.
	ErrForbidden = errors.New("forbidden")

	// ErrProtectedTarget is returned when a destructive admin operation
	// targets another administrator.
	ErrProtectedTarget = fmt.Errorf("%w: target user is an administrator", ErrForbidden)

	// Token codec failures.
	ErrMalformed        = errors.New("token malformed")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")

	// ErrAlreadyRevoked is returned by Ledger.Revoke when the token is
	// already in the ledger.
	ErrAlreadyRevoked = errors.New("token already revoked")
)

// Reason says why a presented token did not resolve to an identity.
// It is used for logs and metrics only; clients always see the same 401.
type Reason string

const (
	ReasonMissing  Reason = "missing"
	ReasonInvalid  Reason = "invalid"
	ReasonExpired  Reason = "expired"
	ReasonRevoked  Reason = "revoked"
	ReasonUserGone Reason = "user_gone"
	ReasonInactive Reason = "inactive"
)

// AuthError is the single failure type of identity resolution.
type AuthError struct {
	Reason Reason
	Err    error
}

func newAuthError(reason Reason, err error) *AuthError {
	return &AuthError{Reason: reason, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unauthorized (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("unauthorized (%s)", e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthorized
}

// ReasonOf extracts the resolution failure reason from err.
func ReasonOf(err error) (Reason, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Reason, true
	}
	return "", false
}
