package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/tudao164/KiemThuPhanMem/internal/store"
	"github.com/tudao164/KiemThuPhanMem/types"
)

// RevocationStore persists ledger entries. Insert must return
// store.ErrConflict when the token hash is already present; uniqueness is
// the storage layer's job so that several server instances agree.
type RevocationStore interface {
	Insert(ctx context.Context, entry types.RevokedToken) error
	Exists(ctx context.Context, tokenHash string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Ledger records tokens that were invalidated before their natural expiry.
// Every check goes straight to the store; nothing is cached in process.
type Ledger struct {
	store RevocationStore
	now   func() time.Time
}

func NewLedger(store RevocationStore) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// Revoke adds token to the ledger. It returns ErrAlreadyRevoked when the
// token was revoked before.
func (l *Ledger) Revoke(ctx context.Context, token string, userID int, expiresAt time.Time) error {
	entry := types.RevokedToken{
		TokenHash: HashToken(token),
		UserID:    userID,
		RevokedAt: l.now(),
		ExpiresAt: expiresAt,
	}
	if err := l.store.Insert(ctx, entry); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ErrAlreadyRevoked
		}
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether token is in the ledger.
func (l *Ledger) IsRevoked(ctx context.Context, token string) (bool, error) {
	revoked, err := l.store.Exists(ctx, HashToken(token))
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return revoked, nil
}

// Prune drops entries for tokens that expired at or before now. The codec
// already rejects those tokens, so their entries carry no information.
func (l *Ledger) Prune(ctx context.Context, now time.Time) (int64, error) {
	n, err := l.store.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("prune revocations: %w", err)
	}
	return n, nil
}

// HashToken is the ledger key of a token string.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
