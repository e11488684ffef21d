package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/tudao164/KiemThuPhanMem/types"
)

// RevocationRepository persists the token revocation ledger.
type RevocationRepository struct {
	db *sql.DB
}

func NewRevocationRepository(db *sql.DB) *RevocationRepository {
	return &RevocationRepository{db: db}
}

// Insert adds an entry. It returns ErrConflict when the hash is already
// present; the unique index on token_hash decides, so concurrent callers
// across instances agree on exactly one winner.
func (r *RevocationRepository) Insert(ctx context.Context, entry types.RevokedToken) error {
	const query = `
		INSERT INTO revoked_tokens (token_hash, user_id, revoked_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token_hash) DO NOTHING`
	result, err := r.db.ExecContext(ctx, query, entry.TokenHash, entry.UserID, entry.RevokedAt, entry.ExpiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrConflict
	}
	return nil
}

func (r *RevocationRepository) Exists(ctx context.Context, tokenHash string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_hash = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// DeleteExpired removes entries whose token expired at or before now.
func (r *RevocationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM revoked_tokens WHERE expires_at <= $1`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
