package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tudao164/KiemThuPhanMem/internal/store"
	"github.com/tudao164/KiemThuPhanMem/types"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID int
	Email  string
	Role   types.Role

	// Token is the bearer token the identity was resolved from and
	// ExpiresAt its embedded expiry. Logout revokes exactly this token.
	Token     string
	ExpiresAt time.Time
}

// UserLookup loads the current user record. It returns store.ErrNotFound
// when the user does not exist.
type UserLookup interface {
	GetByID(ctx context.Context, id int) (types.User, error)
}

// RevocationChecker answers ledger membership.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Resolver turns a presented bearer token into an Identity.
type Resolver struct {
	codec  *TokenCodec
	ledger RevocationChecker
	users  UserLookup
	now    func() time.Time
}

// NewResolver builds a resolver. A nil clock means time.Now.
func NewResolver(codec *TokenCodec, ledger RevocationChecker, users UserLookup, clock func() time.Time) *Resolver {
	if clock == nil {
		clock = time.Now
	}
	return &Resolver{codec: codec, ledger: ledger, users: users, now: clock}
}

// Resolve validates token and loads its user. Every failure to authenticate
// is an *AuthError; storage failures are returned wrapped as-is. Resolve
// never writes.
func (r *Resolver) Resolve(ctx context.Context, token string) (Identity, error) {
	claims, err := r.codec.Verify(token, r.now())
	if err != nil {
		if errors.Is(err, ErrExpired) {
			return Identity{}, newAuthError(ReasonExpired, err)
		}
		return Identity{}, newAuthError(ReasonInvalid, err)
	}

	revoked, err := r.ledger.IsRevoked(ctx, token)
	if err != nil {
		return Identity{}, err
	}
	if revoked {
		return Identity{}, newAuthError(ReasonRevoked, nil)
	}

	// Load by id rather than email so a changed email does not orphan the token.
	user, err := r.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Identity{}, newAuthError(ReasonUserGone, nil)
		}
		return Identity{}, fmt.Errorf("load user %d: %w", claims.UserID, err)
	}
	if !user.IsActive {
		return Identity{}, newAuthError(ReasonInactive, nil)
	}

	identity := Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Token:  token,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}
