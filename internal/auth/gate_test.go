package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tudao164/KiemThuPhanMem/types"
)

func TestAllowAdmin(t *testing.T) {
	assert.NoError(t, AllowAdmin(Identity{UserID: 1, Role: types.RoleAdmin}))
	assert.ErrorIs(t, AllowAdmin(Identity{UserID: 1, Role: types.RoleUser}), ErrForbidden)
	assert.ErrorIs(t, AllowAdmin(Identity{UserID: 1, Role: "superuser"}), ErrForbidden)
	assert.ErrorIs(t, AllowAdmin(Identity{}), ErrForbidden)
}

func TestAllowSelfOrAdmin(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		ownerID  int
		allowed  bool
	}{
		{"owner", Identity{UserID: 5, Role: types.RoleUser}, 5, true},
		{"other user", Identity{UserID: 6, Role: types.RoleUser}, 5, false},
		{"admin on other's resource", Identity{UserID: 6, Role: types.RoleAdmin}, 5, true},
		{"unknown role owner", Identity{UserID: 5, Role: "guest"}, 5, true},
		{"unknown role other", Identity{UserID: 6, Role: "guest"}, 5, false},
		{"anonymous", Identity{}, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := AllowSelfOrAdmin(tc.identity, tc.ownerID)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestAllowTargetMutation(t *testing.T) {
	assert.NoError(t, AllowTargetMutation(types.User{ID: 1, Role: types.RoleUser}))

	err := AllowTargetMutation(types.User{ID: 2, Role: types.RoleAdmin})
	assert.ErrorIs(t, err, ErrProtectedTarget)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, AllowTargetMutation(types.User{ID: 3, Role: ""}), ErrForbidden)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	want := Identity{UserID: 9, Email: "x@example.com", Role: types.RoleUser, Token: "t"}
	got, ok := IdentityFromContext(ContextWithIdentity(context.Background(), want))
	assert.True(t, ok)
	assert.Equal(t, want, got)
}
