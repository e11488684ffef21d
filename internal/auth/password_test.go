package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)
	passwords := []string{"password123", "p", "ünïcødé-pass", "with spaces and 🙂"}

	for _, pw := range passwords {
		first, err := h.Hash(pw)
		require.NoError(t, err)
		second, err := h.Hash(pw)
		require.NoError(t, err)

		assert.NotEqual(t, first, second, "salted digests must differ")
		assert.True(t, h.Verify(pw, first))
		assert.True(t, h.Verify(pw, second))
		assert.False(t, h.Verify(pw+"x", first))
	}
}

func TestPasswordHasher_EmptyPassword(t *testing.T) {
	t.Parallel()

	_, err := NewPasswordHasher(bcrypt.MinCost).Hash("")
	assert.Error(t, err)
}

func TestPasswordHasher_MalformedDigest(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)
	assert.False(t, h.Verify("password123", ""))
	assert.False(t, h.Verify("password123", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("password123", "$2a$04$short"))
}

func TestNewPasswordHasher_ClampsCost(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, bcrypt.MinCost, NewPasswordHasher(bcrypt.MinCost).cost)
}

func TestPasswordHasher_VerifyDummy(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)
	h.VerifyDummy("anything")
	h.VerifyDummy("anything else")
	assert.NotEmpty(t, h.dummy)
}
