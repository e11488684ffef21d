package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_RevokeOnce(t *testing.T) {
	ctx := context.Background()
	st := newMemRevocationStore()
	ledger := NewLedger(st)

	revoked, err := ledger.IsRevoked(ctx, "tok-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, ledger.Revoke(ctx, "tok-a", 1, epoch.Add(time.Hour)))
	assert.ErrorIs(t, ledger.Revoke(ctx, "tok-a", 1, epoch.Add(time.Hour)), ErrAlreadyRevoked)
	assert.Len(t, st.entries, 1)

	revoked, err = ledger.IsRevoked(ctx, "tok-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = ledger.IsRevoked(ctx, "tok-b")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestLedger_StoresHashNotToken(t *testing.T) {
	st := newMemRevocationStore()
	ledger := NewLedger(st)

	require.NoError(t, ledger.Revoke(context.Background(), "secret-token", 7, epoch))

	for hash, entry := range st.entries {
		assert.NotEqual(t, "secret-token", hash)
		assert.Len(t, hash, 64)
		assert.Equal(t, 7, entry.UserID)
		assert.False(t, entry.RevokedAt.IsZero())
	}
}

func TestLedger_ConcurrentRevokeInsertsOnce(t *testing.T) {
	ctx := context.Background()
	st := newMemRevocationStore()
	ledger := NewLedger(st)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		already   int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := ledger.Revoke(ctx, "shared", 1, epoch.Add(time.Hour))
			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				successes++
			case ErrAlreadyRevoked:
				already++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, already)
	assert.Len(t, st.entries, 1)
}

func TestLedger_Prune(t *testing.T) {
	ctx := context.Background()
	st := newMemRevocationStore()
	ledger := NewLedger(st)

	require.NoError(t, ledger.Revoke(ctx, "old", 1, epoch))
	require.NoError(t, ledger.Revoke(ctx, "fresh", 1, epoch.Add(time.Hour)))

	n, err := ledger.Prune(ctx, epoch)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	revoked, err := ledger.IsRevoked(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestLedger_StoreError(t *testing.T) {
	st := newMemRevocationStore()
	st.err = errStorageDown
	ledger := NewLedger(st)

	err := ledger.Revoke(context.Background(), "t", 1, epoch)
	assert.ErrorIs(t, err, errStorageDown)
	assert.NotErrorIs(t, err, ErrAlreadyRevoked)

	_, err = ledger.IsRevoked(context.Background(), "t")
	assert.ErrorIs(t, err, errStorageDown)
}

func TestHashToken_Deterministic(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
}
