package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tudao164/KiemThuPhanMem/internal/auth"
	"github.com/tudao164/KiemThuPhanMem/internal/logging"
	"github.com/tudao164/KiemThuPhanMem/internal/store"
	"github.com/tudao164/KiemThuPhanMem/types"
)

type memSnapshots struct {
	saved map[string]types.StatsSnapshot
}

func (m *memSnapshots) SaveSnapshot(_ context.Context, s types.StatsSnapshot) (types.StatsSnapshot, error) {
	s.Name = s.TakenAt.Format("20060102T150405Z")
	s.ObjectKey = "stats/" + s.Name + ".json"
	m.saved[s.Name] = s
	return s, nil
}

func (m *memSnapshots) LoadSnapshot(_ context.Context, name string) (types.StatsSnapshot, error) {
	s, ok := m.saved[name]
	if !ok {
		return types.StatsSnapshot{}, store.ErrNotFound
	}
	return s, nil
}

func TestAdmin_RequiresAdminRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	bob := f.register(t, "bob@example.com")

	_, err := f.adminSvc.ListUsers(ctx, alice)
	assert.ErrorIs(t, err, auth.ErrForbidden)
	_, err = f.adminSvc.Stats(ctx, alice)
	assert.ErrorIs(t, err, auth.ErrForbidden)
	_, err = f.adminSvc.Block(ctx, alice, bob.UserID)
	assert.ErrorIs(t, err, auth.ErrForbidden)
	assert.ErrorIs(t, f.adminSvc.DeleteUser(ctx, alice, bob.UserID), auth.ErrForbidden)
	_, err = f.adminSvc.SnapshotStats(ctx, alice)
	assert.ErrorIs(t, err, auth.ErrForbidden)
}

func TestAdmin_BlockAndUnblock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.registerAdmin(t, "root@example.com")
	bob := f.register(t, "bob@example.com")

	blocked, err := f.adminSvc.Block(ctx, admin, bob.UserID)
	require.NoError(t, err)
	assert.False(t, blocked.IsActive)

	_, err = f.resolver.Resolve(ctx, bob.Token)
	reason, _ := auth.ReasonOf(err)
	assert.Equal(t, auth.ReasonInactive, reason, "existing tokens stop resolving at once")

	unblocked, err := f.adminSvc.Unblock(ctx, admin, bob.UserID)
	require.NoError(t, err)
	assert.True(t, unblocked.IsActive)
	_, err = f.resolver.Resolve(ctx, bob.Token)
	assert.NoError(t, err)

	assert.Contains(t, f.events.eventTypes(), types.EventUserBlocked)
	assert.Contains(t, f.events.eventTypes(), types.EventUserUnblocked)
}

func TestAdmin_ProtectsAdministrators(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.registerAdmin(t, "root@example.com")
	other := f.registerAdmin(t, "other@example.com")

	_, err := f.adminSvc.Block(ctx, root, other.UserID)
	assert.ErrorIs(t, err, auth.ErrProtectedTarget)
	_, err = f.adminSvc.Unblock(ctx, root, other.UserID)
	assert.ErrorIs(t, err, auth.ErrProtectedTarget)
	assert.ErrorIs(t, f.adminSvc.DeleteUser(ctx, root, other.UserID), auth.ErrForbidden)
	_, err = f.adminSvc.Block(ctx, root, root.UserID)
	assert.ErrorIs(t, err, auth.ErrProtectedTarget, "self included")

	user, err := f.store.Users().GetByID(ctx, other.UserID)
	require.NoError(t, err)
	assert.True(t, user.IsActive)
}

func TestAdmin_MissingTarget(t *testing.T) {
	f := newFixture(t)
	admin := f.registerAdmin(t, "root@example.com")

	_, err := f.adminSvc.Block(context.Background(), admin, 12345)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, f.adminSvc.DeleteUser(context.Background(), admin, 12345), store.ErrNotFound)
}

func TestAdmin_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.registerAdmin(t, "root@example.com")
	bob := f.register(t, "bob@example.com")

	_, err := f.taskSvc.Create(ctx, bob, CreateTaskInput{Title: "orphan?"})
	require.NoError(t, err)
	require.NoError(t, f.authSvc.Logout(ctx, bob))

	require.NoError(t, f.adminSvc.DeleteUser(ctx, admin, bob.UserID))

	stats, err := f.adminSvc.Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 0, stats.TotalTasks)
	assert.Equal(t, 0, f.store.Revocations().Len())
}

func TestAdmin_Stats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.registerAdmin(t, "root@example.com")
	alice := f.register(t, "alice@example.com")
	bob := f.register(t, "bob@example.com")

	for _, in := range []CreateTaskInput{
		{Title: "a"},
		{Title: "b", Status: types.TaskStatusInProgress},
		{Title: "c", Status: types.TaskStatusCompleted},
	} {
		_, err := f.taskSvc.Create(ctx, alice, in)
		require.NoError(t, err)
	}
	_, err := f.adminSvc.Block(ctx, admin, bob.UserID)
	require.NoError(t, err)

	stats, err := f.adminSvc.Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, types.Stats{
		TotalUsers:      3,
		ActiveUsers:     2,
		TotalTasks:      3,
		CompletedTasks:  1,
		PendingTasks:    1,
		InProgressTasks: 1,
	}, stats)
}

func TestAdmin_Snapshots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.registerAdmin(t, "root@example.com")

	_, err := f.adminSvc.SnapshotStats(ctx, admin)
	assert.ErrorIs(t, err, ErrSnapshotsDisabled)
	_, err = f.adminSvc.GetSnapshot(ctx, admin, "20260101T000000Z")
	assert.ErrorIs(t, err, ErrSnapshotsDisabled)

	snaps := &memSnapshots{saved: map[string]types.StatsSnapshot{}}
	svc := NewAdminService(f.store.Users(), f.store.Stats(), snaps, nil, logging.Nop())
	svc.now = func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 700, time.UTC) }

	snap, err := svc.SnapshotStats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, "20260203T040506Z", snap.Name)
	assert.Equal(t, admin.UserID, snap.TakenBy)
	assert.Equal(t, 1, snap.Stats.TotalUsers)

	loaded, err := svc.GetSnapshot(ctx, admin, snap.Name)
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)
}
