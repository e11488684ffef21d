package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tudao164/KiemThuPhanMem/internal/auth"
	"github.com/tudao164/KiemThuPhanMem/internal/logging"
	"github.com/tudao164/KiemThuPhanMem/types"
)

// StatsRepository computes aggregate counts.
type StatsRepository interface {
	Stats(ctx context.Context) (types.Stats, error)
}

// SnapshotStore persists stats snapshots in object storage. SaveSnapshot
// names the snapshot after its TakenAt time.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot types.StatsSnapshot) (types.StatsSnapshot, error)
	LoadSnapshot(ctx context.Context, name string) (types.StatsSnapshot, error)
}

// AdminService implements account administration and statistics. Every
// method requires the administrator role.
type AdminService struct {
	users     UserRepository
	stats     StatsRepository
	snapshots SnapshotStore
	events    *eventEmitter
	now       func() time.Time
}

// NewAdminService builds the service. A nil snapshots disables the
// snapshot operations.
func NewAdminService(
	users UserRepository,
	stats StatsRepository,
	snapshots SnapshotStore,
	publisher EventPublisher,
	logger logging.Logger,
) *AdminService {
	return &AdminService{
		users:     users,
		stats:     stats,
		snapshots: snapshots,
		events:    newEventEmitter(publisher, logger),
		now:       time.Now,
	}
}

func (s *AdminService) ListUsers(ctx context.Context, identity auth.Identity) ([]types.User, error) {
	if err := auth.AllowAdmin(identity); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

func (s *AdminService) Block(ctx context.Context, identity auth.Identity, userID int) (types.User, error) {
	return s.setActive(ctx, identity, userID, false)
}

func (s *AdminService) Unblock(ctx context.Context, identity auth.Identity, userID int) (types.User, error) {
	return s.setActive(ctx, identity, userID, true)
}

func (s *AdminService) setActive(ctx context.Context, identity auth.Identity, userID int, active bool) (types.User, error) {
	if _, err := s.mutableTarget(ctx, identity, userID); err != nil {
		return types.User{}, err
	}
	user, err := s.users.SetActive(ctx, userID, active)
	if err != nil {
		return types.User{}, err
	}

	eventType := types.EventUserBlocked
	if active {
		eventType = types.EventUserUnblocked
	}
	s.events.emit(ctx, eventType, user, identity.UserID)
	return user, nil
}

// DeleteUser removes a non-admin account together with its tasks and
// revocation entries.
func (s *AdminService) DeleteUser(ctx context.Context, identity auth.Identity, userID int) error {
	target, err := s.mutableTarget(ctx, identity, userID)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.events.emit(ctx, types.EventUserDeleted, target, identity.UserID)
	return nil
}

// mutableTarget loads the target of a destructive operation: 404 before 403.
func (s *AdminService) mutableTarget(ctx context.Context, identity auth.Identity, userID int) (types.User, error) {
	if err := auth.AllowAdmin(identity); err != nil {
		return types.User{}, err
	}
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return types.User{}, err
	}
	if err := auth.AllowTargetMutation(target); err != nil {
		return types.User{}, err
	}
	return target, nil
}

func (s *AdminService) Stats(ctx context.Context, identity auth.Identity) (types.Stats, error) {
	if err := auth.AllowAdmin(identity); err != nil {
		return types.Stats{}, err
	}
	return s.stats.Stats(ctx)
}

// SnapshotStats exports the current stats to object storage.
func (s *AdminService) SnapshotStats(ctx context.Context, identity auth.Identity) (types.StatsSnapshot, error) {
	if err := auth.AllowAdmin(identity); err != nil {
		return types.StatsSnapshot{}, err
	}
	if s.snapshots == nil {
		return types.StatsSnapshot{}, ErrSnapshotsDisabled
	}
	stats, err := s.stats.Stats(ctx)
	if err != nil {
		return types.StatsSnapshot{}, fmt.Errorf("compute stats: %w", err)
	}
	takenAt := s.now().UTC().Truncate(time.Second)
	return s.snapshots.SaveSnapshot(ctx, types.StatsSnapshot{
		TakenAt: takenAt,
		TakenBy: identity.UserID,
		Stats:   stats,
	})
}

func (s *AdminService) GetSnapshot(ctx context.Context, identity auth.Identity, name string) (types.StatsSnapshot, error) {
	if err := auth.AllowAdmin(identity); err != nil {
		return types.StatsSnapshot{}, err
	}
	if s.snapshots == nil {
		return types.StatsSnapshot{}, ErrSnapshotsDisabled
	}
	return s.snapshots.LoadSnapshot(ctx, name)
}
