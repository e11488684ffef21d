package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/tudao164/KiemThuPhanMem/types"
)

const snapshotPrefix = "stats/"

// ErrInvalidSnapshotName is returned for names that are not of the form
// produced by SnapshotName.
var ErrInvalidSnapshotName = errors.New("invalid snapshot name")

var snapshotNamePattern = regexp.MustCompile(`^[0-9]{8}T[0-9]{6}Z$`)

// SnapshotName derives the snapshot name for a point in time.
func SnapshotName(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// SnapshotKey is the object key of a named snapshot.
func SnapshotKey(name string) (string, error) {
	if !snapshotNamePattern.MatchString(name) {
		return "", ErrInvalidSnapshotName
	}
	return snapshotPrefix + name + ".json", nil
}

// SaveSnapshot writes snapshot as JSON and fills in its object key. An
// empty name is derived from TakenAt.
func (s *Storage) SaveSnapshot(ctx context.Context, snapshot types.StatsSnapshot) (types.StatsSnapshot, error) {
	if snapshot.Name == "" {
		snapshot.Name = SnapshotName(snapshot.TakenAt)
	}
	key, err := SnapshotKey(snapshot.Name)
	if err != nil {
		return types.StatsSnapshot{}, err
	}
	snapshot.ObjectKey = key

	data, err := json.Marshal(snapshot)
	if err != nil {
		return types.StatsSnapshot{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return types.StatsSnapshot{}, fmt.Errorf("put %s: %w", key, err)
	}
	return snapshot, nil
}

// LoadSnapshot reads a snapshot previously written by SaveSnapshot.
func (s *Storage) LoadSnapshot(ctx context.Context, name string) (types.StatsSnapshot, error) {
	key, err := SnapshotKey(name)
	if err != nil {
		return types.StatsSnapshot{}, err
	}
	r, err := s.Get(ctx, key)
	if err != nil {
		return types.StatsSnapshot{}, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return types.StatsSnapshot{}, fmt.Errorf("read %s: %w", key, err)
	}
	var snapshot types.StatsSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return types.StatsSnapshot{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return snapshot, nil
}
