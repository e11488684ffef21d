package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tudao164/KiemThuPhanMem/internal/store"
	"github.com/tudao164/KiemThuPhanMem/types"
)

type memRevocationStore struct {
	mu      sync.Mutex
	entries map[string]types.RevokedToken
	err     error
}

func newMemRevocationStore() *memRevocationStore {
	return &memRevocationStore{entries: make(map[string]types.RevokedToken)}
}

func (m *memRevocationStore) Insert(_ context.Context, entry types.RevokedToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.entries[entry.TokenHash]; ok {
		return store.ErrConflict
	}
	entry.ID = len(m.entries) + 1
	m.entries[entry.TokenHash] = entry
	return nil
}

func (m *memRevocationStore) Exists(_ context.Context, tokenHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.entries[tokenHash]
	return ok, nil
}

func (m *memRevocationStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, e := range m.entries {
		if !e.ExpiresAt.After(now) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

type memUsers struct {
	users map[int]types.User
	err   error
}

func (m *memUsers) GetByID(_ context.Context, id int) (types.User, error) {
	if m.err != nil {
		return types.User{}, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

var errStorageDown = errors.New("storage down")
