// Package memstore is an in-memory implementation of the repositories in
// internal/store, used by service and handler tests. It mirrors the
// Postgres semantics that callers depend on: unique emails, unique token
// hashes, cascading user deletes and the task listing order.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tudao164/KiemThuPhanMem/internal/store"
	"github.com/tudao164/KiemThuPhanMem/types"
)

// Store holds every table behind one lock.
type Store struct {
	mu       sync.Mutex
	nextUser int
	nextTask int
	nextRev  int
	users    map[int]types.User
	tasks    map[int]types.Task
	revoked  map[string]types.RevokedToken
}

func New() *Store {
	return &Store{
		users:   make(map[int]types.User),
		tasks:   make(map[int]types.Task),
		revoked: make(map[string]types.RevokedToken),
	}
}

func (s *Store) Users() *Users             { return &Users{s: s} }
func (s *Store) Tasks() *Tasks             { return &Tasks{s: s} }
func (s *Store) Revocations() *Revocations { return &Revocations{s: s} }
func (s *Store) Stats() *Stats             { return &Stats{s: s} }

// Users implements the user repository.
type Users struct{ s *Store }

func (u *Users) GetByID(_ context.Context, id int) (types.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (u *Users) GetByEmail(_ context.Context, email string) (types.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, user := range u.s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (u *Users) Create(_ context.Context, user types.User) (types.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, existing := range u.s.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}
	u.s.nextUser++
	now := time.Now().UTC()
	user.ID = u.s.nextUser
	user.CreatedAt = now
	user.UpdatedAt = now
	u.s.users[user.ID] = user
	return user, nil
}

func (u *Users) List(_ context.Context) ([]types.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	users := make([]types.User, 0, len(u.s.users))
	for _, user := range u.s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (u *Users) SetActive(_ context.Context, id int, active bool) (types.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	user.IsActive = active
	user.UpdatedAt = time.Now().UTC()
	u.s.users[id] = user
	return user, nil
}

func (u *Users) Delete(_ context.Context, id int) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, ok := u.s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(u.s.users, id)
	for tid, task := range u.s.tasks {
		if task.UserID == id {
			delete(u.s.tasks, tid)
		}
	}
	for hash, entry := range u.s.revoked {
		if entry.UserID == id {
			delete(u.s.revoked, hash)
		}
	}
	return nil
}

// Tasks implements the task repository.
type Tasks struct{ s *Store }

func (t *Tasks) List(_ context.Context, filter types.TaskFilter) ([]types.Task, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	tasks := make([]types.Task, 0)
	for _, task := range t.s.tasks {
		if filter.UserID > 0 && task.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && task.Priority != filter.Priority {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(task.Title), search) &&
			!strings.Contains(strings.ToLower(task.Description), search) {
			continue
		}
		tasks = append(tasks, task)
	}

	asc := strings.EqualFold(filter.SortOrder, "asc")
	sort.SliceStable(tasks, func(i, j int) bool {
		// Tasks without a due date sort last in either direction.
		if filter.SortBy == types.TaskSortDueDate && (tasks[i].DueDate == nil) != (tasks[j].DueDate == nil) {
			return tasks[j].DueDate == nil
		}
		c := compareTasks(tasks[i], tasks[j], filter.SortBy)
		if c == 0 {
			c = tasks[i].ID - tasks[j].ID
		}
		if asc {
			return c < 0
		}
		return c > 0
	})
	return tasks, nil
}

var (
	priorityRank = map[types.TaskPriority]int{types.TaskPriorityLow: 1, types.TaskPriorityMedium: 2, types.TaskPriorityHigh: 3}
	statusRank   = map[types.TaskStatus]int{types.TaskStatusPending: 1, types.TaskStatusInProgress: 2, types.TaskStatusCompleted: 3}
)

func compareTasks(a, b types.Task, sortBy string) int {
	switch sortBy {
	case types.TaskSortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case types.TaskSortDueDate:
		if a.DueDate == nil || b.DueDate == nil {
			return 0
		}
		return a.DueDate.Compare(*b.DueDate)
	case types.TaskSortPriority:
		return priorityRank[a.Priority] - priorityRank[b.Priority]
	case types.TaskSortStatus:
		return statusRank[a.Status] - statusRank[b.Status]
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func (t *Tasks) Get(_ context.Context, id int) (types.Task, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	task, ok := t.s.tasks[id]
	if !ok {
		return types.Task{}, store.ErrNotFound
	}
	return task, nil
}

func (t *Tasks) Create(_ context.Context, task types.Task) (types.Task, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.nextTask++
	now := time.Now().UTC()
	task.ID = t.s.nextTask
	task.CreatedAt = now
	task.UpdatedAt = now
	t.s.tasks[task.ID] = task
	return task, nil
}

func (t *Tasks) Update(_ context.Context, task types.Task) (types.Task, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	existing, ok := t.s.tasks[task.ID]
	if !ok {
		return types.Task{}, store.ErrNotFound
	}
	task.UserID = existing.UserID
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = time.Now().UTC()
	t.s.tasks[task.ID] = task
	return task, nil
}

func (t *Tasks) Delete(_ context.Context, id int) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.s.tasks[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.s.tasks, id)
	return nil
}

// Revocations implements the revocation ledger store.
type Revocations struct{ s *Store }

func (r *Revocations) Insert(_ context.Context, entry types.RevokedToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.revoked[entry.TokenHash]; ok {
		return store.ErrConflict
	}
	r.s.nextRev++
	entry.ID = r.s.nextRev
	r.s.revoked[entry.TokenHash] = entry
	return nil
}

func (r *Revocations) Exists(_ context.Context, tokenHash string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.revoked[tokenHash]
	return ok, nil
}

func (r *Revocations) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for hash, entry := range r.s.revoked {
		if !entry.ExpiresAt.After(now) {
			delete(r.s.revoked, hash)
			n++
		}
	}
	return n, nil
}

// Len returns the number of ledger entries.
func (r *Revocations) Len() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.revoked)
}

// Stats implements the stats repository.
type Stats struct{ s *Store }

func (st *Stats) Stats(_ context.Context) (types.Stats, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	var stats types.Stats
	for _, user := range st.s.users {
		stats.TotalUsers++
		if user.IsActive {
			stats.ActiveUsers++
		}
	}
	for _, task := range st.s.tasks {
		stats.TotalTasks++
		switch task.Status {
		case types.TaskStatusCompleted:
			stats.CompletedTasks++
		case types.TaskStatusPending:
			stats.PendingTasks++
		case types.TaskStatusInProgress:
			stats.InProgressTasks++
		}
	}
	return stats, nil
}
