package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tudao164/KiemThuPhanMem/internal/auth"
	"github.com/tudao164/KiemThuPhanMem/internal/store"
	"github.com/tudao164/KiemThuPhanMem/types"
)

func ptr[T any](v T) *T { return &v }

func TestTaskCreate_Defaults(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice@example.com")

	task, err := f.taskSvc.Create(context.Background(), alice, CreateTaskInput{Title: "  Buy milk  "})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, types.TaskStatusPending, task.Status)
	assert.Equal(t, types.TaskPriorityMedium, task.Priority)
	assert.Equal(t, alice.UserID, task.UserID)
}

func TestTaskCreate_Validation(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice@example.com")

	_, err := f.taskSvc.Create(context.Background(), alice, CreateTaskInput{
		Title:    strings.Repeat("t", 201),
		Status:   "done",
		Priority: "urgent",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)

	_, err = f.taskSvc.Create(context.Background(), alice, CreateTaskInput{Title: strings.Repeat("é", 200)})
	assert.NoError(t, err, "title length counts characters")
}

func TestTaskOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	bob := f.register(t, "bob@example.com")
	admin := f.registerAdmin(t, "root@example.com")

	task, err := f.taskSvc.Create(ctx, alice, CreateTaskInput{Title: "Alice's"})
	require.NoError(t, err)

	_, err = f.taskSvc.Get(ctx, bob, task.ID)
	assert.ErrorIs(t, err, auth.ErrForbidden)
	_, err = f.taskSvc.Update(ctx, bob, task.ID, UpdateTaskInput{Title: ptr("hijacked")})
	assert.ErrorIs(t, err, auth.ErrForbidden)
	assert.ErrorIs(t, f.taskSvc.Delete(ctx, bob, task.ID), auth.ErrForbidden)

	got, err := f.taskSvc.Get(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice's", got.Title)

	bobs, err := f.taskSvc.List(ctx, bob, types.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, bobs)

	_, err = f.taskSvc.Get(ctx, admin, task.ID)
	assert.NoError(t, err)
	admins, err := f.taskSvc.List(ctx, admin, types.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, admins, "listing is always scoped to the caller")

	require.NoError(t, f.taskSvc.Delete(ctx, admin, task.ID))
	_, err = f.taskSvc.Get(ctx, alice, task.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTaskGet_NotFoundBeforeForbidden(t *testing.T) {
	f := newFixture(t)
	bob := f.register(t, "bob@example.com")

	_, err := f.taskSvc.Get(context.Background(), bob, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTaskUpdate_Partial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	due := time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)

	task, err := f.taskSvc.Create(ctx, alice, CreateTaskInput{
		Title:       "Buy milk",
		Description: "2 litres",
		DueDate:     &due,
		Priority:    types.TaskPriorityHigh,
	})
	require.NoError(t, err)

	updated, err := f.taskSvc.Update(ctx, alice, task.ID, UpdateTaskInput{Status: ptr(types.TaskStatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusCompleted, updated.Status)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.Equal(t, "2 litres", updated.Description)
	assert.Equal(t, types.TaskPriorityHigh, updated.Priority)
	require.NotNil(t, updated.DueDate)

	cleared, err := f.taskSvc.Update(ctx, alice, task.ID, UpdateTaskInput{DueDateSet: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.DueDate)

	_, err = f.taskSvc.Update(ctx, alice, task.ID, UpdateTaskInput{Title: ptr("   "), Priority: ptr(types.TaskPriority(""))})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "priority")
}

func TestTaskList_FilterSearchSort(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")

	inputs := []CreateTaskInput{
		{Title: "Buy milk", Priority: types.TaskPriorityLow},
		{Title: "Write report", Description: "quarterly MILK numbers", Priority: types.TaskPriorityHigh},
		{Title: "Call mom", Status: types.TaskStatusInProgress},
		{Title: "100% done", Status: types.TaskStatusCompleted},
	}
	for _, in := range inputs {
		_, err := f.taskSvc.Create(ctx, alice, in)
		require.NoError(t, err)
	}

	pending, err := f.taskSvc.List(ctx, alice, types.TaskFilter{Status: types.TaskStatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	milk, err := f.taskSvc.List(ctx, alice, types.TaskFilter{Search: "milk", SortBy: types.TaskSortPriority, SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, milk, 2)
	assert.Equal(t, "Buy milk", milk[0].Title)
	assert.Equal(t, "Write report", milk[1].Title)

	byStatus, err := f.taskSvc.List(ctx, alice, types.TaskFilter{SortBy: types.TaskSortStatus, SortOrder: "desc"})
	require.NoError(t, err)
	require.Len(t, byStatus, 4)
	assert.Equal(t, types.TaskStatusCompleted, byStatus[0].Status)
	assert.Equal(t, types.TaskStatusPending, byStatus[3].Status)

	_, err = f.taskSvc.List(ctx, alice, types.TaskFilter{Status: "archived"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestTaskLifecycle_PendingThenCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")

	task, err := f.taskSvc.Create(ctx, alice, CreateTaskInput{Title: "Buy milk"})
	require.NoError(t, err)

	pending, err := f.taskSvc.List(ctx, alice, types.TaskFilter{Status: types.TaskStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, task.ID, pending[0].ID)

	_, err = f.taskSvc.Update(ctx, alice, task.ID, UpdateTaskInput{Status: ptr(types.TaskStatusCompleted)})
	require.NoError(t, err)

	pending, err = f.taskSvc.List(ctx, alice, types.TaskFilter{Status: types.TaskStatusPending})
	require.NoError(t, err)
	assert.Empty(t, pending)

	completed, err := f.taskSvc.List(ctx, alice, types.TaskFilter{Status: types.TaskStatusCompleted})
	require.NoError(t, err)
	assert.Len(t, completed, 1)
}
