package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tudao164/KiemThuPhanMem/types"
)

func TestTasksList_DueDateNullsLast(t *testing.T) {
	ctx := context.Background()
	tasks := New().Tasks()
	early := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(48 * time.Hour)

	for _, task := range []types.Task{
		{UserID: 1, Title: "undated", Status: types.TaskStatusPending, Priority: types.TaskPriorityMedium},
		{UserID: 1, Title: "late", Status: types.TaskStatusPending, Priority: types.TaskPriorityMedium, DueDate: &late},
		{UserID: 1, Title: "early", Status: types.TaskStatusPending, Priority: types.TaskPriorityMedium, DueDate: &early},
	} {
		_, err := tasks.Create(ctx, task)
		require.NoError(t, err)
	}

	titles := func(order string) []string {
		list, err := tasks.List(ctx, types.TaskFilter{UserID: 1, SortBy: types.TaskSortDueDate, SortOrder: order})
		require.NoError(t, err)
		out := make([]string, 0, len(list))
		for _, task := range list {
			out = append(out, task.Title)
		}
		return out
	}

	assert.Equal(t, []string{"early", "late", "undated"}, titles("asc"))
	assert.Equal(t, []string{"late", "early", "undated"}, titles("desc"))
}
