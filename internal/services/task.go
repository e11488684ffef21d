package services

import (
	"context"
	"strings"
	"time"

	"github.com/tudao164/KiemThuPhanMem/internal/auth"
	"github.com/tudao164/KiemThuPhanMem/types"
)

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	List(ctx context.Context, filter types.TaskFilter) ([]types.Task, error)
	Get(ctx context.Context, id int) (types.Task, error)
	Create(ctx context.Context, task types.Task) (types.Task, error)
	Update(ctx context.Context, task types.Task) (types.Task, error)
	Delete(ctx context.Context, id int) error
}

// CreateTaskInput holds the fields of a new task. Empty status and
// priority take their defaults.
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Status      types.TaskStatus
	Priority    types.TaskPriority
}

// UpdateTaskInput is a partial update: nil fields are left unchanged.
// DueDateSet with a nil DueDate clears the due date.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	DueDateSet  bool
	Status      *types.TaskStatus
	Priority    *types.TaskPriority
}

// TaskService encapsulates task use-cases. Every operation is scoped by the
// caller's identity.
type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) Create(ctx context.Context, identity auth.Identity, in CreateTaskInput) (types.Task, error) {
	in.Title = strings.TrimSpace(in.Title)

	errs := fieldErrors{}
	validateTitle(errs, in.Title)
	validateStatus(errs, "status", in.Status)
	validatePriority(errs, "priority", in.Priority)
	if err := errs.err(); err != nil {
		return types.Task{}, err
	}

	task := types.Task{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Status:      in.Status,
		Priority:    in.Priority,
		UserID:      identity.UserID,
	}
	if task.Status == "" {
		task.Status = types.TaskStatusPending
	}
	if task.Priority == "" {
		task.Priority = types.TaskPriorityMedium
	}
	return s.repo.Create(ctx, task)
}

// List returns the caller's own tasks only, administrators included.
func (s *TaskService) List(ctx context.Context, identity auth.Identity, filter types.TaskFilter) ([]types.Task, error) {
	errs := fieldErrors{}
	validateStatus(errs, "status", filter.Status)
	validatePriority(errs, "priority", filter.Priority)
	if err := errs.err(); err != nil {
		return nil, err
	}
	filter.UserID = identity.UserID
	return s.repo.List(ctx, filter)
}

// Get returns a task the caller owns, or any task for an administrator.
func (s *TaskService) Get(ctx context.Context, identity auth.Identity, id int) (types.Task, error) {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Task{}, err
	}
	if err := auth.AllowSelfOrAdmin(identity, task.UserID); err != nil {
		return types.Task{}, err
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, identity auth.Identity, id int, in UpdateTaskInput) (types.Task, error) {
	task, err := s.Get(ctx, identity, id)
	if err != nil {
		return types.Task{}, err
	}

	errs := fieldErrors{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		validateTitle(errs, title)
		task.Title = title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.DueDateSet {
		task.DueDate = in.DueDate
	}
	if in.Status != nil {
		if *in.Status == "" {
			errs.add("status", "must be one of pending, in_progress, completed")
		}
		validateStatus(errs, "status", *in.Status)
		task.Status = *in.Status
	}
	if in.Priority != nil {
		if *in.Priority == "" {
			errs.add("priority", "must be one of low, medium, high")
		}
		validatePriority(errs, "priority", *in.Priority)
		task.Priority = *in.Priority
	}
	if err := errs.err(); err != nil {
		return types.Task{}, err
	}

	return s.repo.Update(ctx, task)
}

func (s *TaskService) Delete(ctx context.Context, identity auth.Identity, id int) error {
	if _, err := s.Get(ctx, identity, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
