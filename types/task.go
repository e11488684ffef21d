package types

import "time"

// TaskStatus is the progress state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// TaskPriority is the relative importance of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

// Task is a personal to-do record owned by a single user.
type Task struct {
	// ID is the unique identifier of the task.
	ID int `json:"id" db:"id"`

	// Title is a short summary of the task (1 to 200 characters).
	Title string `json:"title" db:"title"`

	// Description is optional free-form text.
	Description string `json:"description" db:"description"`

	// DueDate is the optional deadline of the task.
	DueDate *time.Time `json:"due_date" db:"due_date"`

	// Status tracks task progress.
	Status TaskStatus `json:"status" db:"status"`

	// Priority ranks the task against the owner's other tasks.
	Priority TaskPriority `json:"priority" db:"priority"`

	// UserID identifies the owner of the task.
	UserID int `json:"user_id" db:"user_id"`

	// CreatedAt is the timestamp when the task was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the task.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Sortable task columns.
const (
	TaskSortCreatedAt = "created_at"
	TaskSortUpdatedAt = "updated_at"
	TaskSortDueDate   = "due_date"
	TaskSortPriority  = "priority"
	TaskSortStatus    = "status"
)

// TaskFilter narrows and orders a task listing.
// Zero values mean "no filter"; an unknown SortBy falls back to created_at
// and anything other than "asc" sorts descending.
type TaskFilter struct {
	UserID    int
	Status    TaskStatus
	Priority  TaskPriority
	Search    string
	SortBy    string
	SortOrder string
}
