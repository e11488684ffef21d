package types

import "time"

// Stats holds system-wide aggregate counts shown to administrators.
type Stats struct {
	TotalUsers      int `json:"total_users"`
	ActiveUsers     int `json:"active_users"`
	TotalTasks      int `json:"total_tasks"`
	CompletedTasks  int `json:"completed_tasks"`
	PendingTasks    int `json:"pending_tasks"`
	InProgressTasks int `json:"in_progress_tasks"`
}

// StatsSnapshot is a point-in-time copy of Stats exported to object storage.
type StatsSnapshot struct {
	Name      string    `json:"name"`
	TakenAt   time.Time `json:"taken_at"`
	TakenBy   int       `json:"taken_by"`
	Stats     Stats     `json:"stats"`
	ObjectKey string    `json:"object_key"`
}
