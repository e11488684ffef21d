package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tudao164/KiemThuPhanMem/internal/auth"
	"github.com/tudao164/KiemThuPhanMem/internal/logging"
	"github.com/tudao164/KiemThuPhanMem/internal/services"
	"github.com/tudao164/KiemThuPhanMem/types"
)

// Accepted due_date layouts. Values without a zone are taken as UTC.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// TaskHandler provides HTTP handlers for the caller's tasks.
type TaskHandler struct {
	taskService *services.TaskService
	logger      logging.Logger
}

// NewTaskHandler constructs a handler with the provided service.
func NewTaskHandler(taskService *services.TaskService, logger logging.Logger) *TaskHandler {
	return &TaskHandler{taskService: taskService, logger: logger}
}

// TaskRouter registers task routes on the given router. Every route
// requires authentication.
func TaskRouter(r chi.Router, taskService *services.TaskService, authn *Authenticator, logger logging.Logger) {
	handler := NewTaskHandler(taskService, logger)

	r.Use(authn.RequireAuth)
	r.Post("/", handler.CreateTask)
	r.Get("/", handler.ListTasks)
	r.Route("/{taskID}", func(r chi.Router) {
		r.Get("/", handler.GetTask)
		r.Put("/", handler.UpdateTask)
		r.Delete("/", handler.DeleteTask)
	})
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, msgNotAuthenticated)
		return
	}

	var req CreateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	in := services.CreateTaskInput{
		Title:    req.Title,
		DueDate:  req.DueDate.Value,
		Status:   req.Status,
		Priority: req.Priority,
	}
	if req.Description != nil {
		in.Description = *req.Description
	}

	task, err := h.taskService.Create(r.Context(), identity, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "task")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, msgNotAuthenticated)
		return
	}

	q := r.URL.Query()
	filter := types.TaskFilter{
		Status:    types.TaskStatus(strings.TrimSpace(q.Get("status"))),
		Priority:  types.TaskPriority(strings.TrimSpace(q.Get("priority"))),
		Search:    strings.TrimSpace(q.Get("search")),
		SortBy:    strings.TrimSpace(q.Get("sort_by")),
		SortOrder: strings.TrimSpace(q.Get("sort_order")),
	}

	tasks, err := h.taskService.List(r.Context(), identity, filter)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "task")
		return
	}
	if tasks == nil {
		tasks = []types.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, msgNotAuthenticated)
		return
	}
	id, err := parseIDParam(r, "taskID", "task")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.taskService.Get(r.Context(), identity, id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, msgNotAuthenticated)
		return
	}
	id, err := parseIDParam(r, "taskID", "task")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	task, err := h.taskService.Update(r.Context(), identity, id, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate.Value,
		DueDateSet:  req.DueDate.Set,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, "task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, msgNotAuthenticated)
		return
	}
	id, err := parseIDParam(r, "taskID", "task")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.taskService.Delete(r.Context(), identity, id); err != nil {
		writeServiceError(w, r, h.logger, err, "task")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	DueDate     optionalTime       `json:"due_date"`
	Status      types.TaskStatus   `json:"status"`
	Priority    types.TaskPriority `json:"priority"`
}

// UpdateTaskRequest is the body of PUT /tasks/{taskID}. Absent fields are
// left unchanged; an explicit null due_date clears it.
type UpdateTaskRequest struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	DueDate     optionalTime        `json:"due_date"`
	Status      *types.TaskStatus   `json:"status"`
	Priority    *types.TaskPriority `json:"priority"`
}

// optionalTime tells an absent JSON field apart from an explicit null.
type optionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *optionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.New("due_date must be a string or null")
	}
	t, err := parseDueDate(raw)
	if err != nil {
		return err
	}
	o.Value = &t
	return nil
}

func parseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("due_date must be an RFC 3339 timestamp or a date")
}
