package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tudao164/KiemThuPhanMem/internal/auth"
	"github.com/tudao164/KiemThuPhanMem/internal/logging"
	"github.com/tudao164/KiemThuPhanMem/internal/services"
	"github.com/tudao164/KiemThuPhanMem/types"
)

// AdminHandler provides account administration and statistics endpoints.
// Role checks happen in the service so that the 404-before-403 ordering
// holds for every route.
type AdminHandler struct {
	adminService *services.AdminService
	logger       logging.Logger
}

func NewAdminHandler(adminService *services.AdminService, logger logging.Logger) *AdminHandler {
	return &AdminHandler{adminService: adminService, logger: logger}
}

// AdminRouter registers admin routes on the given router.
func AdminRouter(r chi.Router, adminService *services.AdminService, authn *Authenticator, logger logging.Logger) {
	handler := NewAdminHandler(adminService, logger)

	r.Use(authn.RequireAuth)
	r.Get("/users", handler.ListUsers)
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Put("/block", handler.BlockUser)
		r.Put("/unblock", handler.UnblockUser)
		r.Delete("/", handler.DeleteUser)
	})
	r.Get("/stats", handler.Stats)
	r.Post("/stats/snapshots", handler.CreateSnapshot)
	r.Get("/stats/snapshots/{name}", handler.GetSnapshot)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, msgNotAuthenticated)
		return
	}

	users, err := h.adminService.ListUsers(r.Context(), identity)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "user")
		return
	}
	views := make([]types.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *AdminHandler) BlockUser(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *AdminHandler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *AdminHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, msgNotAuthenticated)
		return
	}
	id, err := parseIDParam(r, "userID", "user")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	apply, verb := h.adminService.Block, "blocked"
	if active {
		apply, verb = h.adminService.Unblock, "unblocked"
	}
	user, err := apply(r.Context(), identity, id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "user")
		return
	}

	h.logger.Info(r.Context(), "user "+verb, "user_id", user.ID, "admin_id", identity.UserID)
	writeJSON(w, http.StatusOK, AdminUserResponse{
		Message: fmt.Sprintf("User %s has been %s", user.Email, verb),
		User:    user.View(),
	})
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, msgNotAuthenticated)
		return
	}
	id, err := parseIDParam(r, "userID", "user")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.adminService.DeleteUser(r.Context(), identity, id); err != nil {
		writeServiceError(w, r, h.logger, err, "user")
		return
	}

	h.logger.Info(r.Context(), "user deleted", "user_id", id, "admin_id", identity.UserID)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, msgNotAuthenticated)
		return
	}

	stats, err := h.adminService.Stats(r.Context(), identity)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, msgNotAuthenticated)
		return
	}

	snapshot, err := h.adminService.SnapshotStats(r.Context(), identity)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "snapshot")
		return
	}
	writeJSON(w, http.StatusCreated, snapshot)
}

func (h *AdminHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, msgNotAuthenticated)
		return
	}

	snapshot, err := h.adminService.GetSnapshot(r.Context(), identity, chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, "snapshot")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// AdminUserResponse is returned by block and unblock.
type AdminUserResponse struct {
	Message string         `json:"message"`
	User    types.UserView `json:"user"`
}
