package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arefin/taskboard/internal/service"
)

// AdminHandler serves the admin-only views: the user directory, the global
// task list, and the registration event log. The admin calendar and dashboard
// live on their respective handlers.
type AdminHandler struct {
	auths       *service.AuthService
	tasks       *service.TaskService
	adminNotifs *service.AdminNotificationService
	logger      *slog.Logger
}

func NewAdminHandler(
	auths *service.AuthService,
	tasks *service.TaskService,
	adminNotifs *service.AdminNotificationService,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		auths:       auths,
		tasks:       tasks,
		adminNotifs: adminNotifs,
		logger:      logger,
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auths.ListUsers(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *AdminHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListAll(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *AdminHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.DeleteAny(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
}

func (h *AdminHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.adminNotifs.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.adminNotifs.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "notification marked read"})
}

func (h *AdminHandler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.adminNotifs.MarkAllRead(r.Context()); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "all notifications marked read"})
}

func (h *AdminHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	if err := h.adminNotifs.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "notification deleted"})
}
