// Package handler implements the HTTP layer: request decoding, session
// extraction, and mapping service errors onto the response envelope.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/arefin/taskboard/internal/apperror"
	"github.com/arefin/taskboard/internal/auth"
)

// errorResponse is the uniform error envelope. Field is only present on
// validation errors.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("encoding response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Unrecognized errors
// are logged and reported as a generic 500 so internals never leak to clients.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status, errType := statusFor(appErr.Err)
		writeJSON(w, status, errorResponse{
			Error:   errType,
			Message: appErr.Message,
			Field:   appErr.Field,
		})
		return
	}

	logger.Error("internal error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:   "internal",
		Message: "something went wrong",
	})
}

func statusFor(sentinel error) (int, string) {
	switch {
	case errors.Is(sentinel, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(sentinel, apperror.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(sentinel, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(sentinel, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(sentinel, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// decodeJSON reads the request body into dst, treating malformed input as a
// validation error.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON body")
	}
	return nil
}

// requireSession extracts the session stored by the auth middleware, writing
// a 401 when it is missing.
func requireSession(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (auth.Session, bool) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, logger, apperror.Unauthorized("valid authentication required"))
	}
	return sess, ok
}
