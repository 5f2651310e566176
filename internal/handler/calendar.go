package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arefin/taskboard/internal/apperror"
	"github.com/arefin/taskboard/internal/service"
)

// CalendarHandler serves the month and day calendar views. The month defaults
// to the current one when the query parameters are absent.
type CalendarHandler struct {
	calendar *service.CalendarService
	logger   *slog.Logger
}

func NewCalendarHandler(calendar *service.CalendarService, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, logger: logger}
}

func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	year, month, err := monthParams(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	view, err := h.calendar.Month(r.Context(), sess.UserID, year, month)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CalendarHandler) Day(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	date, err := dateParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	view, err := h.calendar.Day(r.Context(), sess.UserID, date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CalendarHandler) AdminMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := monthParams(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	view, err := h.calendar.MonthAll(r.Context(), year, month)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CalendarHandler) AdminDay(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	view, err := h.calendar.DayAll(r.Context(), date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func monthParams(r *http.Request) (int, time.Month, error) {
	now := time.Now()
	year, month := now.Year(), now.Month()

	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1970 || n > 9999 {
			return 0, 0, apperror.ValidationFailed("year", "year must be a four-digit number")
		}
		year = n
	}
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			return 0, 0, apperror.ValidationFailed("month", "month must be between 1 and 12")
		}
		month = time.Month(n)
	}
	return year, month, nil
}

func dateParam(r *http.Request) (time.Time, error) {
	raw := chi.URLParam(r, "date")
	date, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, apperror.ValidationFailed("date", "date must be formatted YYYY-MM-DD")
	}
	return date, nil
}
