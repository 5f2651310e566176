package model

import "time"

// Priority of a task. Also reused for notification priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriority reports whether p is one of the known priorities.
func ValidPriority(p Priority) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// PriorityRank orders priorities for sorting (high first).
func PriorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Status of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in progress"
	StatusCompleted  Status = "completed"
)

// ValidStatus reports whether s is one of the known statuses.
func ValidStatus(s Status) bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusCompleted
}

// Task is a user-owned todo item. Category is free text matched against
// Category.Name by string equality. It is not a foreign key, and renaming a
// category does not rewrite tasks.
type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	DueDate     time.Time `json:"dueDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LocalDay truncates t to local calendar midnight. All date-only comparisons
// (notification classification, calendar bucketing) go through this so that a
// task due at 23:00 and one due at 09:00 land on the same day.
func LocalDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsPastDue is the time-of-day-sensitive overdue predicate used by dashboard
// statistics: due strictly before now and not completed.
//
// This is intentionally distinct from IsOverdueByDate; the two produce
// different counts for a task due earlier today, and both behaviors are
// observable.
func (t *Task) IsPastDue(now time.Time) bool {
	return t.Status != StatusCompleted && t.DueDate.Before(now)
}

// IsOverdueByDate is the date-only overdue predicate used by the notification
// deriver: due on a calendar day strictly before today and not completed.
func (t *Task) IsOverdueByDate(now time.Time) bool {
	return t.Status != StatusCompleted && LocalDay(t.DueDate).Before(LocalDay(now))
}
