package model

import "time"

// NotificationType classifies a task reminder.
type NotificationType string

const (
	NotificationOverdue  NotificationType = "overdue"
	NotificationDueToday NotificationType = "due_today"
	NotificationDueSoon  NotificationType = "due_soon"
)

// Notification is a per-user task reminder derived from task due dates.
// At most one row exists per (UserID, TaskID, Type); the store enforces this
// with a unique index so concurrent reconciles cannot duplicate rows.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	TaskID    string           `json:"taskId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Priority  Priority         `json:"priority"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}
