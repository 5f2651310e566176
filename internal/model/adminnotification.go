package model

import "time"

// AdminNotificationType identifies the event behind an admin log entry.
type AdminNotificationType string

const (
	AdminNotificationUserRegistration AdminNotificationType = "user_registration"
)

// AdminNotification is an append-only event visible to admins only, with
// read/unread state. User name and email are denormalized at write time so the
// entry stays meaningful even if the account changes later.
type AdminNotification struct {
	ID        string                `json:"id"`
	Type      AdminNotificationType `json:"type"`
	UserID    string                `json:"userId"`
	UserName  string                `json:"userName"`
	UserEmail string                `json:"userEmail"`
	Message   string                `json:"message"`
	IsRead    bool                  `json:"isRead"`
	Metadata  map[string]string     `json:"metadata,omitempty"`
	CreatedAt time.Time             `json:"createdAt"`
}
