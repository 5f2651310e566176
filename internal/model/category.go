package model

import "time"

// Category is a user-owned task label. Name is unique per user
// (case-sensitive, after trimming). TaskCount is not stored; it is computed
// on read by counting the user's tasks whose Category equals Name.
type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Color     string    `json:"color"` // hex string, e.g. "#10b981"
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryWithCount is the read-side shape returned by category listings.
type CategoryWithCount struct {
	Category
	TaskCount int `json:"taskCount"`
}
