// Package repository defines the storage interfaces the service layer depends
// on. The sqlite subpackage provides the concrete implementation; tests use
// in-memory fakes.
package repository

import (
	"context"

	"github.com/arefin/taskboard/internal/model"
)

type UserRepository interface {
	// Create inserts a new user; returns apperror.Conflict when the email is
	// already registered (emails are compared case-insensitively).
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
	GetByResetToken(ctx context.Context, token string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	List(ctx context.Context) ([]model.User, error)
}

type VerificationTokenRepository interface {
	// Replace deletes any existing token for the email and inserts this one.
	Replace(ctx context.Context, token *model.VerificationToken) error
	GetByEmail(ctx context.Context, email string) (*model.VerificationToken, error)
	IncrementAttempts(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id string) (*model.Task, error)
	// ListByUser returns the user's tasks, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Task, error)
	// ListOpenByUser returns the user's non-completed tasks.
	ListOpenByUser(ctx context.Context, userID string) ([]model.Task, error)
	// ListAll returns every task, newest first (admin reads).
	ListAll(ctx context.Context) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id string) error
	// CountByCategory counts the user's tasks whose category string equals name.
	CountByCategory(ctx context.Context, userID, name string) (int, error)
}

type CategoryRepository interface {
	// Create inserts a category; returns apperror.Conflict when the user
	// already has one with the same name.
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id string) (*model.Category, error)
	ListByUser(ctx context.Context, userID string) ([]model.Category, error)
	// Update writes name and color; returns apperror.Conflict on a duplicate
	// name for the same user.
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id string) error
}

type NotificationRepository interface {
	// InsertIfAbsent inserts the notification unless a row with the same
	// (userID, taskID, type) already exists. Returns true when a row was
	// inserted. This is the atomic insert-if-absent concurrent reconciles
	// rely on.
	InsertIfAbsent(ctx context.Context, n *model.Notification) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	// ListByUser returns the user's notifications, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
	DeleteByTask(ctx context.Context, taskID string) error
	DeleteAllByUser(ctx context.Context, userID string) error
}

type AdminNotificationRepository interface {
	Create(ctx context.Context, n *model.AdminNotification) error
	GetByID(ctx context.Context, id string) (*model.AdminNotification, error)
	// List returns all entries, newest first.
	List(ctx context.Context) ([]model.AdminNotification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
}
