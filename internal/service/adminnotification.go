package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arefin/taskboard/internal/model"
	"github.com/arefin/taskboard/internal/repository"
)

// AdminNotificationService reads and manages the admin event log. Entries are
// written by other services (registration, for now); this service only serves
// the admin-facing views.
type AdminNotificationService struct {
	notifications repository.AdminNotificationRepository
	logger        *slog.Logger
}

func NewAdminNotificationService(
	notifications repository.AdminNotificationRepository,
	logger *slog.Logger,
) *AdminNotificationService {
	return &AdminNotificationService{notifications: notifications, logger: logger}
}

// AdminNotificationList is the read-side shape of GET /api/admin/notifications.
type AdminNotificationList struct {
	Notifications []model.AdminNotification `json:"notifications"`
	UnreadCount   int                       `json:"unreadCount"`
}

// List returns the full event log, newest first.
func (s *AdminNotificationService) List(ctx context.Context) (*AdminNotificationList, error) {
	notifications, err := s.notifications.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing admin notifications: %w", err)
	}
	if notifications == nil {
		notifications = []model.AdminNotification{}
	}

	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}
	return &AdminNotificationList{Notifications: notifications, UnreadCount: unread}, nil
}

func (s *AdminNotificationService) MarkRead(ctx context.Context, id string) error {
	return s.notifications.MarkRead(ctx, id)
}

func (s *AdminNotificationService) MarkAllRead(ctx context.Context) error {
	return s.notifications.MarkAllRead(ctx)
}

func (s *AdminNotificationService) Delete(ctx context.Context, id string) error {
	return s.notifications.Delete(ctx, id)
}
