package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/arefin/taskboard/internal/apperror"
	"github.com/arefin/taskboard/internal/model"
	"github.com/arefin/taskboard/internal/repository"
)

// dueSoonWindowDays: tasks due strictly after today but within this many days
// get a due_soon reminder.
const dueSoonWindowDays = 3

// NotificationService derives per-user task reminders from due dates and
// reconciles the stored notification set to match on every read.
type NotificationService struct {
	notifications repository.NotificationRepository
	tasks         repository.TaskRepository
	logger        *slog.Logger
	now           func() time.Time
}

func NewNotificationService(
	notifications repository.NotificationRepository,
	tasks repository.TaskRepository,
	logger *slog.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		tasks:         tasks,
		logger:        logger,
		now:           time.Now,
	}
}

// classify maps a non-completed task onto its current notification, if any.
// All comparisons are date-only: a task due at 09:00 and one due at 23:00 of
// the same calendar day classify identically.
func classify(task *model.Task, today time.Time) (*model.Notification, bool) {
	taskDay := model.LocalDay(task.DueDate)
	threshold := today.AddDate(0, 0, dueSoonWindowDays)

	n := &model.Notification{
		UserID: task.UserID,
		TaskID: task.ID,
	}

	switch {
	case taskDay.Before(today):
		n.Type = model.NotificationOverdue
		n.Title = "Overdue: " + task.Title
		n.Message = "Task overdue, consider completing or deleting it."
		n.Priority = model.PriorityHigh
	case taskDay.Equal(today):
		n.Type = model.NotificationDueToday
		n.Title = "Due today: " + task.Title
		n.Message = fmt.Sprintf("%q is due today.", task.Title)
		n.Priority = model.PriorityHigh
	case taskDay.Before(threshold):
		days := int(math.Ceil(taskDay.Sub(today).Hours() / 24))
		n.Type = model.NotificationDueSoon
		n.Title = "Due soon: " + task.Title
		n.Message = fmt.Sprintf("%q is due in %d day(s).", task.Title, days)
		n.Priority = model.PriorityMedium
	default:
		return nil, false
	}

	return n, true
}

// Reconcile brings the user's notification set in line with the current state
// of their open tasks:
//
//   - a missing notification for a classified task is created (atomically, via
//     insert-if-absent on the (user, task, type) unique index)
//   - a notification whose task is completed, deleted, or no longer qualifies
//     is removed
//   - a notification whose type no longer matches the task's current
//     classification is removed, so a task drifting due_soon → due_today →
//     overdue carries exactly one reminder at a time
func (s *NotificationService) Reconcile(ctx context.Context, userID string) error {
	today := model.LocalDay(s.now())

	open, err := s.tasks.ListOpenByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("reconciling notifications: %w", err)
	}

	want := make(map[string]*model.Notification, len(open))
	for i := range open {
		if n, ok := classify(&open[i], today); ok {
			want[n.TaskID] = n
		}
	}

	existing, err := s.notifications.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("reconciling notifications: %w", err)
	}

	for _, n := range existing {
		wanted, ok := want[n.TaskID]
		if ok && wanted.Type == n.Type {
			// Already in the right state; nothing to insert either.
			delete(want, n.TaskID)
			continue
		}
		if err := s.notifications.Delete(ctx, n.ID); err != nil {
			// A concurrent reconcile may have deleted it already.
			if errors.Is(err, apperror.ErrNotFound) {
				continue
			}
			return fmt.Errorf("pruning notification %s: %w", n.ID, err)
		}
	}

	for _, n := range want {
		created, err := s.notifications.InsertIfAbsent(ctx, n)
		if err != nil {
			return fmt.Errorf("creating notification for task %s: %w", n.TaskID, err)
		}
		if created {
			s.logger.Debug("notification created",
				slog.String("userID", userID),
				slog.String("taskID", n.TaskID),
				slog.String("type", string(n.Type)),
			)
		}
	}

	return nil
}

// NotificationList is the read-side shape of GET /api/notifications.
type NotificationList struct {
	Notifications []model.Notification `json:"notifications"`
	UnreadCount   int                  `json:"unreadCount"`
}

// List reconciles and returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string) (*NotificationList, error) {
	if err := s.Reconcile(ctx, userID); err != nil {
		return nil, err
	}

	notifications, err := s.notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}

	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}

	return &NotificationList{Notifications: notifications, UnreadCount: unread}, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return err
	}
	return s.notifications.MarkRead(ctx, id)
}

// MarkAllRead marks every notification of the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.notifications.MarkAllRead(ctx, userID)
}

// Delete removes one of the user's notifications. With deleteTask set, the
// underlying task is deleted too, along with every notification referencing
// it.
func (s *NotificationService) Delete(ctx context.Context, userID, id string, deleteTask bool) error {
	n, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	if deleteTask {
		if err := s.tasks.Delete(ctx, n.TaskID); err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return fmt.Errorf("deleting task %s: %w", n.TaskID, err)
		}
		if err := s.notifications.DeleteByTask(ctx, n.TaskID); err != nil {
			return fmt.Errorf("deleting notifications for task %s: %w", n.TaskID, err)
		}
		s.logger.Info("notification and task deleted",
			slog.String("userID", userID),
			slog.String("taskID", n.TaskID),
		)
		return nil
	}

	return s.notifications.Delete(ctx, id)
}

// Clear removes every notification of the user.
func (s *NotificationService) Clear(ctx context.Context, userID string) error {
	return s.notifications.DeleteAllByUser(ctx, userID)
}

// getOwned fetches a notification and hides other users' rows behind
// not-found, so IDs cannot be probed across accounts.
func (s *NotificationService) getOwned(ctx context.Context, userID, id string) (*model.Notification, error) {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, apperror.NotFound("notification", id)
	}
	return n, nil
}
