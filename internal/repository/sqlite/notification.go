package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/arefin/taskboard/internal/apperror"
	"github.com/arefin/taskboard/internal/model"
	"github.com/arefin/taskboard/internal/repository"
)

// NotificationStore implements repository.NotificationRepository. The
// UNIQUE(user_id, task_id, type) index makes InsertIfAbsent atomic, so two
// concurrent reconciles for the same user cannot produce duplicate rows.
type NotificationStore struct {
	conn *sql.DB
}

var _ repository.NotificationRepository = (*NotificationStore)(nil)

const notificationColumns = `id, user_id, task_id, type, title, message,
	priority, is_read, created_at, updated_at`

func (s *NotificationStore) InsertIfAbsent(ctx context.Context, n *model.Notification) (bool, error) {
	n.ID = xid.New().String()
	now := time.Now()
	n.CreatedAt = now
	n.UpdatedAt = now

	result, err := s.conn.ExecContext(ctx,
		`INSERT INTO notifications (`+notificationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, task_id, type) DO NOTHING`,
		n.ID,
		n.UserID,
		n.TaskID,
		string(n.Type),
		n.Title,
		n.Message,
		string(n.Priority),
		n.IsRead,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: inserting notification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func (s *NotificationStore) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id)

	n, err := scanNotification(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("notification", id)
		}
		return nil, fmt.Errorf("sqlite: getting notification %s: %w", id, err)
	}
	return n, nil
}

func (s *NotificationStore) ListByUser(ctx context.Context, userID string) ([]model.Notification, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE user_id = ? ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning notification row: %w", err)
		}
		notifications = append(notifications, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating notifications: %w", err)
	}
	return notifications, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1, updated_at = ? WHERE id = ?`,
		time.Now(), id)
	if err != nil {
		return fmt.Errorf("sqlite: marking notification %s read: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("notification", id)
	}
	return nil
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, userID string) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1, updated_at = ? WHERE user_id = ? AND is_read = 0`,
		time.Now(), userID)
	if err != nil {
		return fmt.Errorf("sqlite: marking all notifications read for user %s: %w", userID, err)
	}
	return nil
}

func (s *NotificationStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting notification %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("notification", id)
	}
	return nil
}

func (s *NotificationStore) DeleteByTask(ctx context.Context, taskID string) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM notifications WHERE task_id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting notifications for task %s: %w", taskID, err)
	}
	return nil
}

func (s *NotificationStore) DeleteAllByUser(ctx context.Context, userID string) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("sqlite: clearing notifications for user %s: %w", userID, err)
	}
	return nil
}

func scanNotification(row rowScanner) (*model.Notification, error) {
	var (
		n        model.Notification
		ntype    string
		priority string
	)
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.TaskID,
		&ntype,
		&n.Title,
		&n.Message,
		&priority,
		&n.IsRead,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.Type = model.NotificationType(ntype)
	n.Priority = model.Priority(priority)
	return &n, nil
}
