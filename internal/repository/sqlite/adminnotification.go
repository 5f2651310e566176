package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/arefin/taskboard/internal/apperror"
	"github.com/arefin/taskboard/internal/model"
	"github.com/arefin/taskboard/internal/repository"
)

// AdminNotificationStore implements repository.AdminNotificationRepository.
// Metadata is stored as a JSON text column.
type AdminNotificationStore struct {
	conn *sql.DB
}

var _ repository.AdminNotificationRepository = (*AdminNotificationStore)(nil)

func (s *AdminNotificationStore) Create(ctx context.Context, n *model.AdminNotification) error {
	n.ID = xid.New().String()
	n.CreatedAt = time.Now()

	meta := n.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("sqlite: encoding admin notification metadata: %w", err)
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO admin_notifications
		 (id, type, user_id, user_name, user_email, message, is_read, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID,
		string(n.Type),
		n.UserID,
		n.UserName,
		n.UserEmail,
		n.Message,
		n.IsRead,
		string(metaJSON),
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting admin notification: %w", err)
	}
	return nil
}

func (s *AdminNotificationStore) GetByID(ctx context.Context, id string) (*model.AdminNotification, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, type, user_id, user_name, user_email, message, is_read, metadata, created_at
		 FROM admin_notifications WHERE id = ?`, id)

	n, err := scanAdminNotification(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("admin notification", id)
		}
		return nil, fmt.Errorf("sqlite: getting admin notification %s: %w", id, err)
	}
	return n, nil
}

func (s *AdminNotificationStore) List(ctx context.Context) ([]model.AdminNotification, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, type, user_id, user_name, user_email, message, is_read, metadata, created_at
		 FROM admin_notifications ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing admin notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.AdminNotification
	for rows.Next() {
		n, err := scanAdminNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning admin notification row: %w", err)
		}
		notifications = append(notifications, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating admin notifications: %w", err)
	}
	return notifications, nil
}

func (s *AdminNotificationStore) MarkRead(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE admin_notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: marking admin notification %s read: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("admin notification", id)
	}
	return nil
}

func (s *AdminNotificationStore) MarkAllRead(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE admin_notifications SET is_read = 1 WHERE is_read = 0`)
	if err != nil {
		return fmt.Errorf("sqlite: marking all admin notifications read: %w", err)
	}
	return nil
}

func (s *AdminNotificationStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM admin_notifications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting admin notification %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("admin notification", id)
	}
	return nil
}

func scanAdminNotification(row rowScanner) (*model.AdminNotification, error) {
	var (
		n        model.AdminNotification
		ntype    string
		metaJSON string
	)
	err := row.Scan(
		&n.ID,
		&ntype,
		&n.UserID,
		&n.UserName,
		&n.UserEmail,
		&n.Message,
		&n.IsRead,
		&metaJSON,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.Type = model.AdminNotificationType(ntype)
	if metaJSON != "" && metaJSON != "{}" {
		if err := json.Unmarshal([]byte(metaJSON), &n.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata: %w", err)
		}
	}
	return &n, nil
}
