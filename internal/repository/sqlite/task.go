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

// TaskStore implements repository.TaskRepository.
type TaskStore struct {
	conn *sql.DB
}

var _ repository.TaskRepository = (*TaskStore)(nil)

const taskColumns = `id, user_id, title, description, category, priority, status,
	due_date, created_at, updated_at`

func (s *TaskStore) Create(ctx context.Context, task *model.Task) error {
	task.ID = xid.New().String()
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Category,
		string(task.Priority),
		string(task.Status),
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting task: %w", err)
	}
	return nil
}

func (s *TaskStore) GetByID(ctx context.Context, id string) (*model.Task, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)

	t, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("task", id)
		}
		return nil, fmt.Errorf("sqlite: getting task %s: %w", id, err)
	}
	return t, nil
}

func (s *TaskStore) ListByUser(ctx context.Context, userID string) ([]model.Task, error) {
	return s.list(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at DESC`,
		userID)
}

func (s *TaskStore) ListOpenByUser(ctx context.Context, userID string) ([]model.Task, error) {
	return s.list(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE user_id = ? AND status != ? ORDER BY created_at DESC`,
		userID, string(model.StatusCompleted))
}

func (s *TaskStore) ListAll(ctx context.Context) ([]model.Task, error) {
	return s.list(ctx,
		`SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC`)
}

func (s *TaskStore) list(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning task row: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskStore) Update(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = time.Now()

	result, err := s.conn.ExecContext(ctx,
		`UPDATE tasks
		 SET title = ?, description = ?, category = ?, priority = ?, status = ?,
		     due_date = ?, updated_at = ?
		 WHERE id = ?`,
		task.Title,
		task.Description,
		task.Category,
		string(task.Priority),
		string(task.Status),
		task.DueDate,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating task %s: %w", task.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("task", task.ID)
	}
	return nil
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting task %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("task", id)
	}
	return nil
}

func (s *TaskStore) CountByCategory(ctx context.Context, userID, name string) (int, error) {
	var count int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE user_id = ? AND category = ?`,
		userID, name,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting tasks in category %q: %w", name, err)
	}
	return count, nil
}

func scanTask(row rowScanner) (*model.Task, error) {
	var (
		t        model.Task
		priority string
		status   string
	)
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Category,
		&priority,
		&status,
		&t.DueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Priority = model.Priority(priority)
	t.Status = model.Status(status)
	return &t, nil
}
