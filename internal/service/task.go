package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arefin/taskboard/internal/apperror"
	"github.com/arefin/taskboard/internal/model"
	"github.com/arefin/taskboard/internal/repository"
)

// TaskService owns task CRUD, with per-user ownership enforcement and the
// admin-wide views.
type TaskService struct {
	tasks         repository.TaskRepository
	notifications repository.NotificationRepository
	users         repository.UserRepository
	logger        *slog.Logger
}

func NewTaskService(
	tasks repository.TaskRepository,
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *TaskService {
	return &TaskService{
		tasks:         tasks,
		notifications: notifications,
		users:         users,
		logger:        logger,
	}
}

// CreateTaskInput carries the fields of a new task. Priority defaults to
// medium and Status to todo when left empty.
type CreateTaskInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Priority    model.Priority `json:"priority"`
	Status      model.Status   `json:"status"`
	DueDate     time.Time      `json:"dueDate"`
}

// UpdateTaskInput carries a partial task update. Nil fields are left
// untouched.
type UpdateTaskInput struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Category    *string         `json:"category"`
	Priority    *model.Priority `json:"priority"`
	Status      *model.Status   `json:"status"`
	DueDate     *time.Time      `json:"dueDate"`
}

func (s *TaskService) Create(ctx context.Context, userID string, in CreateTaskInput) (*model.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return nil, apperror.ValidationFailed("description", "description is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return nil, apperror.ValidationFailed("category", "category is required")
	}
	if in.DueDate.IsZero() {
		return nil, apperror.ValidationFailed("dueDate", "due date is required")
	}

	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	} else if !model.ValidPriority(in.Priority) {
		return nil, apperror.ValidationFailed("priority", fmt.Sprintf("unknown priority %q", in.Priority))
	}
	if in.Status == "" {
		in.Status = model.StatusTodo
	} else if !model.ValidStatus(in.Status) {
		return nil, apperror.ValidationFailed("status", fmt.Sprintf("unknown status %q", in.Status))
	}

	task := &model.Task{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Priority:    in.Priority,
		Status:      in.Status,
		DueDate:     in.DueDate,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	s.logger.Info("task created",
		slog.String("taskID", task.ID),
		slog.String("userID", userID),
	)
	return task, nil
}

// List returns the user's tasks, newest first.
func (s *TaskService) List(ctx context.Context, userID string) ([]model.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id string) (*model.Task, error) {
	return s.getOwned(ctx, userID, id)
}

func (s *TaskService) Update(ctx context.Context, userID, id string, in UpdateTaskInput) (*model.Task, error) {
	task, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "title cannot be empty")
		}
		task.Title = title
	}
	if in.Description != nil {
		task.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		if category == "" {
			return nil, apperror.ValidationFailed("category", "category cannot be empty")
		}
		task.Category = category
	}
	if in.Priority != nil {
		if !model.ValidPriority(*in.Priority) {
			return nil, apperror.ValidationFailed("priority", fmt.Sprintf("unknown priority %q", *in.Priority))
		}
		task.Priority = *in.Priority
	}
	if in.Status != nil {
		if !model.ValidStatus(*in.Status) {
			return nil, apperror.ValidationFailed("status", fmt.Sprintf("unknown status %q", *in.Status))
		}
		task.Status = *in.Status
	}
	if in.DueDate != nil {
		if in.DueDate.IsZero() {
			return nil, apperror.ValidationFailed("dueDate", "due date cannot be empty")
		}
		task.DueDate = *in.DueDate
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("updating task %s: %w", id, err)
	}
	return task, nil
}

// Delete removes one of the user's tasks along with any notifications derived
// from it.
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return err
	}
	return s.deleteWithNotifications(ctx, id)
}

// AdminTask is a task annotated with its owner for the admin listing.
type AdminTask struct {
	model.Task
	User model.UserRef `json:"user"`
}

// ListAll returns every task in the system with owner annotations, for
// admins.
func (s *TaskService) ListAll(ctx context.Context) ([]AdminTask, error) {
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing all tasks: %w", err)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing all tasks: %w", err)
	}

	owners := make(map[string]model.UserRef, len(users))
	for i := range users {
		owners[users[i].ID] = users[i].Ref()
	}

	annotated := make([]AdminTask, 0, len(tasks))
	for _, t := range tasks {
		annotated = append(annotated, AdminTask{Task: t, User: owners[t.UserID]})
	}
	return annotated, nil
}

// DeleteAny removes any user's task, bypassing ownership. Admin only.
func (s *TaskService) DeleteAny(ctx context.Context, id string) error {
	if _, err := s.tasks.GetByID(ctx, id); err != nil {
		return err
	}
	return s.deleteWithNotifications(ctx, id)
}

func (s *TaskService) deleteWithNotifications(ctx context.Context, id string) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	if err := s.notifications.DeleteByTask(ctx, id); err != nil {
		return fmt.Errorf("deleting notifications for task %s: %w", id, err)
	}
	return nil
}

func (s *TaskService) getOwned(ctx context.Context, userID, id string) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		// Hide other users' tasks behind not-found.
		return nil, apperror.NotFound("task", id)
	}
	return task, nil
}
