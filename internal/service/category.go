package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/arefin/taskboard/internal/apperror"
	"github.com/arefin/taskboard/internal/model"
	"github.com/arefin/taskboard/internal/repository"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// CategoryService owns category CRUD. Category names are unique per user and
// coupled to tasks by value: renaming a category does not rewrite the tasks
// that reference the old name.
type CategoryService struct {
	categories repository.CategoryRepository
	tasks      repository.TaskRepository
	logger     *slog.Logger
}

func NewCategoryService(
	categories repository.CategoryRepository,
	tasks repository.TaskRepository,
	logger *slog.Logger,
) *CategoryService {
	return &CategoryService{categories: categories, tasks: tasks, logger: logger}
}

// CreateCategoryInput carries the fields of a new category.
type CreateCategoryInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// UpdateCategoryInput carries a partial category update. Nil fields are left
// untouched.
type UpdateCategoryInput struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (s *CategoryService) Create(ctx context.Context, userID string, in CreateCategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	color := strings.TrimSpace(in.Color)
	if !hexColorPattern.MatchString(color) {
		return nil, apperror.ValidationFailed("color", "color must be a hex value like #10b981")
	}

	category := &model.Category{
		UserID: userID,
		Name:   name,
		Color:  color,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("category created",
		slog.String("categoryID", category.ID),
		slog.String("userID", userID),
	)
	return category, nil
}

// List returns the user's categories with the number of tasks currently
// referencing each name.
func (s *CategoryService) List(ctx context.Context, userID string) ([]model.CategoryWithCount, error) {
	categories, err := s.categories.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	withCounts := make([]model.CategoryWithCount, 0, len(categories))
	for _, c := range categories {
		count, err := s.tasks.CountByCategory(ctx, userID, c.Name)
		if err != nil {
			return nil, fmt.Errorf("counting tasks for category %q: %w", c.Name, err)
		}
		withCounts = append(withCounts, model.CategoryWithCount{Category: c, TaskCount: count})
	}
	return withCounts, nil
}

func (s *CategoryService) Update(ctx context.Context, userID, id string, in UpdateCategoryInput) (*model.Category, error) {
	category, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.ValidationFailed("name", "name cannot be empty")
		}
		category.Name = name
	}
	if in.Color != nil {
		color := strings.TrimSpace(*in.Color)
		if !hexColorPattern.MatchString(color) {
			return nil, apperror.ValidationFailed("color", "color must be a hex value like #10b981")
		}
		category.Color = color
	}

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes one of the user's categories. Tasks referencing the name are
// left as they are.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return err
	}
	return s.categories.Delete(ctx, id)
}

func (s *CategoryService) getOwned(ctx context.Context, userID, id string) (*model.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.UserID != userID {
		return nil, apperror.NotFound("category", id)
	}
	return category, nil
}
