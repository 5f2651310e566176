package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/arefin/taskboard/internal/model"
	"github.com/arefin/taskboard/internal/repository"
)

const recentLimit = 5

// TaskStats is the dashboard summary for one user's tasks.
type TaskStats struct {
	TotalTasks     int            `json:"totalTasks"`
	ByStatus       map[string]int `json:"byStatus"`
	ByPriority     map[string]int `json:"byPriority"`
	OverdueCount   int            `json:"overdueCount"`
	CompletionRate int            `json:"completionRate"` // whole percent, rounded
	RecentTasks    []model.Task   `json:"recentTasks"`
}

// AdminStats extends TaskStats with user-level aggregates across the whole
// system.
type AdminStats struct {
	TaskStats
	TotalUsers  int            `json:"totalUsers"`
	UsersByRole map[string]int `json:"usersByRole"`
	RecentUsers []model.User   `json:"recentUsers"`
}

// ComputeTaskStats aggregates a task list at the given instant. Overdue here
// is time-of-day sensitive: a task due at 09:00 counts as overdue at 10:00 of
// the same day, unlike the date-only rule used for notifications.
func ComputeTaskStats(tasks []model.Task, now time.Time) TaskStats {
	stats := TaskStats{
		TotalTasks: len(tasks),
		ByStatus: map[string]int{
			string(model.StatusTodo):       0,
			string(model.StatusInProgress): 0,
			string(model.StatusCompleted):  0,
		},
		ByPriority: map[string]int{
			string(model.PriorityLow):    0,
			string(model.PriorityMedium): 0,
			string(model.PriorityHigh):   0,
		},
	}

	for i := range tasks {
		t := &tasks[i]
		stats.ByStatus[string(t.Status)]++
		stats.ByPriority[string(t.Priority)]++
		if t.IsPastDue(now) {
			stats.OverdueCount++
		}
	}

	if stats.TotalTasks > 0 {
		completed := stats.ByStatus[string(model.StatusCompleted)]
		stats.CompletionRate = int(math.Round(float64(completed) / float64(stats.TotalTasks) * 100))
	}

	recent := make([]model.Task, len(tasks))
	copy(recent, tasks)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	stats.RecentTasks = recent

	return stats
}

// DashboardService computes the per-user and admin dashboard summaries.
type DashboardService struct {
	tasks  repository.TaskRepository
	users  repository.UserRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewDashboardService(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *DashboardService {
	return &DashboardService{
		tasks:  tasks,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// UserStats summarizes the calling user's own tasks.
func (s *DashboardService) UserStats(ctx context.Context, userID string) (*TaskStats, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("computing dashboard stats: %w", err)
	}
	stats := ComputeTaskStats(tasks, s.now())
	return &stats, nil
}

// AdminOverview summarizes every task and every account in the system.
func (s *DashboardService) AdminOverview(ctx context.Context) (*AdminStats, error) {
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("computing admin stats: %w", err)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("computing admin stats: %w", err)
	}

	stats := AdminStats{
		TaskStats:  ComputeTaskStats(tasks, s.now()),
		TotalUsers: len(users),
		UsersByRole: map[string]int{
			string(model.RoleUser):  0,
			string(model.RoleAdmin): 0,
		},
	}
	for i := range users {
		stats.UsersByRole[string(users[i].Role)]++
	}

	recent := make([]model.User, len(users))
	copy(recent, users)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	stats.RecentUsers = recent

	return &stats, nil
}
