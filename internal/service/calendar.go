package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/arefin/taskboard/internal/model"
	"github.com/arefin/taskboard/internal/repository"
)

// Congestion thresholds for a single calendar day.
const (
	congestionLowMax    = 2
	congestionMediumMax = 5
)

// CalendarTask is a task as it appears inside a calendar bucket. User is only
// populated in admin views.
type CalendarTask struct {
	model.Task
	User *model.UserRef `json:"user,omitempty"`
}

// DayBucket groups the tasks due on one calendar day, with a congestion level
// and a display color derived from the count.
type DayBucket struct {
	Date  string         `json:"date"`
	Count int            `json:"count"`
	Level string         `json:"level"`
	Color string         `json:"color"`
	Tasks []CalendarTask `json:"tasks"`
}

// CalendarSummary aggregates the tasks falling inside the requested month.
type CalendarSummary struct {
	TotalTasks     int `json:"totalTasks"`
	CompletedTasks int `json:"completedTasks"`
	PendingTasks   int `json:"pendingTasks"`
	DaysWithTasks  int `json:"daysWithTasks"`
}

// MonthView is the response shape of the month calendar endpoints. Days only
// contains entries for dates that have at least one task, in ascending date
// order.
type MonthView struct {
	Year    int             `json:"year"`
	Month   int             `json:"month"`
	Days    []DayBucket     `json:"days"`
	Summary CalendarSummary `json:"summary"`
}

// DayView is the response shape of the single-day calendar endpoints.
type DayView struct {
	Date  string         `json:"date"`
	Count int            `json:"count"`
	Level string         `json:"level"`
	Color string         `json:"color"`
	Tasks []CalendarTask `json:"tasks"`
}

func congestion(count int) (level, color string) {
	switch {
	case count <= congestionLowMax:
		return "low", "#10b981"
	case count <= congestionMediumMax:
		return "medium", "#f59e0b"
	default:
		return "high", "#ef4444"
	}
}

// sortCalendarTasks orders tasks by priority (high first), then by creation
// time (newest first).
func sortCalendarTasks(tasks []CalendarTask) {
	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := model.PriorityRank(tasks[i].Priority), model.PriorityRank(tasks[j].Priority)
		if ri != rj {
			return ri > rj
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}

// AggregateMonth buckets tasks by the local calendar day of their due date,
// keeping only tasks falling inside the given month.
func AggregateMonth(tasks []CalendarTask, year int, month time.Month) *MonthView {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	next := first.AddDate(0, 1, 0)

	buckets := make(map[string][]CalendarTask)
	summary := CalendarSummary{}
	for _, t := range tasks {
		day := model.LocalDay(t.DueDate)
		if day.Before(first) || !day.Before(next) {
			continue
		}
		key := day.Format("2006-01-02")
		buckets[key] = append(buckets[key], t)

		summary.TotalTasks++
		if t.Status == model.StatusCompleted {
			summary.CompletedTasks++
		} else {
			summary.PendingTasks++
		}
	}
	summary.DaysWithTasks = len(buckets)

	days := make([]DayBucket, 0, len(buckets))
	for date, dayTasks := range buckets {
		sortCalendarTasks(dayTasks)
		level, color := congestion(len(dayTasks))
		days = append(days, DayBucket{
			Date:  date,
			Count: len(dayTasks),
			Level: level,
			Color: color,
			Tasks: dayTasks,
		})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	return &MonthView{
		Year:    year,
		Month:   int(month),
		Days:    days,
		Summary: summary,
	}
}

// AggregateDay filters tasks due on the given local calendar day.
func AggregateDay(tasks []CalendarTask, date time.Time) *DayView {
	day := model.LocalDay(date)

	var dayTasks []CalendarTask
	for _, t := range tasks {
		if model.LocalDay(t.DueDate).Equal(day) {
			dayTasks = append(dayTasks, t)
		}
	}
	sortCalendarTasks(dayTasks)
	if dayTasks == nil {
		dayTasks = []CalendarTask{}
	}

	level, color := congestion(len(dayTasks))
	return &DayView{
		Date:  day.Format("2006-01-02"),
		Count: len(dayTasks),
		Level: level,
		Color: color,
		Tasks: dayTasks,
	}
}

// CalendarService serves the month and day calendar views, per user and
// across all users for admins.
type CalendarService struct {
	tasks  repository.TaskRepository
	users  repository.UserRepository
	logger *slog.Logger
}

func NewCalendarService(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *CalendarService {
	return &CalendarService{tasks: tasks, users: users, logger: logger}
}

func (s *CalendarService) Month(ctx context.Context, userID string, year int, month time.Month) (*MonthView, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("building month calendar: %w", err)
	}
	return AggregateMonth(wrapTasks(tasks, nil), year, month), nil
}

func (s *CalendarService) Day(ctx context.Context, userID string, date time.Time) (*DayView, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("building day calendar: %w", err)
	}
	return AggregateDay(wrapTasks(tasks, nil), date), nil
}

// MonthAll is the admin variant of Month: every user's tasks, each annotated
// with its owner.
func (s *CalendarService) MonthAll(ctx context.Context, year int, month time.Month) (*MonthView, error) {
	tasks, owners, err := s.allTasksWithOwners(ctx)
	if err != nil {
		return nil, err
	}
	return AggregateMonth(wrapTasks(tasks, owners), year, month), nil
}

// DayAll is the admin variant of Day.
func (s *CalendarService) DayAll(ctx context.Context, date time.Time) (*DayView, error) {
	tasks, owners, err := s.allTasksWithOwners(ctx)
	if err != nil {
		return nil, err
	}
	return AggregateDay(wrapTasks(tasks, owners), date), nil
}

func (s *CalendarService) allTasksWithOwners(ctx context.Context) ([]model.Task, map[string]model.UserRef, error) {
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("building admin calendar: %w", err)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("building admin calendar: %w", err)
	}

	owners := make(map[string]model.UserRef, len(users))
	for i := range users {
		owners[users[i].ID] = users[i].Ref()
	}
	return tasks, owners, nil
}

// wrapTasks lifts tasks into calendar tasks, attaching owners when the map is
// non-nil.
func wrapTasks(tasks []model.Task, owners map[string]model.UserRef) []CalendarTask {
	wrapped := make([]CalendarTask, 0, len(tasks))
	for _, t := range tasks {
		ct := CalendarTask{Task: t}
		if owners != nil {
			if ref, ok := owners[t.UserID]; ok {
				ct.User = &ref
			}
		}
		wrapped = append(wrapped, ct)
	}
	return wrapped
}
