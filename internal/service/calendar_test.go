package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arefin/taskboard/internal/model"
)

func calendarTask(title string, due time.Time, status model.Status, priority model.Priority) CalendarTask {
	return CalendarTask{Task: model.Task{
		ID:       title,
		Title:    title,
		Priority: priority,
		Status:   status,
		DueDate:  due,
	}}
}

func TestAggregateMonthPartitionsByDay(t *testing.T) {
	mar := func(day, hour int) time.Time {
		return time.Date(2026, time.March, day, hour, 0, 0, 0, time.Local)
	}

	tasks := []CalendarTask{
		calendarTask("a", mar(5, 9), model.StatusTodo, model.PriorityLow),
		calendarTask("b", mar(5, 23), model.StatusCompleted, model.PriorityHigh),
		calendarTask("c", mar(12, 0), model.StatusTodo, model.PriorityMedium),
		// outside the month
		calendarTask("d", time.Date(2026, time.February, 28, 12, 0, 0, 0, time.Local), model.StatusTodo, model.PriorityLow),
		calendarTask("e", time.Date(2026, time.April, 1, 0, 0, 0, 0, time.Local), model.StatusTodo, model.PriorityLow),
	}

	view := AggregateMonth(tasks, 2026, time.March)

	assert.Equal(t, 2026, view.Year)
	assert.Equal(t, 3, view.Month)
	require.Len(t, view.Days, 2)

	// Days sorted ascending, every in-month task in exactly one bucket.
	assert.Equal(t, "2026-03-05", view.Days[0].Date)
	assert.Equal(t, 2, view.Days[0].Count)
	assert.Equal(t, "2026-03-12", view.Days[1].Date)
	assert.Equal(t, 1, view.Days[1].Count)

	total := 0
	for _, d := range view.Days {
		total += d.Count
		assert.Len(t, d.Tasks, d.Count)
	}
	assert.Equal(t, view.Summary.TotalTasks, total)

	assert.Equal(t, 3, view.Summary.TotalTasks)
	assert.Equal(t, 1, view.Summary.CompletedTasks)
	assert.Equal(t, 2, view.Summary.PendingTasks)
	assert.Equal(t, 2, view.Summary.DaysWithTasks)
}

func TestCongestionThresholds(t *testing.T) {
	day := time.Date(2026, time.March, 5, 10, 0, 0, 0, time.Local)

	cases := []struct {
		count int
		level string
		color string
	}{
		{1, "low", "#10b981"},
		{2, "low", "#10b981"},
		{3, "medium", "#f59e0b"},
		{5, "medium", "#f59e0b"},
		{6, "high", "#ef4444"},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("count=%d", tc.count), func(t *testing.T) {
			var tasks []CalendarTask
			for i := 0; i < tc.count; i++ {
				tasks = append(tasks, calendarTask(fmt.Sprintf("t%d", i), day, model.StatusTodo, model.PriorityLow))
			}

			view := AggregateMonth(tasks, 2026, time.March)
			require.Len(t, view.Days, 1)
			assert.Equal(t, tc.level, view.Days[0].Level)
			assert.Equal(t, tc.color, view.Days[0].Color)
		})
	}
}

func TestAggregateDaySortsByPriorityThenRecency(t *testing.T) {
	day := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.Local)
	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.Local)

	older := calendarTask("older-high", day, model.StatusTodo, model.PriorityHigh)
	older.CreatedAt = base
	newer := calendarTask("newer-high", day, model.StatusTodo, model.PriorityHigh)
	newer.CreatedAt = base.Add(time.Hour)
	low := calendarTask("low", day, model.StatusTodo, model.PriorityLow)
	low.CreatedAt = base.Add(2 * time.Hour)
	other := calendarTask("other-day", day.AddDate(0, 0, 1), model.StatusTodo, model.PriorityHigh)

	view := AggregateDay([]CalendarTask{low, older, newer, other}, day.Add(15*time.Hour))

	assert.Equal(t, "2026-03-05", view.Date)
	require.Equal(t, 3, view.Count)
	assert.Equal(t, "newer-high", view.Tasks[0].Title)
	assert.Equal(t, "older-high", view.Tasks[1].Title)
	assert.Equal(t, "low", view.Tasks[2].Title)
}

func TestAggregateDayEmpty(t *testing.T) {
	view := AggregateDay(nil, time.Date(2026, time.March, 5, 0, 0, 0, 0, time.Local))

	assert.Equal(t, 0, view.Count)
	assert.Equal(t, "low", view.Level)
	assert.NotNil(t, view.Tasks)
}

func TestCalendarServiceScopesToUser(t *testing.T) {
	tasks := &fakeTaskRepo{}
	users := &fakeUserRepo{}
	svc := NewCalendarService(tasks, users, testLogger())
	ctx := context.Background()

	due := time.Date(2026, time.March, 5, 10, 0, 0, 0, time.Local)
	addTask(t, tasks, "u1", due, model.StatusTodo)
	addTask(t, tasks, "u2", due, model.StatusTodo)

	view, err := svc.Month(ctx, "u1", 2026, time.March)
	require.NoError(t, err)
	require.Len(t, view.Days, 1)
	assert.Equal(t, 1, view.Days[0].Count)
	assert.Nil(t, view.Days[0].Tasks[0].User)
}

func TestCalendarAdminViewAnnotatesOwners(t *testing.T) {
	tasks := &fakeTaskRepo{}
	users := &fakeUserRepo{}
	svc := NewCalendarService(tasks, users, testLogger())
	ctx := context.Background()

	owner := &model.User{Name: "Ada", Email: "ada@example.com", Role: model.RoleUser}
	require.NoError(t, users.Create(ctx, owner))

	due := time.Date(2026, time.March, 5, 10, 0, 0, 0, time.Local)
	task := &model.Task{
		UserID:   owner.ID,
		Title:    "write report",
		Category: "work",
		Priority: model.PriorityHigh,
		Status:   model.StatusTodo,
		DueDate:  due,
	}
	require.NoError(t, tasks.Create(ctx, task))

	view, err := svc.MonthAll(ctx, 2026, time.March)
	require.NoError(t, err)
	require.Len(t, view.Days, 1)
	require.Len(t, view.Days[0].Tasks, 1)

	ref := view.Days[0].Tasks[0].User
	require.NotNil(t, ref)
	assert.Equal(t, owner.ID, ref.ID)
	assert.Equal(t, "Ada", ref.Name)

	day, err := svc.DayAll(ctx, due)
	require.NoError(t, err)
	require.Equal(t, 1, day.Count)
	require.NotNil(t, day.Tasks[0].User)
	assert.Equal(t, "ada@example.com", day.Tasks[0].User.Email)
}
