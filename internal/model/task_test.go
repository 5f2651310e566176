package model

import (
	"testing"
	"time"
)

func TestLocalDay(t *testing.T) {
	morning := time.Date(2026, 3, 10, 1, 30, 0, 0, time.Local)
	night := time.Date(2026, 3, 10, 23, 45, 0, 0, time.Local)

	if !LocalDay(morning).Equal(LocalDay(night)) {
		t.Error("LocalDay() differs for two times on the same calendar day")
	}
	if got := LocalDay(night); got.Hour() != 0 || got.Minute() != 0 {
		t.Errorf("LocalDay() = %v, want midnight", got)
	}
}

func TestOverduePredicatesDiverge(t *testing.T) {
	// Due earlier today: past-due by clock time, but not overdue by date.
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	task := Task{
		Status:  StatusTodo,
		DueDate: time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local),
	}

	if !task.IsPastDue(now) {
		t.Error("IsPastDue() = false for a task due earlier today")
	}
	if task.IsOverdueByDate(now) {
		t.Error("IsOverdueByDate() = true for a task due today")
	}

	// Due yesterday: both fire.
	task.DueDate = task.DueDate.AddDate(0, 0, -1)
	if !task.IsPastDue(now) || !task.IsOverdueByDate(now) {
		t.Error("both predicates should fire for a task due yesterday")
	}

	// Completed tasks are never overdue either way.
	task.Status = StatusCompleted
	if task.IsPastDue(now) || task.IsOverdueByDate(now) {
		t.Error("completed task reported overdue")
	}
}

func TestValidPriorityAndStatus(t *testing.T) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		if !ValidPriority(p) {
			t.Errorf("ValidPriority(%q) = false", p)
		}
	}
	if ValidPriority("urgent") {
		t.Error(`ValidPriority("urgent") = true`)
	}

	for _, s := range []Status{StatusTodo, StatusInProgress, StatusCompleted} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false", s)
		}
	}
	if ValidStatus("done") {
		t.Error(`ValidStatus("done") = true`)
	}
}

func TestPriorityRankOrdering(t *testing.T) {
	if !(PriorityRank(PriorityHigh) > PriorityRank(PriorityMedium) &&
		PriorityRank(PriorityMedium) > PriorityRank(PriorityLow)) {
		t.Error("PriorityRank() does not order high > medium > low")
	}
}
