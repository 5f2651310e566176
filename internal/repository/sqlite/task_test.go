package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arefin/taskboard/internal/apperror"
	"github.com/arefin/taskboard/internal/model"
)

func TestTaskCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "ada@example.com")

	due := time.Now().AddDate(0, 0, 3)
	task := createTestTask(t, db, user.ID, "write report", due)

	if task.ID == "" {
		t.Error("Create() did not set task.ID")
	}
	if task.CreatedAt.IsZero() {
		t.Error("Create() did not set task.CreatedAt")
	}

	got, err := db.Tasks().GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "write report" {
		t.Errorf("Title = %q, want %q", got.Title, "write report")
	}
	if got.Priority != model.PriorityMedium {
		t.Errorf("Priority = %q, want %q", got.Priority, model.PriorityMedium)
	}
	if !got.DueDate.Truncate(time.Second).Equal(due.Truncate(time.Second)) {
		t.Errorf("DueDate = %v, want %v", got.DueDate, due)
	}
}

func TestTaskGetMissing(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Tasks().GetByID(context.Background(), "nope")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestTaskListByUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ada := createTestUser(t, db, "ada@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	due := time.Now().AddDate(0, 0, 1)
	createTestTask(t, db, ada.ID, "hers", due)
	createTestTask(t, db, bob.ID, "his", due)

	tasks, err := db.Tasks().ListByUser(ctx, ada.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("ListByUser() returned %d tasks, want 1", len(tasks))
	}
	if tasks[0].Title != "hers" {
		t.Errorf("Title = %q, want %q", tasks[0].Title, "hers")
	}

	all, err := db.Tasks().ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListAll() returned %d tasks, want 2", len(all))
	}
}

func TestTaskListOpenExcludesCompleted(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "ada@example.com")

	due := time.Now().AddDate(0, 0, 1)
	open := createTestTask(t, db, user.ID, "open", due)
	done := createTestTask(t, db, user.ID, "done", due)
	done.Status = model.StatusCompleted
	if err := db.Tasks().Update(ctx, done); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	tasks, err := db.Tasks().ListOpenByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListOpenByUser() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("ListOpenByUser() returned %d tasks, want 1", len(tasks))
	}
	if tasks[0].ID != open.ID {
		t.Errorf("open task = %s, want %s", tasks[0].ID, open.ID)
	}
}

func TestTaskUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "ada@example.com")
	task := createTestTask(t, db, user.ID, "draft", time.Now().AddDate(0, 0, 1))

	task.Title = "final"
	task.Status = model.StatusInProgress
	if err := db.Tasks().Update(ctx, task); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := db.Tasks().GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "final" {
		t.Errorf("Title = %q, want %q", got.Title, "final")
	}
	if got.Status != model.StatusInProgress {
		t.Errorf("Status = %q, want %q", got.Status, model.StatusInProgress)
	}
}

func TestTaskUpdateMissing(t *testing.T) {
	db := newTestDB(t)

	task := &model.Task{ID: "nope", Title: "x", DueDate: time.Now()}
	err := db.Tasks().Update(context.Background(), task)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestTaskDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "ada@example.com")
	task := createTestTask(t, db, user.ID, "gone", time.Now())

	if err := db.Tasks().Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := db.Tasks().GetByID(ctx, task.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
	if err := db.Tasks().Delete(ctx, task.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestTaskCountByCategory(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ada := createTestUser(t, db, "ada@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	due := time.Now().AddDate(0, 0, 1)
	createTestTask(t, db, ada.ID, "one", due)
	createTestTask(t, db, ada.ID, "two", due)
	createTestTask(t, db, bob.ID, "other user", due)

	count, err := db.Tasks().CountByCategory(ctx, ada.ID, "work")
	if err != nil {
		t.Fatalf("CountByCategory() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountByCategory() = %d, want 2", count)
	}

	count, err = db.Tasks().CountByCategory(ctx, ada.ID, "home")
	if err != nil {
		t.Fatalf("CountByCategory() error = %v", err)
	}
	if count != 0 {
		t.Errorf("CountByCategory() = %d, want 0", count)
	}
}
