package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arefin/taskboard/internal/apperror"
	"github.com/arefin/taskboard/internal/model"
)

func TestVerificationReplaceKeepsOneTokenPerEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &model.VerificationToken{
		Email:     "ada@example.com",
		OTP:       "111111",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}
	if err := db.Tokens().Replace(ctx, first); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	second := &model.VerificationToken{
		Email:     "ADA@example.com",
		OTP:       "222222",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}
	if err := db.Tokens().Replace(ctx, second); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	got, err := db.Tokens().GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.OTP != "222222" {
		t.Errorf("OTP = %q, want the replacement token", got.OTP)
	}
	if got.ID == first.ID {
		t.Error("Replace() kept the old token row")
	}
}

func TestVerificationIncrementAttempts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	token := &model.VerificationToken{
		Email:     "ada@example.com",
		OTP:       "111111",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}
	if err := db.Tokens().Replace(ctx, token); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := db.Tokens().IncrementAttempts(ctx, token.ID); err != nil {
			t.Fatalf("IncrementAttempts() error = %v", err)
		}
	}

	got, err := db.Tokens().GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", got.Attempts)
	}
}

func TestVerificationDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	token := &model.VerificationToken{
		Email:     "ada@example.com",
		OTP:       "111111",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}
	if err := db.Tokens().Replace(ctx, token); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	if err := db.Tokens().Delete(ctx, token.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := db.Tokens().GetByEmail(ctx, "ada@example.com"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail() after delete error = %v, want ErrNotFound", err)
	}
}
