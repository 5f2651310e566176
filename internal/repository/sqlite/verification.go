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

// VerificationTokenStore implements repository.VerificationTokenRepository.
type VerificationTokenStore struct {
	conn *sql.DB
}

var _ repository.VerificationTokenRepository = (*VerificationTokenStore)(nil)

// Replace enforces "one active token per email": any previous token for the
// address is deleted before the new one is inserted.
func (s *VerificationTokenStore) Replace(ctx context.Context, token *model.VerificationToken) error {
	token.ID = xid.New().String()
	token.CreatedAt = time.Now()

	if _, err := s.conn.ExecContext(ctx,
		`DELETE FROM verification_tokens WHERE lower(email) = lower(?)`, token.Email,
	); err != nil {
		return fmt.Errorf("sqlite: clearing verification tokens for %s: %w", token.Email, err)
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO verification_tokens (id, email, otp, expires_at, attempts, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		token.ID,
		token.Email,
		token.OTP,
		token.ExpiresAt,
		token.Attempts,
		token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting verification token: %w", err)
	}
	return nil
}

func (s *VerificationTokenStore) GetByEmail(ctx context.Context, email string) (*model.VerificationToken, error) {
	var t model.VerificationToken

	err := s.conn.QueryRowContext(ctx,
		`SELECT id, email, otp, expires_at, attempts, created_at
		 FROM verification_tokens WHERE lower(email) = lower(?)`,
		email,
	).Scan(&t.ID, &t.Email, &t.OTP, &t.ExpiresAt, &t.Attempts, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("verification token", email)
		}
		return nil, fmt.Errorf("sqlite: getting verification token for %s: %w", email, err)
	}
	return &t, nil
}

func (s *VerificationTokenStore) IncrementAttempts(ctx context.Context, id string) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE verification_tokens SET attempts = attempts + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing attempts for token %s: %w", id, err)
	}
	return nil
}

func (s *VerificationTokenStore) Delete(ctx context.Context, id string) error {
	_, err := s.conn.ExecContext(ctx,
		`DELETE FROM verification_tokens WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting verification token %s: %w", id, err)
	}
	return nil
}
