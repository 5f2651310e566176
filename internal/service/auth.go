package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/arefin/taskboard/internal/apperror"
	"github.com/arefin/taskboard/internal/auth"
	"github.com/arefin/taskboard/internal/model"
	"github.com/arefin/taskboard/internal/repository"
)

const (
	otpTTL            = 15 * time.Minute
	otpResendCooldown = 30 * time.Second
	resetTokenTTL     = time.Hour
	minPasswordLen    = 8

	defaultAvatarEmoji      = "😊"
	defaultAvatarBackground = "#6366f1"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Mailer is the transactional email surface the auth flows need. Satisfied by
// mail.Mailer.
type Mailer interface {
	SendOTP(to, name, otp string) error
	SendPasswordReset(to, name, link string) error
}

// AuthResult pairs a user with a freshly signed session token.
type AuthResult struct {
	User  *model.User
	Token string
}

// AuthService owns signup, email verification, login, password reset, profile
// updates, and the GitHub OAuth account flow.
type AuthService struct {
	users       repository.UserRepository
	tokens      repository.VerificationTokenRepository
	adminNotifs repository.AdminNotificationRepository
	passwords   *auth.PasswordService
	jwt         *auth.TokenService
	mailer      Mailer
	appURL      string
	logger      *slog.Logger
	now         func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	tokens repository.VerificationTokenRepository,
	adminNotifs repository.AdminNotificationRepository,
	passwords *auth.PasswordService,
	jwt *auth.TokenService,
	mailer Mailer,
	appURL string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		tokens:      tokens,
		adminNotifs: adminNotifs,
		passwords:   passwords,
		jwt:         jwt,
		mailer:      mailer,
		appURL:      strings.TrimRight(appURL, "/"),
		logger:      logger,
		now:         time.Now,
	}
}

// Signup registers a new unverified account and emails it a verification OTP.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	email = normalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return nil, apperror.ValidationFailed("email", "invalid email address")
	}
	if len(password) < minPasswordLen {
		return nil, apperror.ValidationFailed("password", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Name:             name,
		Email:            email,
		PasswordHash:     hash,
		Role:             model.RoleUser,
		AvatarEmoji:      defaultAvatarEmoji,
		AvatarBackground: defaultAvatarBackground,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.issueOTP(ctx, user)
	s.recordRegistration(ctx, user, "password")

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)
	return user, nil
}

// VerifyEmail checks the OTP for the email and marks the account verified.
// Wrong codes count against the attempt cap; hitting the cap or the expiry
// deletes the token, forcing a resend.
func (s *AuthService) VerifyEmail(ctx context.Context, email, otp string) error {
	email = normalizeEmail(email)

	token, err := s.tokens.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ValidationFailed("otp", "invalid or expired verification code")
		}
		return fmt.Errorf("verifying email: %w", err)
	}

	if token.Expired(s.now()) {
		if err := s.tokens.Delete(ctx, token.ID); err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return fmt.Errorf("verifying email: %w", err)
		}
		return apperror.ValidationFailed("otp", "verification code expired, request a new one")
	}

	if token.OTP != otp {
		if token.Attempts+1 >= model.MaxOTPAttempts {
			if err := s.tokens.Delete(ctx, token.ID); err != nil && !errors.Is(err, apperror.ErrNotFound) {
				return fmt.Errorf("verifying email: %w", err)
			}
			return apperror.ValidationFailed("otp", "too many failed attempts, request a new code")
		}
		if err := s.tokens.IncrementAttempts(ctx, token.ID); err != nil {
			return fmt.Errorf("verifying email: %w", err)
		}
		return apperror.ValidationFailed("otp", "incorrect verification code")
	}

	if err := s.tokens.Delete(ctx, token.ID); err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("verifying email: %w", err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	user.IsEmailVerified = true
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("verifying email: %w", err)
	}

	s.logger.Info("email verified", slog.String("userID", user.ID))
	return nil
}

// ResendOTP issues a fresh verification code, subject to a 30 second cooldown
// since the last issued token.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return apperror.ValidationFailed("email", "email is already verified")
	}

	if token, err := s.tokens.GetByEmail(ctx, email); err == nil {
		if s.now().Sub(token.CreatedAt) < otpResendCooldown {
			return apperror.ValidationFailed("email", "please wait before requesting another code")
		}
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("resending verification code: %w", err)
	}

	s.issueOTP(ctx, user)
	return nil
}

// Login authenticates with email and password. Unverified accounts are
// rejected until the OTP flow completes.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("logging in: %w", err)
	}
	if user.PasswordHash == "" || s.passwords.Verify(user.PasswordHash, password) != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}
	if !user.IsEmailVerified {
		return nil, apperror.Forbidden("email not verified")
	}

	return s.issueSession(user)
}

// ForgotPassword stores a reset token and emails the reset link. A missing
// account is not reported to the caller.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Info("password reset requested for unknown email", slog.String("email", email))
			return nil
		}
		return fmt.Errorf("requesting password reset: %w", err)
	}

	token, err := randomToken()
	if err != nil {
		return fmt.Errorf("requesting password reset: %w", err)
	}
	user.ResetToken = token
	user.ResetExpires = s.now().Add(resetTokenTTL)
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("requesting password reset: %w", err)
	}

	link := s.appURL + "/reset-password?token=" + token
	if err := s.mailer.SendPasswordReset(user.Email, user.Name, link); err != nil {
		s.logger.Error("sending password reset email", slog.String("error", err.Error()))
	}
	return nil
}

// ResetPassword sets a new password for the account holding the reset token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return apperror.ValidationFailed("token", "reset token is required")
	}
	if len(newPassword) < minPasswordLen {
		return apperror.ValidationFailed("password", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	user, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ValidationFailed("token", "invalid or expired reset token")
		}
		return fmt.Errorf("resetting password: %w", err)
	}
	if user.ResetExpires.IsZero() || s.now().After(user.ResetExpires) {
		user.ResetToken = ""
		user.ResetExpires = time.Time{}
		if err := s.users.Update(ctx, user); err != nil {
			return fmt.Errorf("resetting password: %w", err)
		}
		return apperror.ValidationFailed("token", "invalid or expired reset token")
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return apperror.ValidationFailed("password", err.Error())
	}
	user.PasswordHash = hash
	user.ResetToken = ""
	user.ResetExpires = time.Time{}
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("resetting password: %w", err)
	}

	s.logger.Info("password reset", slog.String("userID", user.ID))
	return nil
}

// UpdateProfileInput carries a partial profile update. Nil fields are left
// untouched.
type UpdateProfileInput struct {
	Name             *string `json:"name"`
	AvatarEmoji      *string `json:"avatarEmoji"`
	AvatarBackground *string `json:"avatarBackground"`
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.ValidationFailed("name", "name cannot be empty")
		}
		user.Name = name
	}
	if in.AvatarEmoji != nil {
		user.AvatarEmoji = *in.AvatarEmoji
	}
	if in.AvatarBackground != nil {
		color := strings.TrimSpace(*in.AvatarBackground)
		if !hexColorPattern.MatchString(color) {
			return nil, apperror.ValidationFailed("avatarBackground", "color must be a hex value like #6366f1")
		}
		user.AvatarBackground = color
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return user, nil
}

// ChangePassword rotates the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.PasswordHash == "" {
		return apperror.ValidationFailed("currentPassword", "account has no password, it uses GitHub sign-in")
	}
	if err := s.passwords.Verify(user.PasswordHash, current); err != nil {
		return apperror.ValidationFailed("currentPassword", "current password is incorrect")
	}
	if len(newPassword) < minPasswordLen {
		return apperror.ValidationFailed("newPassword", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return apperror.ValidationFailed("newPassword", err.Error())
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("changing password: %w", err)
	}
	return nil
}

// GetUser fetches an account by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers returns every account. Admin only.
func (s *AuthService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// LoginOrRegisterGitHub signs in an existing GitHub-linked account, links the
// GitHub identity to an existing account with the same email, or registers a
// new verified account.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, gh *auth.GitHubUser) (*AuthResult, error) {
	user, err := s.users.GetByGitHubID(ctx, gh.ID)
	if err == nil {
		return s.issueSession(user)
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("github sign-in: %w", err)
	}

	if gh.Email != "" {
		existing, err := s.users.GetByEmail(ctx, normalizeEmail(gh.Email))
		if err == nil {
			existing.GitHubID = gh.ID
			existing.IsEmailVerified = true
			if err := s.users.Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("github sign-in: linking account: %w", err)
			}
			s.logger.Info("github identity linked", slog.String("userID", existing.ID))
			return s.issueSession(existing)
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("github sign-in: %w", err)
		}
	}

	name := gh.Name
	if name == "" {
		name = gh.Login
	}
	email := normalizeEmail(gh.Email)
	if email == "" {
		email = fmt.Sprintf("%s@users.noreply.github.com", strings.ToLower(gh.Login))
	}

	user = &model.User{
		Name:             name,
		Email:            email,
		Role:             model.RoleUser,
		IsEmailVerified:  true,
		GitHubID:         gh.ID,
		AvatarEmoji:      defaultAvatarEmoji,
		AvatarBackground: defaultAvatarBackground,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("github sign-in: creating account: %w", err)
	}
	s.recordRegistration(ctx, user, "github")

	s.logger.Info("user registered via github",
		slog.String("userID", user.ID),
		slog.Int64("githubID", gh.ID),
	)
	return s.issueSession(user)
}

func (s *AuthService) issueSession(user *model.User) (*AuthResult, error) {
	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("issuing session: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// issueOTP replaces the pending token and emails the code. Failures are
// logged, not surfaced: the account exists either way and the user can hit
// resend.
func (s *AuthService) issueOTP(ctx context.Context, user *model.User) {
	otp, err := generateOTP()
	if err != nil {
		s.logger.Error("generating OTP", slog.String("error", err.Error()))
		return
	}

	token := &model.VerificationToken{
		Email:     user.Email,
		OTP:       otp,
		ExpiresAt: s.now().Add(otpTTL),
	}
	if err := s.tokens.Replace(ctx, token); err != nil {
		s.logger.Error("storing verification token", slog.String("error", err.Error()))
		return
	}
	if err := s.mailer.SendOTP(user.Email, user.Name, otp); err != nil {
		s.logger.Error("sending verification email", slog.String("error", err.Error()))
	}
}

// recordRegistration appends a user_registration entry to the admin
// notification log. Best effort.
func (s *AuthService) recordRegistration(ctx context.Context, user *model.User, method string) {
	n := &model.AdminNotification{
		Type:      model.AdminNotificationUserRegistration,
		UserID:    user.ID,
		UserName:  user.Name,
		UserEmail: user.Email,
		Message:   fmt.Sprintf("New user registered: %s (%s)", user.Name, user.Email),
		Metadata:  map[string]string{"method": method},
	}
	if err := s.adminNotifs.Create(ctx, n); err != nil {
		s.logger.Error("recording registration notification", slog.String("error", err.Error()))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
