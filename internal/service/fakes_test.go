package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/arefin/taskboard/internal/apperror"
	"github.com/arefin/taskboard/internal/model"
	"github.com/arefin/taskboard/internal/repository"
)

// In-memory fakes for the repository interfaces. Ordered repos return rows in
// reverse insertion order, matching the newest-first contract of the real
// stores. Create preserves a caller-set CreatedAt so tests can control
// recency.

type fakeUserRepo struct {
	mu    sync.Mutex
	users []*model.User
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperror.Conflict("email already registered")
		}
	}
	user.ID = xid.New().String()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users = append(r.users, &cp)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (r *fakeUserRepo) GetByGitHubID(_ context.Context, githubID int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.GitHubID != 0 && u.GitHubID == githubID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user", "github")
}

func (r *fakeUserRepo) GetByResetToken(_ context.Context, token string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetToken != "" && u.ResetToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user", "reset token")
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.ID == user.ID {
			user.UpdatedAt = time.Now()
			cp := *user
			r.users[i] = &cp
			return nil
		}
	}
	return apperror.NotFound("user", user.ID)
}

func (r *fakeUserRepo) List(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.User, 0, len(r.users))
	for i := len(r.users) - 1; i >= 0; i-- {
		out = append(out, *r.users[i])
	}
	return out, nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens []*model.VerificationToken
}

var _ repository.VerificationTokenRepository = (*fakeTokenRepo)(nil)

func (r *fakeTokenRepo) Replace(_ context.Context, token *model.VerificationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.tokens[:0]
	for _, t := range r.tokens {
		if !strings.EqualFold(t.Email, token.Email) {
			kept = append(kept, t)
		}
	}
	r.tokens = kept

	token.ID = xid.New().String()
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	cp := *token
	r.tokens = append(r.tokens, &cp)
	return nil
}

func (r *fakeTokenRepo) GetByEmail(_ context.Context, email string) (*model.VerificationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if strings.EqualFold(t.Email, email) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("verification token", email)
}

func (r *fakeTokenRepo) IncrementAttempts(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.ID == id {
			t.Attempts++
			return nil
		}
	}
	return apperror.NotFound("verification token", id)
}

func (r *fakeTokenRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.tokens {
		if t.ID == id {
			r.tokens = append(r.tokens[:i], r.tokens[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("verification token", id)
}

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks []*model.Task
}

var _ repository.TaskRepository = (*fakeTaskRepo)(nil)

func (r *fakeTaskRepo) Create(_ context.Context, task *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task.ID = xid.New().String()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	task.UpdatedAt = task.CreatedAt
	cp := *task
	r.tasks = append(r.tasks, &cp)
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("task", id)
}

func (r *fakeTaskRepo) ListByUser(_ context.Context, userID string) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Task
	for i := len(r.tasks) - 1; i >= 0; i-- {
		if r.tasks[i].UserID == userID {
			out = append(out, *r.tasks[i])
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) ListOpenByUser(_ context.Context, userID string) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Task
	for i := len(r.tasks) - 1; i >= 0; i-- {
		t := r.tasks[i]
		if t.UserID == userID && t.Status != model.StatusCompleted {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) ListAll(_ context.Context) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Task
	for i := len(r.tasks) - 1; i >= 0; i-- {
		out = append(out, *r.tasks[i])
	}
	return out, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.tasks {
		if t.ID == task.ID {
			task.UpdatedAt = time.Now()
			cp := *task
			cp.CreatedAt = t.CreatedAt
			r.tasks[i] = &cp
			return nil
		}
	}
	return apperror.NotFound("task", task.ID)
}

func (r *fakeTaskRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.tasks {
		if t.ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("task", id)
}

func (r *fakeTaskRepo) CountByCategory(_ context.Context, userID, name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, t := range r.tasks {
		if t.UserID == userID && t.Category == name {
			count++
		}
	}
	return count, nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories []*model.Category
}

var _ repository.CategoryRepository = (*fakeCategoryRepo)(nil)

func (r *fakeCategoryRepo) Create(_ context.Context, category *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.UserID == category.UserID && c.Name == category.Name {
			return apperror.Conflict("category " + category.Name + " already exists")
		}
	}
	category.ID = xid.New().String()
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	cp := *category
	r.categories = append(r.categories, &cp)
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id string) (*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("category", id)
}

func (r *fakeCategoryRepo) ListByUser(_ context.Context, userID string) ([]model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Category
	for _, c := range r.categories {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, category *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.UserID == category.UserID && c.Name == category.Name && c.ID != category.ID {
			return apperror.Conflict("category " + category.Name + " already exists")
		}
	}
	for i, c := range r.categories {
		if c.ID == category.ID {
			category.UpdatedAt = time.Now()
			cp := *category
			cp.CreatedAt = c.CreatedAt
			r.categories[i] = &cp
			return nil
		}
	}
	return apperror.NotFound("category", category.ID)
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.categories {
		if c.ID == id {
			r.categories = append(r.categories[:i], r.categories[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("category", id)
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*model.Notification
}

var _ repository.NotificationRepository = (*fakeNotificationRepo)(nil)

func (r *fakeNotificationRepo) InsertIfAbsent(_ context.Context, n *model.Notification) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.notifications {
		if existing.UserID == n.UserID && existing.TaskID == n.TaskID && existing.Type == n.Type {
			return false, nil
		}
	}
	n.ID = xid.New().String()
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	cp := *n
	r.notifications = append(r.notifications, &cp)
	return true, nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("notification", id)
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID string) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].UserID == userID {
			out = append(out, *r.notifications[i])
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return apperror.NotFound("notification", id)
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notifications {
		if n.ID == id {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("notification", id)
}

func (r *fakeNotificationRepo) DeleteByTask(_ context.Context, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.notifications[:0]
	for _, n := range r.notifications {
		if n.TaskID != taskID {
			kept = append(kept, n)
		}
	}
	r.notifications = kept
	return nil
}

func (r *fakeNotificationRepo) DeleteAllByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.notifications[:0]
	for _, n := range r.notifications {
		if n.UserID != userID {
			kept = append(kept, n)
		}
	}
	r.notifications = kept
	return nil
}

type fakeAdminNotificationRepo struct {
	mu            sync.Mutex
	notifications []*model.AdminNotification
}

var _ repository.AdminNotificationRepository = (*fakeAdminNotificationRepo)(nil)

func (r *fakeAdminNotificationRepo) Create(_ context.Context, n *model.AdminNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = xid.New().String()
	n.CreatedAt = time.Now()
	cp := *n
	r.notifications = append(r.notifications, &cp)
	return nil
}

func (r *fakeAdminNotificationRepo) GetByID(_ context.Context, id string) (*model.AdminNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("admin notification", id)
}

func (r *fakeAdminNotificationRepo) List(_ context.Context) ([]model.AdminNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AdminNotification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		out = append(out, *r.notifications[i])
	}
	return out, nil
}

func (r *fakeAdminNotificationRepo) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return apperror.NotFound("admin notification", id)
}

func (r *fakeAdminNotificationRepo) MarkAllRead(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		n.IsRead = true
	}
	return nil
}

func (r *fakeAdminNotificationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notifications {
		if n.ID == id {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("admin notification", id)
}

// fakeMailer records outgoing email for assertions.
type fakeMailer struct {
	mu         sync.Mutex
	otps       map[string]string // email -> last OTP
	resetLinks map[string]string // email -> last link
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{otps: map[string]string{}, resetLinks: map[string]string{}}
}

func (m *fakeMailer) SendOTP(to, _, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otps[to] = otp
	return nil
}

func (m *fakeMailer) SendPasswordReset(to, _, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLinks[to] = link
	return nil
}

func (m *fakeMailer) lastOTP(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.otps[to]
}

func (m *fakeMailer) lastResetLink(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resetLinks[to]
}
