// Package server assembles the router and owns the HTTP lifecycle. It is the
// composition root: every repository, service, and handler is wired here.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/arefin/taskboard/internal/auth"
	"github.com/arefin/taskboard/internal/config"
	"github.com/arefin/taskboard/internal/handler"
	"github.com/arefin/taskboard/internal/mail"
	"github.com/arefin/taskboard/internal/metrics"
	"github.com/arefin/taskboard/internal/middleware"
	sqliteRepo "github.com/arefin/taskboard/internal/repository/sqlite"
	"github.com/arefin/taskboard/internal/service"
)

// Server holds the router and the resources it must release on shutdown.
type Server struct {
	router *chi.Mux
	cfg    config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.cfg.JWTSecret, s.cfg.SessionTTL)
	if err != nil {
		return err
	}

	mailer := mail.New(mail.Config{
		Host: s.cfg.SMTPHost,
		Port: s.cfg.SMTPPort,
		User: s.cfg.SMTPUser,
		Pass: s.cfg.SMTPPass,
		From: s.cfg.MailFrom,
	}, s.logger)

	var github *auth.GitHubProvider
	if s.cfg.GitHubClientID != "" {
		github = auth.NewGitHubProvider(
			s.cfg.GitHubClientID,
			s.cfg.GitHubClientSecret,
			s.cfg.GitHubCallbackURL,
		)
	}

	// Services over the per-collection stores.
	authService := service.NewAuthService(
		s.db.Users(),
		s.db.Tokens(),
		s.db.AdminNotifications(),
		auth.NewPasswordService(),
		tokens,
		mailer,
		s.cfg.AppURL,
		s.logger,
	)
	taskService := service.NewTaskService(s.db.Tasks(), s.db.Notifications(), s.db.Users(), s.logger)
	categoryService := service.NewCategoryService(s.db.Categories(), s.db.Tasks(), s.logger)
	notificationService := service.NewNotificationService(s.db.Notifications(), s.db.Tasks(), s.logger)
	calendarService := service.NewCalendarService(s.db.Tasks(), s.db.Users(), s.logger)
	dashboardService := service.NewDashboardService(s.db.Tasks(), s.db.Users(), s.logger)
	adminNotifService := service.NewAdminNotificationService(s.db.AdminNotifications(), s.logger)

	authHandler := handler.NewAuthHandler(authService, tokens, github, s.logger)
	taskHandler := handler.NewTaskHandler(taskService, s.logger)
	categoryHandler := handler.NewCategoryHandler(categoryService, s.logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, s.logger)
	calendarHandler := handler.NewCalendarHandler(calendarService, s.logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, s.logger)
	adminHandler := handler.NewAdminHandler(authService, taskService, adminNotifService, s.logger)

	m := metrics.New("taskboard")

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(m.Middleware)

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	s.router.Handle("/metrics", metrics.Handler())

	if authHandler.GitHubEnabled() {
		s.router.Get("/auth/github/login", authHandler.GitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.GitHubCallback)
	}

	s.router.Route("/api", func(r chi.Router) {
		// Public auth endpoints.
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Post("/auth/verify-email", authHandler.VerifyEmail)
		r.Post("/auth/resend-otp", authHandler.ResendOTP)
		r.Post("/auth/forgot-password", authHandler.ForgotPassword)
		r.Post("/auth/reset-password", authHandler.ResetPassword)

		// Everything below needs a valid session.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/auth/me", authHandler.Me)
			r.Put("/auth/profile", authHandler.UpdateProfile)
			r.Put("/auth/password", authHandler.ChangePassword)

			r.Get("/tasks", taskHandler.List)
			r.Post("/tasks", taskHandler.Create)
			r.Get("/tasks/{id}", taskHandler.Get)
			r.Put("/tasks/{id}", taskHandler.Update)
			r.Delete("/tasks/{id}", taskHandler.Delete)

			r.Get("/categories", categoryHandler.List)
			r.Post("/categories", categoryHandler.Create)
			r.Put("/categories/{id}", categoryHandler.Update)
			r.Delete("/categories/{id}", categoryHandler.Delete)

			r.Get("/calendar", calendarHandler.Month)
			r.Get("/calendar/{date}", calendarHandler.Day)

			r.Get("/notifications", notificationHandler.List)
			r.Post("/notifications/read-all", notificationHandler.MarkAllRead)
			r.Patch("/notifications/{id}/read", notificationHandler.MarkRead)
			r.Delete("/notifications/{id}", notificationHandler.Delete)
			r.Delete("/notifications", notificationHandler.Clear)

			r.Get("/dashboard", dashboardHandler.Stats)

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireAdmin)

				r.Get("/users", adminHandler.ListUsers)
				r.Get("/tasks", adminHandler.ListTasks)
				r.Delete("/tasks/{id}", adminHandler.DeleteTask)
				r.Get("/calendar", calendarHandler.AdminMonth)
				r.Get("/calendar/{date}", calendarHandler.AdminDay)
				r.Get("/dashboard", dashboardHandler.AdminStats)
				r.Get("/notifications", adminHandler.ListNotifications)
				r.Post("/notifications/read-all", adminHandler.MarkAllNotificationsRead)
				r.Patch("/notifications/{id}/read", adminHandler.MarkNotificationRead)
				r.Delete("/notifications/{id}", adminHandler.DeleteNotification)
			})
		})
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then drains in-flight requests
// and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", s.cfg.Addr),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
