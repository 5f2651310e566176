// Package mail sends transactional email over SMTP. When no SMTP host is
// configured the mailer runs in dev mode: messages are logged to the console
// instead of being sent, and callers still get a nil error.
package mail

import (
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// Config is the SMTP configuration; an empty Host enables dev mode.
type Config struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

type Mailer struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Mailer {
	if cfg.Host == "" {
		logger.Warn("SMTP_HOST not set, mailer running in dev mode, emails are logged only")
	}
	return &Mailer{cfg: cfg, logger: logger}
}

// DevMode reports whether emails are logged instead of sent.
func (m *Mailer) DevMode() bool { return m.cfg.Host == "" }

// SendOTP emails the 6-digit verification code.
func (m *Mailer) SendOTP(to, name, otp string) error {
	subject := "Verify your email"
	body := fmt.Sprintf(`<h1>Welcome, %s!</h1>
		<p>Your verification code is:</p>
		<h2>%s</h2>
		<p>It expires in 15 minutes.</p>`, name, otp)

	if m.DevMode() {
		m.logger.Info("dev mode: verification OTP",
			slog.String("to", to),
			slog.String("otp", otp),
		)
		return nil
	}
	return m.send(to, subject, body)
}

// SendPasswordReset emails the reset link.
func (m *Mailer) SendPasswordReset(to, name, link string) error {
	subject := "Reset your password"
	body := fmt.Sprintf(`<h1>Password Reset Request</h1>
		<p>Hi %s, click the link below to set a new password:</p>
		<a href="%s">Reset Password</a>
		<p>If you did not request this, ignore this email.</p>`, name, link)

	if m.DevMode() {
		m.logger.Info("dev mode: password reset link",
			slog.String("to", to),
			slog.String("link", link),
		)
		return nil
	}
	return m.send(to, subject, body)
}

func (m *Mailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Pass)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("mail: sending %q to %s: %w", subject, to, err)
	}
	return nil
}
