// Package notify sends outbound email. The only message this service sends
// is the password-recovery mail carrying a reset link.
package notify

import (
	"context"
	"fmt"
	"os"
	"strconv"

	gomail "gopkg.in/gomail.v2"
)

// SMTPConfig holds connection details for the outbound mail provider.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPConfigFromEnv reads mailer config from environment variables.
func SMTPConfigFromEnv() SMTPConfig {
	port := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			port = n
		}
	}
	return SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("MAIL_FROM"),
	}
}

// dialer abstracts gomail.Dialer so tests can avoid a live SMTP server.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender delivers mail over SMTP via gomail.
type SMTPSender struct {
	cfg    SMTPConfig
	dialer dialer
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// SendPasswordReset emails the recovery link. The context deadline is
// honored up front; gomail itself dials synchronously.
func (s *SMTPSender) SendPasswordReset(ctx context.Context, to, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Password recovery")
	m.SetBody("text/plain", fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Open the link below to choose a new password. The link expires in one hour.\n\n%s\n\n"+
			"If you did not request this, you can ignore this message.\n", link))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
