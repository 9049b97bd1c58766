// Package email sends operator mail over SMTP.
package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/directory-admin/pkg/messaging"
)

type Service interface {
	SendNotification(ctx context.Context, n messaging.Notification) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// To receives notification mail.
	To string
	// SubjectPrefix is prepended to every subject.
	SubjectPrefix string
}

// Sender delivers built messages; *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPService struct {
	cfg    Config
	sender Sender
}

// NewSMTPService dials cfg.Host for every send.
func NewSMTPService(cfg Config) (*SMTPService, error) {
	if cfg.Host == "" {
		return nil, errors.New("mail host is required")
	}
	if cfg.From == "" || cfg.To == "" {
		return nil, errors.New("mail from and to are required")
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	return NewWithSender(cfg, gomail.NewDialer(cfg.Host, port, cfg.Username, cfg.Password)), nil
}

func NewWithSender(cfg Config, s Sender) *SMTPService {
	return &SMTPService{cfg: cfg, sender: s}
}

// SendNotification mails n to the configured admin address.
func (s *SMTPService) SendNotification(ctx context.Context, n messaging.Notification) error {
	subject := fmt.Sprintf("[%s] %s", strings.ToUpper(n.Level), truncate(n.Message, 60))

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", n.Message)
	fmt.Fprintf(&b, "Level:      %s\n", n.Level)
	fmt.Fprintf(&b, "Time:       %s\n", n.Time.Format("2006-01-02 15:04:05 MST"))
	if n.Source != "" {
		fmt.Fprintf(&b, "Source:     %s\n", n.Source)
	}
	if n.RequestID != "" {
		fmt.Fprintf(&b, "Request ID: %s\n", n.RequestID)
	}
	fmt.Fprintf(&b, "ID:         %s\n", n.ID)

	return s.SendCustom(ctx, s.cfg.To, subject, b.String())
}

func (s *SMTPService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", s.cfg.SubjectPrefix+subject)
	m.SetBody("text/plain", content)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
