package notification

import (
	"errors"
	"fmt"
	"log"
	"net/smtp"
	"strconv"
	"strings"
)

// Sender dispatches one email. Implementations must be safe for concurrent
// use; the scheduler and request handlers share one instance.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Mailer struct {
	cfg SMTPConfig
}

func NewMailer(cfg SMTPConfig) (*Mailer, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, errors.New("smtp host/port required")
	}
	if cfg.From == "" {
		return nil, errors.New("smtp from address required")
	}
	return &Mailer{cfg: cfg}, nil
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	if to == "" {
		return errors.New("recipient email is empty")
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	headers := []string{
		fmt.Sprintf("From: %q <%s>", "Our Diary", m.cfg.From),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=utf-8",
		"",
	}
	msg := strings.Join(headers, "\r\n") + htmlBody

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg))
}

func ConfigFromEnv(host, port, username, password, from string) (SMTPConfig, error) {
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return SMTPConfig{}, fmt.Errorf("invalid smtp port: %w", err)
	}
	return SMTPConfig{
		Host:     host,
		Port:     portNum,
		Username: username,
		Password: password,
		From:     from,
	}, nil
}

// LogSender is the degraded mode used when SMTP is unconfigured: mails are
// logged instead of sent, so flows like signup verification stay usable in
// development.
type LogSender struct{}

func (LogSender) Send(to, subject, _ string) error {
	log.Printf("[mail] SMTP not configured; simulated send to=%s subject=%q", to, subject)
	return nil
}
