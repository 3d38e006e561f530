// Package mail provides outbound email delivery for appointment
// notifications, with an SMTP implementation, a dev-mode logger, and a
// test double.
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Mailer is the interface for sending email messages.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// SMTPConfig holds connection settings for an SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

// SMTPMailer sends multipart (text + HTML) messages through an SMTP relay.
type SMTPMailer struct {
	cfg    SMTPConfig
	logger zerolog.Logger
}

func NewSMTPMailer(cfg SMTPConfig, logger zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if m.cfg.Host == "" || m.cfg.From == "" {
		return errors.New("smtp configuration incomplete")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	msg := buildMIMEMessage(m.cfg.From, to, subject, htmlBody, textBody)

	var auth smtp.Auth
	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	var err error
	if m.cfg.UseTLS {
		err = m.sendTLS(addr, auth, to, msg)
	} else {
		err = smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg)
	}
	if err != nil {
		m.logger.Error().Err(err).Str("to", to).Str("subject", subject).Msg("email send failed")
		return fmt.Errorf("sending email to %s: %w", to, err)
	}

	m.logger.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

// sendTLS delivers the message over a connection that must negotiate
// STARTTLS. Relays that do not offer the extension are rejected instead
// of silently falling back to plaintext.
func (m *SMTPMailer) sendTLS(addr string, auth smtp.Auth, to string, msg []byte) error {
	c, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); !ok {
		return errors.New("smtp server does not support STARTTLS")
	}
	if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
		return err
	}
	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return err
		}
	}
	if err := c.Mail(m.cfg.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// buildMIMEMessage assembles a multipart/alternative message with a plain
// text part followed by an HTML part.
func buildMIMEMessage(from, to, subject, htmlBody, textBody string) []byte {
	const boundary = "meditrack-alt-boundary"
	if textBody == "" {
		textBody = htmlBody
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(textBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

// LogMailer writes a one-line preview of each message instead of sending
// it. Used when email delivery is disabled.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, to, subject, htmlBody, textBody string) error {
	preview := textBody
	if preview == "" {
		preview = htmlBody
	}
	preview = strings.Join(strings.Fields(preview), " ")
	if len(preview) > 200 {
		preview = preview[:200]
	}
	m.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Str("preview", preview).
		Msg("email dev mode")
	return nil
}

// SentMessage records a single call to Mock.Send.
type SentMessage struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mock is a test double for Mailer.
type Mock struct {
	mu         sync.Mutex
	messages   []SentMessage
	ShouldFail bool
	FailError  string
}

// Send records the call and optionally returns an error.
func (m *Mock) Send(_ context.Context, to, subject, htmlBody, textBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, SentMessage{To: to, Subject: subject, HTMLBody: htmlBody, TextBody: textBody})
	if m.ShouldFail {
		if m.FailError == "" {
			return errors.New("mock send failure")
		}
		return errors.New(m.FailError)
	}
	return nil
}

// Messages returns a copy of recorded messages.
func (m *Mock) Messages() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.messages))
	copy(out, m.messages)
	return out
}
