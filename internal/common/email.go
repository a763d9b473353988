package common

import (
	"bytes"
	"context"
	"net/smtp"
	"strings"
	"sync"

	"github.com/jordan-wright/email"
)

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	Send(ctx context.Context, msg Email) error
}

// Attachment is a file carried by an Email.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Email represents a single outbound message.
type Email struct {
	To          string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// SMTPEmail delivers messages through an SMTP relay.
type SMTPEmail struct {
	Addr     string
	Host     string
	User     string
	Password string
	From     string
}

// Send implements EmailSender.
func (s SMTPEmail) Send(ctx context.Context, msg Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := email.NewEmail()
	e.From = s.From
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	if msg.Text != "" {
		e.Text = []byte(msg.Text)
	}
	if msg.HTML != "" {
		e.HTML = []byte(msg.HTML)
	}
	for _, a := range msg.Attachments {
		if _, err := e.Attach(bytes.NewReader(a.Data), a.Filename, a.ContentType); err != nil {
			return err
		}
	}
	var auth smtp.Auth
	if strings.TrimSpace(s.User) != "" {
		auth = smtp.PlainAuth("", s.User, s.Password, s.Host)
	}
	return e.Send(s.Addr, auth)
}

// InMemoryEmail provides a test-friendly email sender that records messages.
type InMemoryEmail struct {
	mu     sync.Mutex
	Outbox []Email
}

// Send records the email in memory.
func (m *InMemoryEmail) Send(_ context.Context, msg Email) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outbox = append(m.Outbox, msg)
	return nil
}

// NopEmailSender implements EmailSender without performing any action.
type NopEmailSender struct{}

// Send implements EmailSender.
func (NopEmailSender) Send(context.Context, Email) error { return nil }
