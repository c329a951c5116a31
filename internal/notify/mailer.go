// Package notify sends transactional email (price-drop alerts, magic login
// links) through the Resend API. When no API key or sender address is
// configured every send is skipped and reported as ErrDisabled.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
)

// ErrDisabled is returned by a Mailer that has no credentials. Callers treat
// it as "skipped", not as a failure.
var ErrDisabled = errors.New("notify: mail disabled")

// Message is one plain-text email.
type Message struct {
	To      string
	Subject string
	Text    string
}

// Mailer delivers a Message.
type Mailer interface {
	Send(ctx context.Context, m Message) error
	Enabled() bool
}

// emailSender is the subset of resend.EmailsSvc used here.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendMailer sends through the Resend HTTP API.
type ResendMailer struct {
	from   string
	emails emailSender
}

// NewResendMailer returns a Resend-backed Mailer, or a disabled one when
// apiKey or from is blank.
func NewResendMailer(apiKey, from string) Mailer {
	apiKey, from = strings.TrimSpace(apiKey), strings.TrimSpace(from)
	if apiKey == "" || from == "" {
		return Disabled{}
	}
	return &ResendMailer{from: from, emails: resend.NewClient(apiKey).Emails}
}

// Enabled is always true for a constructed ResendMailer.
func (m *ResendMailer) Enabled() bool { return true }

// Send posts one email. Provider errors are wrapped with the recipient.
func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("notify: empty recipient")
	}
	_, err := m.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("resend to %s: %w", msg.To, err)
	}
	return nil
}

// Disabled is the Mailer used when mail is not configured.
type Disabled struct{}

// Enabled reports false.
func (Disabled) Enabled() bool { return false }

// Send always returns ErrDisabled.
func (Disabled) Send(context.Context, Message) error { return ErrDisabled }
