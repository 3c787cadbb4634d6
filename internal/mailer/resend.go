// Package mailer delivers rendered report emails through Resend.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dvloznov/fingenius/internal/logger"
	"github.com/resend/resend-go/v2"
)

// ErrNotConfigured is returned by every send when no API key was provided.
var ErrNotConfigured = errors.New("mailer not configured")

// Message is one outgoing email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Dispatcher sends a message or returns a delivery error.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
}

// ResendDispatcher is the Dispatcher backed by the Resend API.
type ResendDispatcher struct {
	client *resend.Client
	from   string
}

// NewResendDispatcher creates a dispatcher sending from the given address.
// An empty apiKey yields a dispatcher whose sends fail with ErrNotConfigured.
func NewResendDispatcher(apiKey, from string) *ResendDispatcher {
	d := &ResendDispatcher{from: from}
	if apiKey != "" {
		d.client = resend.NewClient(apiKey)
	}
	return d
}

// Send implements Dispatcher.
func (d *ResendDispatcher) Send(ctx context.Context, msg Message) error {
	if d.client == nil {
		return fmt.Errorf("Send: %w", ErrNotConfigured)
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("Send: recipient is required")
	}

	params := &resend.SendEmailRequest{
		From:    d.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	sent, err := d.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("Send: resend: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Str("email_id", sent.Id).
		Str("to", msg.To).
		Msg("Email accepted by Resend")

	return nil
}

// Ensure ResendDispatcher implements Dispatcher.
var _ Dispatcher = (*ResendDispatcher)(nil)
