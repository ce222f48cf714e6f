// Package mailer delivers outreach emails through a configurable provider.
package mailer

import (
	"context"
	"errors"
	"strings"
)

// Message is a plain-text email addressed to a single recipient.
type Message struct {
	To      string
	Subject string
	Body    string
	ReplyTo string
}

// Mailer sends one message and returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
	Name() string
}

func (m Message) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("recipient is required")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("subject is required")
	}
	if strings.TrimSpace(m.Body) == "" {
		return errors.New("body is required")
	}
	return nil
}
