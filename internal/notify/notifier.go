// Package notify composes and delivers the plain-text emails sent after a
// submission has been recorded.
package notify

import (
	"context"
	"errors"
	"log/slog"
)

// ErrNoRecipient is returned when a message has no usable primary recipient
var ErrNoRecipient = errors.New("no recipient")

// Attachment is a file carried by a message
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is a plain-text email with one primary recipient, an optional
// carbon copy and at most one attachment
type Message struct {
	To         string
	CC         string
	Subject    string
	Body       string
	Attachment *Attachment
}

// Recipients returns the envelope recipients, To first, without duplicates
func (m Message) Recipients() []string {
	rcpts := make([]string, 0, 2)
	if m.To != "" {
		rcpts = append(rcpts, m.To)
	}
	if m.CC != "" && m.CC != m.To {
		rcpts = append(rcpts, m.CC)
	}
	return rcpts
}

// Notifier sends messages
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// NoopNotifier logs messages instead of sending them. Used when no SMTP
// host is configured.
type NoopNotifier struct {
	logger *slog.Logger
}

// NewNoopNotifier creates a NoopNotifier
func NewNoopNotifier(logger *slog.Logger) *NoopNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopNotifier{logger: logger}
}

// Send logs the message summary and returns nil
func (n *NoopNotifier) Send(_ context.Context, msg Message) error {
	attrs := []any{
		slog.String("subject", msg.Subject),
		slog.Int("recipients", len(msg.Recipients())),
	}
	if msg.Attachment != nil {
		attrs = append(attrs, slog.Int("attachment_bytes", len(msg.Attachment.Content)))
	}
	n.logger.Info("mail disabled, notification not sent", attrs...)
	return nil
}
