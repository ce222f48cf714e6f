package mailer

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogMailer writes messages to the log instead of sending them. Used in development.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Name() string { return "log" }

func (m *LogMailer) Send(_ context.Context, msg Message) (string, error) {
	if err := msg.validate(); err != nil {
		return "", err
	}
	id := "log-" + uuid.NewString()
	m.logger.Info("outreach email",
		zap.String("message_id", id),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("body_length", len(msg.Body)),
	)
	return id, nil
}

var _ Mailer = (*LogMailer)(nil)
