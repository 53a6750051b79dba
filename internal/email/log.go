package email

import (
	"context"

	"go.uber.org/zap"

	"cashtrackr/internal/logger"
)

// LogSender records messages in the application log instead of sending
// them. It is used in development when no mail provider is configured.
// Bodies carry confirmation and reset codes, so only the envelope is
// logged; the full message stays in the email_outbox table.
type LogSender struct {
	// Log defaults to the global logger.
	Log *zap.SugaredLogger
}

// Send implements Sender.
func (s LogSender) Send(_ context.Context, msg Message) error {
	log := s.Log
	if log == nil {
		log = logger.Get()
	}
	log.Infow("email not sent (no provider configured)",
		"kind", msg.Kind,
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}
