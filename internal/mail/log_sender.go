package mail

import (
	"context"

	"github.com/inkwell/internal/logging"
)

// LogSender writes messages to the application log instead of delivering them.
// Used when no SMTP host is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	logging.Info().
		Str("from", msg.From).
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("mail not sent: no smtp host configured")
	return nil
}
