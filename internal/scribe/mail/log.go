package mail

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/scribe/pkg/slogx"
)

// LogSender renders messages and logs them instead of delivering. It is the
// sender used when no SMTP host is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	rendered, err := Render(msg)
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("mail not delivered, no smtp relay configured",
		slog.String("kind", string(msg.Kind)),
		slog.String("to", msg.To),
		slog.String("subject", rendered.Subject),
	)
	return nil
}
