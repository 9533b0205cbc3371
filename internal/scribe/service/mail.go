package service

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/aussiebroadwan/scribe/internal/scribe/mail"
	"github.com/aussiebroadwan/scribe/pkg/slogx"
)

// deliver sends msg and reports whether it went out. Failures are logged and
// never change the outcome of the operation that triggered them.
func deliver(ctx context.Context, sender mail.Sender, msg mail.Message) bool {
	log := slogx.FromContext(ctx)
	if sender == nil {
		log.Warn("no mail sender configured", slog.String("kind", string(msg.Kind)))
		return false
	}
	if err := sender.Send(ctx, msg); err != nil {
		log.Warn("mail delivery failed",
			slog.String("kind", string(msg.Kind)),
			slog.Any("error", err),
		)
		return false
	}
	return true
}

// frontendLink joins path segments onto the frontend base URL.
func frontendLink(base string, elem ...string) string {
	link, err := url.JoinPath(base, elem...)
	if err != nil {
		return base
	}
	return link
}
