package notify

import (
	"context"
	"log/slog"

	"github.com/shiftwatch/shiftwatch/pkg/logger"
)

// Transport delivers a rendered message to a recipient. Delivery is
// fire-and-forget from this package's perspective; the default
// implementation just logs.
type Transport interface {
	Send(ctx context.Context, recipientID, text string) error
}

// LogTransport writes outbound messages to the log instead of a
// messaging backend. Used when no real transport is configured.
type LogTransport struct {
	log *slog.Logger
}

func NewLogTransport(log *slog.Logger) *LogTransport {
	return &LogTransport{log: log.With(logger.Scope("notify"))}
}

func (t *LogTransport) Send(_ context.Context, recipientID, text string) error {
	t.log.Info("outbound message",
		slog.String("recipient", recipientID),
		slog.String("text", text),
	)
	return nil
}
