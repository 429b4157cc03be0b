package sender

import (
	"context"
	"log/slog"

	"visitreg/internal/notify/models"
)

// LogSender writes notifications to the log. It is the fallback channel
// when nothing else is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Send(ctx context.Context, msg *models.Message) error {
	s.logger.InfoContext(ctx, "site manager notification",
		"visit_id", msg.VisitID.String(),
		"site", string(msg.Site),
		"subject", msg.Subject,
		"recipients", len(msg.To),
	)
	return nil
}
