package jobs

import (
	"context"
	"log/slog"
)

// LogNotifier records deliveries instead of sending them. Stands in for the
// real email/SMS channel, which is an external collaborator.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, notification Notification) error {
	n.logger.Info("notification dispatched",
		"customer_id", notification.CustomerID,
		"kind", notification.Kind,
		"fields", notification.Fields,
	)
	return nil
}
