package sync

import (
	"context"

	"lendstock-sync/internal/logger"
)

// Notifier delivers a reminder notification to the device user. The actual
// transport (system notification, push service relay) lives outside the
// sync core.
type Notifier interface {
	Notify(ctx context.Context, pushToken, title, message string) error
}

// LogNotifier records deliveries in the log. It stands in wherever no real
// transport is wired, and keeps due evaluation testable.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, pushToken, title, message string) error {
	logger.InfoContext(ctx, "reminder notification", "title", title, "message", message)
	return nil
}
