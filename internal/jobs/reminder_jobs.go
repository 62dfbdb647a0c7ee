package jobs

import (
	"time"

	"lendstock-sync/internal/logger"
)

// EvaluateDueReminders fires notifications for reminders whose schedule has
// come due and records them in local history.
func (jr *JobRunner) EvaluateDueReminders() {
	jr.runWithRecovery("EvaluateDueReminders", func() {
		ctx, cancel := jr.jobContext()
		defer cancel()

		fired, err := jr.engines.Reminders.EvaluateDue(ctx, jr.ownerID, time.Now())
		if err != nil {
			logger.Error("Reminder evaluation failed", "error", err)
			return
		}
		if fired > 0 {
			logger.Info("Fired due reminders", "count", fired)
		}
	})
}
