package jobs

import (
	"errors"

	"lendstock-sync/internal/logger"
	"lendstock-sync/internal/sync"
)

// FullSync runs a push-then-pull pass across every family in dependency
// order. A failed family is logged and the remaining families still run.
func (jr *JobRunner) FullSync() {
	jr.runWithRecovery("FullSync", func() {
		ctx, cancel := jr.jobContext()
		defer cancel()

		for _, engine := range jr.engines.All() {
			result, err := engine.PerformFullSync(ctx, jr.ownerID)
			if errors.Is(err, sync.ErrInFlight) {
				logger.Info("Sync already in flight, skipping family", "family", engine.Family())
				continue
			}
			if err != nil {
				logger.Error("Family sync failed", "family", engine.Family(), "error", err)
				continue
			}
			logger.Info("Family synced",
				"family", result.Family,
				"pushed_ok", result.Pushed.Succeeded,
				"pushed_failed", result.Pushed.Failed,
				"pulled", result.Pulled,
				"skipped", result.Skipped)
		}
	})
}

// RetryPendingPushes runs a push-only pass across every family. Used as the
// cheap connectivity-retry job between full syncs.
func (jr *JobRunner) RetryPendingPushes() {
	jr.runWithRecovery("RetryPendingPushes", func() {
		ctx, cancel := jr.jobContext()
		defer cancel()

		for _, engine := range jr.engines.All() {
			result, err := engine.SyncToRemote(ctx, jr.ownerID)
			if errors.Is(err, sync.ErrInFlight) {
				continue
			}
			if err != nil {
				logger.Error("Push retry failed", "family", engine.Family(), "error", err)
				continue
			}
			if result.Pushed.Succeeded > 0 || result.Pushed.Failed > 0 {
				logger.Info("Pushed pending changes",
					"family", result.Family,
					"ok", result.Pushed.Succeeded,
					"failed", result.Pushed.Failed)
			}
		}
	})
}
