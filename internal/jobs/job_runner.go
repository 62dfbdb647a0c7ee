package jobs

import (
	"context"
	"time"

	"lendstock-sync/internal/config"
	"lendstock-sync/internal/logger"
	"lendstock-sync/internal/sync"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	engines *Engines
	ownerID string
	config  *config.Config
}

// Engines holds the per-family sync engines used by jobs
type Engines struct {
	Inventory     *sync.InventoryEngine
	Loans         *sync.LoanEngine
	Reminders     *sync.ReminderEngine
	Notifications *sync.NotificationEngine
}

// All returns the engines in sync order. Inventory goes before loans so
// freshly assigned item ids exist when loan lines reference them, and
// reminders before history so dedup lookups can resolve reminder ids.
func (e *Engines) All() []sync.Engine {
	return []sync.Engine{e.Inventory, e.Loans, e.Reminders, e.Notifications}
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(engines *Engines, ownerID string, cfg *config.Config) *JobRunner {
	return &JobRunner{
		engines: engines,
		ownerID: ownerID,
		config:  cfg,
	}
}

// Config returns the configuration jobs were built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// Engines exposes the per-family sync engines
func (jr *JobRunner) Engines() *Engines {
	return jr.engines
}

// OwnerID returns the owner identity jobs run under
func (jr *JobRunner) OwnerID() string {
	return jr.ownerID
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	started := time.Now()
	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName, "duration", time.Since(started).String())
}

// jobContext bounds a job run by the configured remote timeout with headroom
// for multiple round trips.
func (jr *JobRunner) jobContext() (context.Context, context.CancelFunc) {
	budget := time.Duration(jr.config.Server.TimeoutSeconds) * time.Second * 10
	return context.WithTimeout(context.Background(), budget)
}
