package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"lendstock-sync/internal/config"
	"lendstock-sync/internal/jobs"
	"lendstock-sync/internal/logger"
	"lendstock-sync/internal/remote"
	"lendstock-sync/internal/repository/sqlite"
	"lendstock-sync/internal/security"
	"lendstock-sync/internal/sync"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "full-sync", "Job to run once and exit ('full-sync', 'push-only', 'evaluate-reminders')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Lendstock sync job runner...", "log_level", cfg.Log.Level)

	token, err := cfg.BearerToken()
	if err != nil {
		log.Fatalf("Failed to resolve bearer token: %v", err)
	}
	ownerID, err := security.OwnerFromToken(token)
	if err != nil {
		log.Fatalf("Failed to extract owner identity from token: %v", err)
	}

	// Initialize Database
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Initialize Repositories
	store := sqlite.NewStore(db)

	// Initialize remote client and engines
	client := remote.NewClient(cfg.Server.Origin, token, time.Duration(cfg.Server.TimeoutSeconds)*time.Second)
	history := sync.NewNotificationEngine(store.NotificationRepository, store.ReminderRepository, client)
	engines := &jobs.Engines{
		Inventory:     sync.NewInventoryEngine(store.ItemRepository, client),
		Loans:         sync.NewLoanEngine(store.LoanRepository, client),
		Reminders:     sync.NewReminderEngine(store.ReminderRepository, history, nil, client),
		Notifications: history,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(engines, ownerID, cfg)

	logger.Info("Running job once", "job", *runOnce)
	runJobOnce(jobRunner, *runOnce)
	logger.Info("Job execution completed", "job", *runOnce)
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "full-sync":
		jobRunner.FullSync()
	case "push-only":
		jobRunner.RetryPendingPushes()
	case "evaluate-reminders":
		jobRunner.EvaluateDueReminders()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - full-sync\n")
		fmt.Printf("  - push-only\n")
		fmt.Printf("  - evaluate-reminders\n")
		os.Exit(1)
	}
}
