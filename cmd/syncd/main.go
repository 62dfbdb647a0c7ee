package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	httpapi "lendstock-sync/internal/api/http"
	"lendstock-sync/internal/config"
	"lendstock-sync/internal/jobs"
	"lendstock-sync/internal/logger"
	"lendstock-sync/internal/remote"
	"lendstock-sync/internal/repository/sqlite"
	"lendstock-sync/internal/scheduler"
	"lendstock-sync/internal/security"
	"lendstock-sync/internal/sync"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Lendstock sync daemon...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Remote configuration", "origin", cfg.Server.Origin, "timeout_seconds", cfg.Server.TimeoutSeconds)
	logger.Info("Database configuration", "path", cfg.Database.Path)

	// Resolve the backend credential and the owner identity behind it
	token, err := cfg.BearerToken()
	if err != nil {
		logger.Error("Failed to resolve bearer token", "error", err)
		log.Fatalf("Failed to resolve bearer token: %v", err)
	}
	ownerID, err := security.OwnerFromToken(token)
	if err != nil {
		logger.Error("Failed to extract owner identity from token", "error", err)
		log.Fatalf("Failed to extract owner identity from token: %v", err)
	}

	// Initialize Database
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "path", cfg.Database.Path)
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	logger.Info("Local database ready", "path", cfg.Database.Path)

	// Initialize Repositories
	store := sqlite.NewStore(db)

	// Initialize remote client
	client := remote.NewClient(cfg.Server.Origin, token, time.Duration(cfg.Server.TimeoutSeconds)*time.Second)

	// Initialize sync engines
	history := sync.NewNotificationEngine(store.NotificationRepository, store.ReminderRepository, client)
	engines := &jobs.Engines{
		Inventory:     sync.NewInventoryEngine(store.ItemRepository, client),
		Loans:         sync.NewLoanEngine(store.LoanRepository, client),
		Reminders:     sync.NewReminderEngine(store.ReminderRepository, history, nil, client),
		Notifications: history,
	}

	// Initialize Job Runner and Scheduler
	jobRunner := jobs.NewJobRunner(engines, ownerID, cfg)
	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()

	// Set up the control API on loopback
	router := mux.NewRouter()
	httpapi.RegisterControlRoutes(router, jobRunner)
	server := &http.Server{
		Addr:         cfg.GetControlAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute, // foreground syncs run inside the request
	}

	go func() {
		logger.Info("Control API listening", "address", cfg.GetControlAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Control API server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down sync daemon...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Control API shutdown error", "error", err)
	}
	cronScheduler.Stop()
	logger.Info("Sync daemon stopped. Goodbye!")
}
