package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amaumene/watchlist/internal/api"
	"github.com/amaumene/watchlist/internal/config"
	"github.com/amaumene/watchlist/internal/controllers"
	"github.com/amaumene/watchlist/internal/models"
	"github.com/amaumene/watchlist/internal/scheduler"
	"github.com/amaumene/watchlist/internal/storage"
	"github.com/amaumene/watchlist/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting Watchlist")
	logger.WithField("data_dir", cfg.DataDir).Info("Configuration loaded")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Initialize cover store
	covers, err := storage.NewCoverStore(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to initialize cover store: %w", err)
	}
	logger.WithField("upload_dir", cfg.UploadDir).Info("Cover store initialized")

	// 5. Initialize controllers
	movieCtrl := controllers.NewMovieController(db, covers, logger)
	cleanupCtrl := controllers.NewCleanupController(db, covers, logger)
	logger.Info("Controllers initialized")

	// 6. Initialize scheduler
	sched := scheduler.NewScheduler(cleanupCtrl, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 7. Initialize HTTP server
	server, err := api.NewServer(cfg, movieCtrl, covers, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	// Start server in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 8. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Watchlist is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("Watchlist stopped")
	return nil
}
