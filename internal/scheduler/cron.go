package scheduler

import (
	"fmt"

	"github.com/amaumene/watchlist/internal/controllers"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron        *cron.Cron
	cleanupCtrl *controllers.CleanupController
	logger      *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(cleanupCtrl *controllers.CleanupController, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		cleanupCtrl: cleanupCtrl,
		logger:      logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Daily at 03:00: sweep orphaned cover files
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to add sweep job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	// Run an initial sweep to catch orphans from a previous crash
	go s.runSweep()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runSweep executes the orphan sweep job
func (s *Scheduler) runSweep() {
	s.logger.Debug("Running orphaned cover sweep")

	if _, err := s.cleanupCtrl.SweepOrphans(); err != nil {
		s.logger.WithError(err).Error("Orphan sweep failed")
	}
}
