package controllers

import (
	"time"

	"github.com/amaumene/watchlist/internal/models"
	"github.com/amaumene/watchlist/internal/storage"
	"github.com/sirupsen/logrus"
)

// orphanGracePeriod keeps freshly written files out of the sweep so an
// upload racing the sweeper is never deleted before its row commits
const orphanGracePeriod = time.Hour

// CleanupController reclaims cover files no movie references anymore.
// A crash between a file write and the matching row commit can leave
// such orphans behind; they are harmless but worth sweeping.
type CleanupController struct {
	db     *models.Database
	covers *storage.CoverStore
	logger *logrus.Logger
}

// NewCleanupController creates a new cleanup controller
func NewCleanupController(db *models.Database, covers *storage.CoverStore, logger *logrus.Logger) *CleanupController {
	return &CleanupController{
		db:     db,
		covers: covers,
		logger: logger,
	}
}

// SweepOrphans deletes every stored cover that no movie references and
// that is older than the grace period. Returns the number removed.
func (c *CleanupController) SweepOrphans() (int, error) {
	movies, err := c.db.GetAllMovies()
	if err != nil {
		return 0, err
	}

	referenced := make(map[string]bool, len(movies))
	for _, movie := range movies {
		if movie.HasCover() {
			referenced[*movie.CoverPath] = true
		}
	}

	covers, err := c.covers.List()
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-orphanGracePeriod)
	removed := 0

	for _, cover := range covers {
		if referenced[cover.Name] || cover.ModTime.After(cutoff) {
			continue
		}

		if err := c.covers.Remove(cover.Name); err != nil {
			c.logger.WithError(err).WithField("cover", cover.Name).Warn("Failed to remove orphaned cover")
			continue
		}

		c.logger.WithField("cover", cover.Name).Info("Removed orphaned cover")
		removed++
	}

	if removed > 0 {
		c.logger.WithField("removed", removed).Info("Orphan sweep completed")
	}
	return removed, nil
}
