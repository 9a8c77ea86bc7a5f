package controllers

import (
	"fmt"
	"io"

	"github.com/amaumene/watchlist/internal/forms"
	"github.com/amaumene/watchlist/internal/models"
	"github.com/amaumene/watchlist/internal/storage"
	"github.com/sirupsen/logrus"
)

// Upload is an attached cover image waiting to be stored
type Upload struct {
	Source   io.Reader
	Filename string
}

// MovieController coordinates movie rows with their cover files
type MovieController struct {
	db     *models.Database
	covers *storage.CoverStore
	logger *logrus.Logger
}

// NewMovieController creates a new movie controller
func NewMovieController(db *models.Database, covers *storage.CoverStore, logger *logrus.Logger) *MovieController {
	return &MovieController{
		db:     db,
		covers: covers,
		logger: logger,
	}
}

// List returns all movies, most recently created first
func (c *MovieController) List() ([]*models.Movie, error) {
	return c.db.GetAllMovies()
}

// Get returns one movie or models.ErrNotFound
func (c *MovieController) Get(id uint) (*models.Movie, error) {
	return c.db.GetMovieByID(id)
}

// Create stores the optional cover first, then inserts the row. If the
// insert fails the just-stored file is removed again so the store never
// accumulates a file for a row that was never written.
func (c *MovieController) Create(form *forms.MovieForm, upload *Upload) (*models.Movie, error) {
	movie := &models.Movie{
		Title:  form.Title,
		Year:   form.Year,
		Genre:  models.Genre(form.Genre),
		Rating: form.Rating,
		Notes:  form.Notes,
	}

	if upload != nil {
		name, err := c.covers.Save(upload.Source, upload.Filename)
		if err != nil {
			return nil, err
		}
		movie.CoverPath = &name
	}

	if err := c.db.CreateMovie(movie); err != nil {
		if movie.HasCover() {
			if rerr := c.covers.Remove(*movie.CoverPath); rerr != nil {
				c.logger.WithError(rerr).Warn("Failed to remove cover after insert failure")
			}
		}
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"movie_id": movie.ID,
		"title":    movie.Title,
	}).Info("Movie created")
	return movie, nil
}

// Update overwrites the scalar fields and applies one of three cover
// transitions: replace (new upload), clear (remove flag), or keep.
// A replacement is written before the old file is deleted so the record
// never points at a missing file.
func (c *MovieController) Update(id uint, form *forms.MovieForm, upload *Upload) (*models.Movie, error) {
	movie, err := c.db.GetMovieByID(id)
	if err != nil {
		return nil, err
	}

	var oldCover string
	if movie.HasCover() {
		oldCover = *movie.CoverPath
	}

	movie.Title = form.Title
	movie.Year = form.Year
	movie.Genre = models.Genre(form.Genre)
	movie.Rating = form.Rating
	movie.Notes = form.Notes

	var newCover string
	switch {
	case upload != nil:
		newCover, err = c.covers.Save(upload.Source, upload.Filename)
		if err != nil {
			return nil, err
		}
		movie.CoverPath = &newCover
	case form.RemoveCover:
		movie.CoverPath = nil
	}

	if err := c.db.UpdateMovie(movie); err != nil {
		if newCover != "" {
			if rerr := c.covers.Remove(newCover); rerr != nil {
				c.logger.WithError(rerr).Warn("Failed to remove cover after update failure")
			}
		}
		return nil, err
	}

	// Old file goes last, after the row points elsewhere
	if oldCover != "" && (newCover != "" || form.RemoveCover) {
		if err := c.covers.Remove(oldCover); err != nil {
			c.logger.WithError(err).WithField("cover", oldCover).Warn("Failed to remove replaced cover")
		}
	}

	c.logger.WithFields(logrus.Fields{
		"movie_id": movie.ID,
		"title":    movie.Title,
	}).Info("Movie updated")
	return movie, nil
}

// Delete removes the movie's cover file and its row
func (c *MovieController) Delete(id uint) error {
	movie, err := c.db.GetMovieByID(id)
	if err != nil {
		return err
	}

	if movie.HasCover() {
		if err := c.covers.Remove(*movie.CoverPath); err != nil {
			return fmt.Errorf("failed to remove cover for movie %d: %w", id, err)
		}
	}

	if err := c.db.DeleteMovie(id); err != nil {
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"movie_id": movie.ID,
		"title":    movie.Title,
	}).Info("Movie deleted")
	return nil
}
