package models

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when an id does not resolve to a movie
var ErrNotFound = errors.New("movie not found")

// Database wraps the gorm connection
type Database struct {
	db *gorm.DB
}

// NewDatabase opens the sqlite database and migrates the schema
func NewDatabase(path string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&Movie{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Database{db: db}, nil
}

// Close closes the underlying database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateMovie inserts a new movie and fills in its generated id
func (d *Database) CreateMovie(movie *Movie) error {
	if err := d.db.Create(movie).Error; err != nil {
		return fmt.Errorf("failed to insert movie: %w", err)
	}
	return nil
}

// GetMovieByID retrieves a movie by id
func (d *Database) GetMovieByID(id uint) (*Movie, error) {
	var movie Movie
	err := d.db.First(&movie, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load movie: %w", err)
	}
	return &movie, nil
}

// GetAllMovies retrieves every movie, most recently created first.
// Ties on created_at fall back to id so the order stays deterministic.
func (d *Database) GetAllMovies() ([]*Movie, error) {
	var movies []*Movie
	err := d.db.Order("created_at DESC, id DESC").Find(&movies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	return movies, nil
}

// UpdateMovie persists changes to an existing movie.
// Selecting all columns makes a cleared CoverPath write back as NULL.
func (d *Database) UpdateMovie(movie *Movie) error {
	err := d.db.Model(movie).Select("*").Omit("id", "created_at").Updates(movie).Error
	if err != nil {
		return fmt.Errorf("failed to update movie: %w", err)
	}
	return nil
}

// DeleteMovie deletes a movie by id
func (d *Database) DeleteMovie(id uint) error {
	if err := d.db.Delete(&Movie{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	return nil
}
