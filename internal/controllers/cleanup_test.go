package controllers

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amaumene/watchlist/internal/models"
	"github.com/amaumene/watchlist/internal/storage"
	"github.com/sirupsen/logrus"
)

func newTestCleanup(t *testing.T) (*CleanupController, *MovieController, *storage.CoverStore) {
	t.Helper()

	dir := t.TempDir()
	db, err := models.NewDatabase(filepath.Join(dir, "watchlist.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	covers, err := storage.NewCoverStore(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("Failed to create cover store: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewCleanupController(db, covers, logger), NewMovieController(db, covers, logger), covers
}

// plantOrphan writes a file straight into the store and backdates it
// past the sweep grace window
func plantOrphan(t *testing.T, covers *storage.CoverStore, name string) {
	t.Helper()
	path := filepath.Join(covers.Dir(), name)
	if err := os.WriteFile(path, []byte("orphan"), 0644); err != nil {
		t.Fatalf("Failed to plant orphan: %v", err)
	}
	stale := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(path, stale, stale); err != nil {
		t.Fatalf("Failed to backdate orphan: %v", err)
	}
}

func TestSweepRemovesStaleOrphans(t *testing.T) {
	cleanup, movies, covers := newTestCleanup(t)

	movie, err := movies.Create(duneForm(), coverUpload("poster.jpg"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	plantOrphan(t, covers, "100_leftover.jpg")

	removed, err := cleanup.SweepOrphans()
	if err != nil {
		t.Fatalf("SweepOrphans failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 orphan removed, got %d", removed)
	}
	if covers.Exists("100_leftover.jpg") {
		t.Error("Stale orphan should be removed")
	}
	if !covers.Exists(*movie.CoverPath) {
		t.Error("Referenced cover must survive the sweep")
	}
}

func TestSweepKeepsFreshFiles(t *testing.T) {
	cleanup, _, covers := newTestCleanup(t)

	// Unreferenced but just written, as during an in-flight create
	if _, err := covers.Save(strings.NewReader("data"), "fresh.jpg"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	removed, err := cleanup.SweepOrphans()
	if err != nil {
		t.Fatalf("SweepOrphans failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("Fresh files are inside the grace window, removed %d", removed)
	}

	files, err := covers.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("Fresh file should survive, store holds %d files", len(files))
	}
}

func TestSweepOnEmptyStore(t *testing.T) {
	cleanup, _, _ := newTestCleanup(t)

	removed, err := cleanup.SweepOrphans()
	if err != nil {
		t.Fatalf("SweepOrphans failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("Empty store should sweep nothing, got %d", removed)
	}
}
