package api

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amaumene/watchlist/internal/config"
	"github.com/amaumene/watchlist/internal/controllers"
	"github.com/amaumene/watchlist/internal/forms"
	"github.com/amaumene/watchlist/internal/models"
	"github.com/amaumene/watchlist/internal/storage"
	"github.com/sirupsen/logrus"
)

func newTestServer(t *testing.T) (*Server, *controllers.MovieController) {
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

	cfg := &config.Config{ServerPort: "0", MaxUploadMB: 5}
	movieCtrl := controllers.NewMovieController(db, covers, logger)

	server, err := NewServer(cfg, movieCtrl, covers, logger)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return server, movieCtrl
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestIndexListsCreatedMovie(t *testing.T) {
	server, movieCtrl := newTestServer(t)

	form := &forms.MovieForm{Title: "Dune", Year: 1984, Genre: "科幻", Rating: 7}
	if _, err := movieCtrl.Create(form, nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	if !strings.Contains(string(body), "Dune") {
		t.Error("Listing should contain the created movie")
	}
}

func TestEditUnknownIDReturns404(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/edit/9999", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestDeleteUnknownIDReturns404(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := server.App().Test(httptest.NewRequest(http.MethodPost, "/delete/9999", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestServeUnknownCoverReturns404(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/uploads/missing.jpg", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestAddSubmitCreatesMovieAndRedirects(t *testing.T) {
	server, movieCtrl := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"title":  "Alien",
		"year":   "1979",
		"genre":  "科幻",
		"rating": "9",
		"notes":  "",
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			t.Fatalf("WriteField failed: %v", err)
		}
	}
	part, err := w.CreateFormFile("cover_image", "poster.jpg")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	if _, err := part.Write([]byte("image bytes")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/add", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := server.App().Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("Expected redirect after create, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, "/") {
		t.Errorf("Expected redirect to the listing, got %q", loc)
	}

	movies, err := movieCtrl.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(movies) != 1 || movies[0].Title != "Alien" {
		t.Fatalf("Expected the movie to be created, got %+v", movies)
	}
	if !movies[0].HasCover() || !strings.HasSuffix(*movies[0].CoverPath, ".jpg") {
		t.Errorf("Expected a stored .jpg cover, got %+v", movies[0].CoverPath)
	}
}

func TestAddSubmitInvalidFieldsRerendersForm(t *testing.T) {
	server, movieCtrl := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("title", "")
	w.WriteField("year", "1700")
	w.WriteField("genre", "科幻")
	w.WriteField("rating", "7")
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/add", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := server.App().Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Validation failure should re-render the form, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	if !strings.Contains(string(body), "Title must not be empty") {
		t.Error("Form should show the title error message")
	}
	if !strings.Contains(string(body), "Year must be 1888 or later") {
		t.Error("Form should show the year error message")
	}

	movies, err := movieCtrl.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(movies) != 0 {
		t.Error("Invalid submission must not create a row")
	}
}
