package api

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/amaumene/watchlist/internal/api/handlers"
	"github.com/amaumene/watchlist/internal/api/middleware"
	"github.com/amaumene/watchlist/internal/config"
	"github.com/amaumene/watchlist/internal/controllers"
	"github.com/amaumene/watchlist/internal/storage"
	"github.com/amaumene/watchlist/web"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	app    *fiber.App
	addr   string
	logger *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, movieCtrl *controllers.MovieController, covers *storage.CoverStore, logger *logrus.Logger) (*Server, error) {
	views, err := fs.Sub(web.Views, "views")
	if err != nil {
		return nil, fmt.Errorf("failed to load views: %w", err)
	}

	app := fiber.New(fiber.Config{
		Views:                 html.NewFileSystem(http.FS(views), ".html"),
		BodyLimit:             cfg.MaxUploadMB * 1024 * 1024,
		DisableStartupMessage: true,
	})
	app.Use(middleware.Logging(logger))

	s := &Server{
		app:    app,
		addr:   ":" + cfg.ServerPort,
		logger: logger,
	}
	s.setupRoutes(movieCtrl, covers)

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(movieCtrl *controllers.MovieController, covers *storage.CoverStore) {
	movieHandler := handlers.NewMovieHandler(movieCtrl, s.logger)
	s.app.Get("/", movieHandler.Index)
	s.app.Get("/add", movieHandler.AddForm)
	s.app.Post("/add", movieHandler.AddSubmit)
	s.app.Get("/edit/:id", movieHandler.EditForm)
	s.app.Post("/edit/:id", movieHandler.EditSubmit)
	s.app.Post("/delete/:id", movieHandler.Delete)

	coverHandler := handlers.NewCoverHandler(covers, s.logger)
	s.app.Get("/uploads/:filename", coverHandler.Serve)

	healthHandler := handlers.NewHealthHandler(s.logger)
	s.app.Get("/health", healthHandler.ServeHTTP)
}

// App exposes the fiber app, used by handler tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("addr", s.addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(s.addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(shutdownCtx)
}
