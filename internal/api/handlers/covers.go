package handlers

import (
	"github.com/amaumene/watchlist/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// CoverHandler serves stored cover images
type CoverHandler struct {
	covers *storage.CoverStore
	logger *logrus.Logger
}

// NewCoverHandler creates a new cover handler
func NewCoverHandler(covers *storage.CoverStore, logger *logrus.Logger) *CoverHandler {
	return &CoverHandler{
		covers: covers,
		logger: logger,
	}
}

// Serve streams one stored cover by name, 404 for unknown or unsafe names
func (h *CoverHandler) Serve(c *fiber.Ctx) error {
	name := c.Params("filename")

	path, err := h.covers.Path(name)
	if err != nil || !h.covers.Exists(name) {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{
			"Message": "No such cover image.",
		})
	}

	return c.SendFile(path)
}
