package handlers

import (
	"errors"
	"mime/multipart"

	"github.com/amaumene/watchlist/internal/controllers"
	"github.com/amaumene/watchlist/internal/forms"
	"github.com/amaumene/watchlist/internal/models"
	"github.com/amaumene/watchlist/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// coverField is the name of the file input on the movie form
const coverField = "cover_image"

// MovieHandler handles the movie CRUD pages
type MovieHandler struct {
	movies *controllers.MovieController
	logger *logrus.Logger
}

// NewMovieHandler creates a new movie handler
func NewMovieHandler(movies *controllers.MovieController, logger *logrus.Logger) *MovieHandler {
	return &MovieHandler{
		movies: movies,
		logger: logger,
	}
}

// Index renders the movie list, most recently added first
func (h *MovieHandler) Index(c *fiber.Ctx) error {
	movies, err := h.movies.List()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list movies")
		return h.renderError(c)
	}

	return c.Render("index", fiber.Map{
		"Movies": movies,
		"Notice": c.Query("notice"),
	})
}

// AddForm renders the empty creation form
func (h *MovieHandler) AddForm(c *fiber.Ctx) error {
	return h.renderForm(c, &forms.MovieForm{}, forms.Errors{}, nil)
}

// AddSubmit validates the submission and creates the movie
func (h *MovieHandler) AddSubmit(c *fiber.Ctx) error {
	form := new(forms.MovieForm)
	if err := c.BodyParser(form); err != nil {
		return h.renderForm(c, form, forms.Errors{"form": "invalid form submission"}, nil)
	}

	if fieldErrors := form.Validate(); len(fieldErrors) > 0 {
		return h.renderForm(c, form, fieldErrors, nil)
	}

	upload, file, err := h.attachedCover(c)
	if err != nil {
		return h.renderError(c)
	}
	if file != nil {
		defer file.Close()
	}

	if _, err := h.movies.Create(form, upload); err != nil {
		if errors.Is(err, storage.ErrInvalidFileType) {
			return h.renderForm(c, form, forms.Errors{coverField: "Only PNG, JPG, JPEG, GIF and WEBP images are allowed"}, nil)
		}
		h.logger.WithError(err).Error("Failed to create movie")
		return h.renderError(c)
	}

	return c.Redirect("/?notice=Movie+added")
}

// EditForm renders the form pre-filled with an existing movie
func (h *MovieHandler) EditForm(c *fiber.Ctx) error {
	movie, err := h.loadMovie(c)
	if err != nil {
		return h.notFoundOrError(c, err)
	}

	form := &forms.MovieForm{
		Title:  movie.Title,
		Year:   movie.Year,
		Genre:  string(movie.Genre),
		Rating: movie.Rating,
		Notes:  movie.Notes,
	}
	return h.renderForm(c, form, forms.Errors{}, movie)
}

// EditSubmit validates the submission and updates the movie
func (h *MovieHandler) EditSubmit(c *fiber.Ctx) error {
	movie, err := h.loadMovie(c)
	if err != nil {
		return h.notFoundOrError(c, err)
	}

	form := new(forms.MovieForm)
	if err := c.BodyParser(form); err != nil {
		return h.renderForm(c, form, forms.Errors{"form": "invalid form submission"}, movie)
	}

	if fieldErrors := form.Validate(); len(fieldErrors) > 0 {
		return h.renderForm(c, form, fieldErrors, movie)
	}

	upload, file, err := h.attachedCover(c)
	if err != nil {
		return h.renderError(c)
	}
	if file != nil {
		defer file.Close()
	}

	if _, err := h.movies.Update(movie.ID, form, upload); err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidFileType):
			return h.renderForm(c, form, forms.Errors{coverField: "Only PNG, JPG, JPEG, GIF and WEBP images are allowed"}, movie)
		case errors.Is(err, models.ErrNotFound):
			return h.notFound(c)
		}
		h.logger.WithError(err).Error("Failed to update movie")
		return h.renderError(c)
	}

	return c.Redirect("/?notice=Movie+updated")
}

// Delete removes a movie and its cover file
func (h *MovieHandler) Delete(c *fiber.Ctx) error {
	movie, err := h.loadMovie(c)
	if err != nil {
		return h.notFoundOrError(c, err)
	}

	if err := h.movies.Delete(movie.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return h.notFound(c)
		}
		h.logger.WithError(err).Error("Failed to delete movie")
		return h.renderError(c)
	}

	return c.Redirect("/?notice=Movie+deleted")
}

// loadMovie resolves the :id route param to a movie
func (h *MovieHandler) loadMovie(c *fiber.Ctx) (*models.Movie, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, models.ErrNotFound
	}
	return h.movies.Get(uint(id))
}

// attachedCover extracts the optional uploaded cover from the request.
// A missing or empty file input means no upload was attached.
func (h *MovieHandler) attachedCover(c *fiber.Ctx) (*controllers.Upload, multipart.File, error) {
	header, err := c.FormFile(coverField)
	if err != nil || header == nil || header.Size == 0 || header.Filename == "" {
		return nil, nil, nil
	}

	file, err := header.Open()
	if err != nil {
		h.logger.WithError(err).Error("Failed to open uploaded cover")
		return nil, nil, err
	}

	return &controllers.Upload{Source: file, Filename: header.Filename}, file, nil
}

func (h *MovieHandler) renderForm(c *fiber.Ctx, form *forms.MovieForm, fieldErrors forms.Errors, movie *models.Movie) error {
	heading := "Add a movie"
	action := "/add"
	currentCover := ""
	if movie != nil {
		heading = "Edit movie"
		action = "/edit/" + c.Params("id")
		currentCover = movie.CoverName()
	}

	return c.Render("movie_form", fiber.Map{
		"Heading":      heading,
		"Action":       action,
		"Form":         form,
		"Errors":       fieldErrors,
		"Genres":       models.AllGenres,
		"IsEdit":       movie != nil,
		"CurrentCover": currentCover,
	})
}

func (h *MovieHandler) notFoundOrError(c *fiber.Ctx, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return h.notFound(c)
	}
	h.logger.WithError(err).Error("Failed to load movie")
	return h.renderError(c)
}

func (h *MovieHandler) notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{
		"Message": "No movie with that id.",
	})
}

func (h *MovieHandler) renderError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).Render("error", fiber.Map{
		"Message": "The operation could not be completed.",
	})
}
