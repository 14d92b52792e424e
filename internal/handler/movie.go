package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/cinematrix/cinematrix/internal/service"
)

// MovieHandler exposes the movie catalog over HTTP.
type MovieHandler struct {
	catalog  *service.CatalogService
	validate *validator.Validate
}

// NewMovieHandler constructs a MovieHandler. The catalog service must
// be non-nil.
func NewMovieHandler(catalog *service.CatalogService, validate *validator.Validate) *MovieHandler {
	if catalog == nil {
		panic("nil service passed to NewMovieHandler")
	}
	return &MovieHandler{catalog: catalog, validate: validate}
}

type createMovieRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	ImageURL    string `json:"image_url" validate:"required,url"`
}

// CreateMovie handles POST /v1/movies.
func (h *MovieHandler) CreateMovie(c echo.Context) error {
	var req createMovieRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed: " + err.Error()})
	}
	id, err := h.catalog.AddMovie(c.Request().Context(), req.Title, req.Description, req.ImageURL)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// ListMovies handles GET /v1/movies. It returns all live movies ordered
// by title.
func (h *MovieHandler) ListMovies(c echo.Context) error {
	movies, err := h.catalog.ListActiveMovies(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, movies)
}

// GetMovie handles GET /v1/movies/:id. Deleted movies still resolve so
// older reservations keep a valid reference.
func (h *MovieHandler) GetMovie(c echo.Context) error {
	movie, err := h.catalog.FindMovie(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, movie)
}

// DeleteMovie handles DELETE /v1/movies/:id. It soft-deletes the movie
// and all of its showtimes; the delete is refused while any of them has
// a reserved seat.
func (h *MovieHandler) DeleteMovie(c echo.Context) error {
	if err := h.catalog.DeleteMovieCascade(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
