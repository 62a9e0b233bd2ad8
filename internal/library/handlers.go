package library

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shelfmark/shelfmark/internal/merge"
)

// Handlers provides HTTP handlers for library operations.
type Handlers struct {
	service *Service
}

// NewHandlers creates new library handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the movie routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/scrape", h.Scrape)
	g.POST("/:id/remerge", h.Remerge)
	g.GET("/:id/canonical", h.Canonical)
	g.GET("/:id/sources", h.SourceRecords)
	g.GET("/:id/overrides", h.Overrides)
	g.PUT("/:id/overrides/:field", h.SetOverride)
}

// List returns all movies.
// GET /api/v1/movies
func (h *Handlers) List(c echo.Context) error {
	movies, err := h.service.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, movies)
}

// Get returns a single movie.
// GET /api/v1/movies/:id
func (h *Handlers) Get(c echo.Context) error {
	movie, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, movie)
}

// Create adds a movie.
// POST /api/v1/movies
func (h *Handlers) Create(c echo.Context) error {
	var input CreateMovieInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	movie, err := h.service.Create(c.Request().Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidMovie):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrDuplicatePath):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, movie)
}

// Update updates a movie.
// PUT /api/v1/movies/:id
func (h *Handlers) Update(c echo.Context) error {
	var input UpdateMovieInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	movie, err := h.service.Update(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		if errors.Is(err, ErrInvalidMovie) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, movie)
}

// Delete removes a movie.
// DELETE /api/v1/movies/:id
func (h *Handlers) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return h.mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Scrape fetches and merges metadata for a movie.
// POST /api/v1/movies/:id/scrape
func (h *Handlers) Scrape(c echo.Context) error {
	record, err := h.service.Scrape(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrScrapeInProgress) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, record)
}

// Remerge rebuilds the canonical record from stored source records.
// POST /api/v1/movies/:id/remerge
func (h *Handlers) Remerge(c echo.Context) error {
	record, err := h.service.Remerge(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, record)
}

// Canonical returns the merged metadata record.
// GET /api/v1/movies/:id/canonical
func (h *Handlers) Canonical(c echo.Context) error {
	record, err := h.service.Canonical(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, record)
}

// SourceRecords returns the raw per-source records from the last scrape.
// GET /api/v1/movies/:id/sources
func (h *Handlers) SourceRecords(c echo.Context) error {
	records, err := h.service.SourceRecords(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, records)
}

// Overrides returns the user overrides for a movie.
// GET /api/v1/movies/:id/overrides
func (h *Handlers) Overrides(c echo.Context) error {
	overrides, err := h.service.Overrides(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, overrides)
}

// SetOverride stores or clears a single field override and re-merges.
// PUT /api/v1/movies/:id/overrides/:field
func (h *Handlers) SetOverride(c echo.Context) error {
	var body struct {
		Value string `json:"value"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	record, err := h.service.SetOverride(c.Request().Context(),
		c.Param("id"), merge.Field(c.Param("field")), body.Value)
	if err != nil {
		if errors.Is(err, ErrReservedSource) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return h.mapError(err)
	}
	if record == nil {
		return c.NoContent(http.StatusAccepted)
	}
	return c.JSON(http.StatusOK, record)
}

func (h *Handlers) mapError(err error) error {
	switch {
	case errors.Is(err, ErrMovieNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNoCanonicalRecord):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
