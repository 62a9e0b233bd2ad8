package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shelfmark/shelfmark/internal/library"
	"github.com/shelfmark/shelfmark/internal/organize"
	"github.com/shelfmark/shelfmark/internal/scheduler"
	"github.com/shelfmark/shelfmark/internal/source"
)

// POST /api/v1/scan - walk the input directory and register new movies.
func (s *Server) runScan(c echo.Context) error {
	inputDir := s.settings.Library().InputDir
	if inputDir == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "no input directory configured")
	}

	result, err := s.scanService.Sync(c.Request().Context(), inputDir)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

// POST /api/v1/movies/:id/organize - move the movie into the output
// layout and write its metadata sidecar. ?plan=true previews without
// touching the filesystem.
func (s *Server) organizeMovie(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	if c.QueryParam("plan") == "true" {
		plan, err := s.organizeService.Plan(ctx, id)
		if err != nil {
			return s.mapOrganizeError(err)
		}
		return c.JSON(http.StatusOK, plan)
	}

	result, err := s.organizeService.Execute(ctx, id)
	if err != nil {
		return s.mapOrganizeError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) mapOrganizeError(err error) error {
	switch {
	case errors.Is(err, library.ErrMovieNotFound), errors.Is(err, library.ErrNoCanonicalRecord):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, organize.ErrNoOutputDir), errors.Is(err, organize.ErrMissingTitle):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// GET /api/v1/sources - list providers and their configuration state.
func (s *Server) listSources(c echo.Context) error {
	type sourceInfo struct {
		Name       string `json:"name"`
		Configured bool   `json:"configured"`
	}

	providers := s.registry.Providers()
	out := make([]sourceInfo, 0, len(providers))
	for _, p := range providers {
		out = append(out, sourceInfo{Name: p.Name(), Configured: p.IsConfigured()})
	}
	return c.JSON(http.StatusOK, out)
}

// POST /api/v1/sources/:name/test - verify connectivity to one source.
func (s *Server) testSource(c echo.Context) error {
	provider := s.registry.Get(c.Param("name"))
	if provider == nil {
		return echo.NewHTTPError(http.StatusNotFound, "unknown source")
	}

	if err := provider.Test(c.Request().Context()); err != nil {
		if errors.Is(err, source.ErrNotConfigured) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// GET /api/v1/tasks
func (s *Server) listTasks(c echo.Context) error {
	if s.scheduler == nil {
		return c.JSON(http.StatusOK, []scheduler.TaskInfo{})
	}
	return c.JSON(http.StatusOK, s.scheduler.ListTasks())
}

// POST /api/v1/tasks/:id/run
func (s *Server) runTask(c echo.Context) error {
	if s.scheduler == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no scheduler running")
	}

	err := s.scheduler.RunNow(c.Param("id"))
	switch {
	case errors.Is(err, scheduler.ErrTaskNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, scheduler.ErrTaskRunning):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusAccepted)
}
