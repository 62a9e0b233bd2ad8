package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/scheduler"
)

// settingsPayload is the user-editable slice of the configuration.
type settingsPayload struct {
	EnabledSources  []string            `json:"enabledSources"`
	FieldPriorities map[string][]string `json:"fieldPriorities"`
	GenreBlacklist  []string            `json:"genreBlacklist"`
	FolderTemplate  string              `json:"folderTemplate"`
	ScanCron        string              `json:"scanCron"`
}

// GET /api/v1/settings
func (s *Server) getSettings(c echo.Context) error {
	var payload settingsPayload
	s.settings.View(func(cfg *config.Config) {
		payload = settingsPayload{
			EnabledSources:  cfg.Sources.Enabled,
			FieldPriorities: cfg.Merge.FieldPriorities,
			GenreBlacklist:  cfg.Merge.GenreBlacklist,
			FolderTemplate:  cfg.Library.FolderTemplate,
			ScanCron:        cfg.Library.ScanCron,
		}
	})
	return c.JSON(http.StatusOK, payload)
}

// PUT /api/v1/settings - update merge policy and library settings. Nil
// fields keep their current value. In-flight merges finish on the policy
// snapshot they started with; everything after the update uses the new one.
// Existing canonical records keep their stored values until re-merged.
func (s *Server) updateSettings(c echo.Context) error {
	var req struct {
		EnabledSources  []string            `json:"enabledSources"`
		FieldPriorities map[string][]string `json:"fieldPriorities"`
		GenreBlacklist  []string            `json:"genreBlacklist"`
		FolderTemplate  *string             `json:"folderTemplate"`
		ScanCron        *string             `json:"scanCron"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	// Rescheduling doubles as cron validation; reject bad expressions
	// before anything is applied.
	if req.ScanCron != nil && s.scheduler != nil {
		err := s.scheduler.UpdateTaskCron(ScanTaskID, *req.ScanCron)
		if err != nil && !errors.Is(err, scheduler.ErrTaskNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid scan cron expression")
		}
	}

	var unused []string
	err := s.settings.Update(s.configPath, func(cfg *config.Config) {
		if req.EnabledSources != nil {
			cfg.Sources.Enabled = req.EnabledSources
		}
		if req.FieldPriorities != nil {
			cfg.Merge.FieldPriorities = req.FieldPriorities
		}
		if req.GenreBlacklist != nil {
			cfg.Merge.GenreBlacklist = req.GenreBlacklist
		}
		if req.FolderTemplate != nil {
			cfg.Library.FolderTemplate = *req.FolderTemplate
		}
		if req.ScanCron != nil {
			cfg.Library.ScanCron = *req.ScanCron
		}
		unused = cfg.UnprioritizedSources()
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist settings")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to persist settings")
	}

	if len(unused) > 0 {
		s.logger.Warn().
			Strs("sources", unused).
			Msg("Enabled sources missing from every field priority list")
	}

	if req.EnabledSources != nil {
		s.registry.Reconfigure(s.settings.Sources())
	}

	return s.getSettings(c)
}
