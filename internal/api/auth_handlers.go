package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shelfmark/shelfmark/internal/auth"
)

type passwordRequest struct {
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type authStatusResponse struct {
	RequiresSetup bool `json:"requiresSetup"`
	RequiresAuth  bool `json:"requiresAuth"`
}

func isLocalRequest(c echo.Context) bool {
	ip := c.RealIP()
	return ip == "127.0.0.1" || ip == "::1" || strings.HasPrefix(ip, "localhost")
}

// GET /api/v1/auth/status - check whether first-run setup is required.
func (s *Server) getAuthStatus(c echo.Context) error {
	set := s.authService.IsPasswordSet()
	return c.JSON(http.StatusOK, authStatusResponse{
		RequiresSetup: !set,
		RequiresAuth:  set,
	})
}

// POST /api/v1/auth/setup - first-time password setup (local only).
func (s *Server) setupPassword(c echo.Context) error {
	if !isLocalRequest(c) {
		return echo.NewHTTPError(http.StatusForbidden, "setup must be performed from localhost")
	}
	if s.authService.IsPasswordSet() {
		return echo.NewHTTPError(http.StatusBadRequest, "password already configured")
	}

	var req passwordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.authService.SetPassword(req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordRequired) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	token, err := s.authService.GenerateToken()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate token")
	}
	return c.JSON(http.StatusCreated, tokenResponse{Token: token})
}

// POST /api/v1/auth/login - exchange the password for a session token.
func (s *Server) login(c echo.Context) error {
	var req passwordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.authService.ValidatePassword(req.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrNoPasswordSet):
			return echo.NewHTTPError(http.StatusBadRequest, "no password configured, run setup first")
		case errors.Is(err, auth.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	token, err := s.authService.GenerateToken()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate token")
	}
	return c.JSON(http.StatusOK, tokenResponse{Token: token})
}
