package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	apimw "github.com/shelfmark/shelfmark/internal/api/middleware"
	"github.com/shelfmark/shelfmark/internal/api/ratelimit"
	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/library"
	"github.com/shelfmark/shelfmark/internal/organize"
	"github.com/shelfmark/shelfmark/internal/scan"
	"github.com/shelfmark/shelfmark/internal/scheduler"
	"github.com/shelfmark/shelfmark/internal/source"
	"github.com/shelfmark/shelfmark/internal/websocket"
)

// ScanTaskID is the scheduler id of the periodic library scan task.
const ScanTaskID = "library-scan"

// Server handles HTTP requests for the Shelfmark API.
type Server struct {
	echo       *echo.Echo
	db         *database.DB
	hub        *websocket.Hub
	scheduler  *scheduler.Scheduler
	settings   *config.Store
	configPath string
	logger     zerolog.Logger

	registry        *source.Registry
	authService     *auth.Service
	libraryService  *library.Service
	scanService     *scan.Service
	organizeService *organize.Service
	authLimiter     *ratelimit.AuthLimiter
}

// NewServer creates a new API server instance and wires up the services.
// configPath is where settings updates get persisted; empty disables
// persistence.
func NewServer(db *database.DB, hub *websocket.Hub, sched *scheduler.Scheduler, settings *config.Store, configPath string, logger zerolog.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	authCfg := settings.Auth()
	authService, err := auth.NewService(db.Conn(), authCfg.JWTSecret, authCfg.TokenTTLHours)
	if err != nil {
		return nil, err
	}

	s := &Server{
		echo:        e,
		db:          db,
		hub:         hub,
		scheduler:   sched,
		settings:    settings,
		configPath:  configPath,
		logger:      logger.With().Str("component", "api").Logger(),
		authService: authService,
		authLimiter: ratelimit.NewAuthLimiter(),
	}

	s.registry = source.NewRegistry(settings.Sources(), logger)
	fetcher := source.NewFetcher(s.registry, logger)
	s.libraryService = library.NewService(library.NewStore(db.Conn()), fetcher, settings, hub, logger)
	s.scanService = scan.NewService(s.libraryService, logger)
	s.organizeService = organize.NewService(settings, s.libraryService, logger)

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Library exposes the library service for task registration.
func (s *Server) Library() *library.Service {
	return s.libraryService
}

// Scanner exposes the scan service for task registration.
func (s *Server) Scanner() *scan.Service {
	return s.scanService
}

// Auth exposes the auth service.
func (s *Server) Auth() *auth.Service {
	return s.authService
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(apimw.SecurityHeaders())
	s.echo.Use(middleware.BodyLimit("2M"))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Debug().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(s.authLimiter.Middleware())
	authGroup.GET("/status", s.getAuthStatus)
	authGroup.POST("/setup", s.setupPassword)
	authGroup.POST("/login", s.login)

	api.GET("/ws", s.hub.HandleWebSocket)

	protected := api.Group("")
	protected.Use(s.authMiddleware())

	library.NewHandlers(s.libraryService).RegisterRoutes(protected.Group("/movies"))
	protected.POST("/movies/:id/organize", s.organizeMovie)

	protected.POST("/scan", s.runScan)

	protected.GET("/settings", s.getSettings)
	protected.PUT("/settings", s.updateSettings)

	protected.GET("/sources", s.listSources)
	protected.POST("/sources/:name/test", s.testSource)

	protected.GET("/tasks", s.listTasks)
	protected.POST("/tasks/:id/run", s.runTask)
}

// authMiddleware validates the bearer token on protected routes. While no
// password is configured the API stays open so the first-run setup flow
// can complete.
func (s *Server) authMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !s.authService.IsPasswordSet() {
				return next(c)
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			if _, err := s.authService.ValidateToken(token); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			return next(c)
		}
	}
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Start begins listening on the configured address.
func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
