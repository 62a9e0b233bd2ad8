package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/shelfmark/shelfmark/internal/api"
	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/logger"
	"github.com/shelfmark/shelfmark/internal/scheduler"
	"github.com/shelfmark/shelfmark/internal/websocket"
)

func main() {
	// A .env file is optional; environment wins over config file values.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().Str("logLevel", cfg.Logging.Level).Msg("starting Shelfmark")

	if unused := cfg.UnprioritizedSources(); len(unused) > 0 {
		log.Warn().
			Strs("sources", unused).
			Msg("enabled sources missing from every field priority list; they only fill gaps in input order")
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	log.Info().Msg("running database migrations")
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	hub := websocket.NewHub()
	go hub.Run()

	sched, err := scheduler.New(hub, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}

	settings := config.NewStore(cfg)

	server, err := api.NewServer(db, hub, sched, settings, *configPath, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create API server")
	}

	if cfg.Library.InputDir != "" {
		err := sched.RegisterTask(scheduler.TaskConfig{
			ID:          api.ScanTaskID,
			Name:        "Library scan",
			Description: "Walk the input directory and register new movie files",
			Cron:        cfg.Library.ScanCron,
			RunOnStart:  true,
			Func: func(ctx context.Context) error {
				_, err := server.Scanner().Sync(ctx, settings.Library().InputDir)
				return err
			},
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to register library scan task")
		}
	} else {
		log.Warn().Msg("no input directory configured, periodic scanning disabled")
	}

	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	go func() {
		addr := cfg.Server.Address()
		log.Info().Str("address", addr).Msg("HTTP server listening")
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	if err := sched.Stop(); err != nil {
		log.Warn().Err(err).Msg("scheduler shutdown failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
