package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"insights/internal/api"
	"insights/internal/config"
	"insights/internal/logger"
	"insights/internal/store"
)

func main() {
	// 1. Config and logging
	cfg := config.Load()
	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logger")
	}
	app := logger.For(log, logger.ComponentApp)

	if err := cfg.Validate(); err != nil {
		app.WithError(err).Fatal("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Document store
	docs, err := store.Open(ctx, cfg, logger.For(log, logger.ComponentStore))
	if err != nil {
		app.WithError(err).WithField("backend", cfg.DataBackend).Fatal("Failed to open document store")
	}
	defer docs.Close()

	// 3. HTTP
	e := echo.New()
	api.Use(e, log, cfg.RateLimitRPS)
	api.NewHandler(docs, log).RegisterRoutes(e)

	app.WithField("backend", cfg.DataBackend).Info("Starting insights backend")
	if err := api.Serve(ctx, e, ":"+cfg.Port, app); err != nil {
		app.WithError(err).Error("Server error")
		os.Exit(1)
	}
}
