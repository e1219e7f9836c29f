package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"insights/internal/api"
	"insights/internal/config"
	"insights/internal/engine"
	"insights/internal/logger"
	"insights/internal/source"
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

	// 2. Where the records come from
	var src engine.Source
	switch cfg.DashboardSource {
	case config.SourceStore:
		docs, err := store.Open(ctx, cfg, logger.For(log, logger.ComponentStore))
		if err != nil {
			app.WithError(err).WithField("backend", cfg.DataBackend).Fatal("Failed to open document store")
		}
		defer docs.Close()
		src = source.NewStore(docs)
	default:
		src = source.NewHTTP(cfg.DataURL, &http.Client{Timeout: cfg.FetchTimeout})
	}

	var picker engine.YearPicker = engine.NewRandomYearPicker(cfg.RandomSeed)
	if cfg.InitialYear != "" {
		picker = engine.FixedYear(cfg.InitialYear)
	}

	// 3. Server comes up immediately and answers 503 until the load lands
	e := echo.New()
	api.Use(e, log, cfg.RateLimitRPS)
	h := api.NewDashboardHandler(log)
	h.RegisterRoutes(e)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.WithField("source", cfg.DashboardSource).Info("BACKGROUND: Loading insights")
		t0 := time.Now()

		loadCtx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
		defer cancel()
		ds := engine.NewLoader(src, picker, logger.For(log, logger.ComponentLoader)).Load(loadCtx)
		h.SetData(ds)

		app.WithFields(logrus.Fields{
			"records":  ds.Len(),
			"year":     ds.InitialYear(),
			"duration": time.Since(t0),
		}).Info("BACKGROUND: Load complete, API is fully ready")
		return nil
	})

	g.Go(func() error {
		return api.Serve(ctx, e, ":"+cfg.DashboardPort, app)
	})

	if err := g.Wait(); err != nil {
		app.WithError(err).Error("Server error")
		os.Exit(1)
	}
}
