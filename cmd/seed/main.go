package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"insights/internal/config"
	"insights/internal/logger"
	"insights/internal/store"
)

func main() {
	cfg := config.Load()

	filePath := flag.String("file", cfg.DataFile, "Path to a JSON array of insight documents")
	backend := flag.String("backend", cfg.DataBackend, "Store to import into: mongo or sqlite")
	timeout := flag.Duration("timeout", 2*time.Minute, "Give up after this long")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: seed [flags]\n\nImports a JSON array file into the document store.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logger")
	}
	seed := logger.For(log, logger.ComponentSeed)

	cfg.DataBackend = *backend
	if err := cfg.Validate(); err != nil {
		seed.WithError(err).Fatal("Invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	docs, err := store.NewFile(*filePath).FindAll(ctx)
	if err != nil {
		seed.WithError(err).Fatal("Failed to read documents")
	}

	dst, err := store.Open(ctx, cfg, logger.For(log, logger.ComponentStore))
	if err != nil {
		seed.WithError(err).Fatal("Failed to open document store")
	}
	defer dst.Close()

	importer, ok := dst.(store.Importer)
	if !ok {
		dst.Close()
		seed.WithField("backend", cfg.DataBackend).Fatal("Backend does not accept imports")
	}

	n, err := importer.Import(ctx, docs)
	if err != nil {
		dst.Close()
		seed.WithError(err).Fatal("Import failed")
	}
	seed.WithFields(logrus.Fields{
		"file":     *filePath,
		"backend":  cfg.DataBackend,
		"imported": n,
	}).Info("Seed complete")
}
