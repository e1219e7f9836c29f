// Package store is the read side of the document store behind GET /api/data.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"insights/internal/config"
	"insights/internal/store/mongo"
	"insights/internal/store/sqlite"
)

var ErrUnknownBackend = errors.New("unknown data backend")

// Store returns stored documents verbatim.
type Store interface {
	FindAll(ctx context.Context) ([]json.RawMessage, error)
	Close() error
}

// Importer bulk-loads documents. Used by the seeder only.
type Importer interface {
	Import(ctx context.Context, docs []json.RawMessage) (int, error)
}

// Open selects the backend named by cfg.DataBackend.
func Open(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (Store, error) {
	switch cfg.DataBackend {
	case config.BackendMongo:
		s, err := mongo.Open(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"database":   cfg.MongoDatabase,
			"collection": cfg.MongoCollection,
		}).Info("MongoDB connected")
		return s, nil
	case config.BackendSQLite:
		s, err := sqlite.Open(cfg.SQLiteDBPath)
		if err != nil {
			return nil, err
		}
		log.WithField("path", cfg.SQLiteDBPath).Info("SQLite store opened")
		return s, nil
	case config.BackendFile:
		log.WithField("path", cfg.DataFile).Info("Serving documents from file")
		return NewFile(cfg.DataFile), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.DataBackend)
}

// File serves a JSON array file, re-read on every call.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) FindAll(_ context.Context) ([]json.RawMessage, error) {
	content, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	docs := make([]json.RawMessage, 0)
	if err := json.Unmarshal(content, &docs); err != nil {
		return nil, fmt.Errorf("decode data file %s: %w", f.path, err)
	}
	return docs, nil
}

func (f *File) Close() error { return nil }
