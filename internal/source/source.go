// Package source adapts the places the dashboard can load insights from to
// engine.Source.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"insights/internal/models"
)

// HTTP fetches the backend's document endpoint with a single GET.
type HTTP struct {
	url    string
	client *http.Client
}

func NewHTTP(url string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{url: url, client: client}
}

type errorBody struct {
	Message string `json:"message"`
}

func (h *HTTP) Fetch(ctx context.Context) ([]models.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", h.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body errorBody
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body)
		if body.Message != "" {
			return nil, fmt.Errorf("fetch %s: status %d: %s", h.url, resp.StatusCode, body.Message)
		}
		return nil, fmt.Errorf("fetch %s: status %d", h.url, resp.StatusCode)
	}

	docs := make([]models.Document, 0)
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return docs, nil
}

// Finder is the read side of a document store.
type Finder interface {
	FindAll(ctx context.Context) ([]json.RawMessage, error)
}

// Store reads straight from a document store, skipping the HTTP hop.
type Store struct {
	finder Finder
}

func NewStore(finder Finder) *Store {
	return &Store{finder: finder}
}

func (s *Store) Fetch(ctx context.Context) ([]models.Document, error) {
	raws, err := s.finder.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]models.Document, len(raws))
	for i, raw := range raws {
		if err := json.Unmarshal(raw, &docs[i]); err != nil {
			return nil, fmt.Errorf("decode document %d: %w", i, err)
		}
	}
	return docs, nil
}
