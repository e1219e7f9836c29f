package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"insights/internal/models"
)

func TestHTTPFetch(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Method != http.MethodGet || r.URL.RawQuery != "" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"_id":"1","title":"a","intensity":6,"relevance":2,"likelihood":""},{"title":"b","intensity":4,"relevance":1,"likelihood":3}]`))
	}))
	defer srv.Close()

	docs, err := NewHTTP(srv.URL, srv.Client()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if hits != 1 {
		t.Errorf("Expected one request, got %d", hits)
	}
	if len(docs) != 2 || docs[0].Title != "a" || docs[1].Title != "b" {
		t.Fatalf("Unexpected docs %+v", docs)
	}
	if docs[0].Likelihood.Valid || docs[1].Likelihood != models.Float(3) {
		t.Errorf("Unexpected likelihoods %+v / %+v", docs[0].Likelihood, docs[1].Likelihood)
	}
}

func TestHTTPFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"db down"}`))
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, nil).Fetch(context.Background())
	if err == nil || !strings.Contains(err.Error(), "db down") || !strings.Contains(err.Error(), "500") {
		t.Errorf("Expected status error with message, got %v", err)
	}
}

func TestHTTPFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := NewHTTP(url, nil).Fetch(context.Background()); err == nil {
		t.Error("Expected error for closed server")
	}
}

type stubFinder struct {
	docs []json.RawMessage
	err  error
}

func (f stubFinder) FindAll(context.Context) ([]json.RawMessage, error) { return f.docs, f.err }

func TestStoreFetch(t *testing.T) {
	src := NewStore(stubFinder{docs: []json.RawMessage{
		json.RawMessage(`{"title":"a","intensity":6,"sector":"Energy"}`),
	}})

	docs, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(docs) != 1 || docs[0].Sector != "Energy" || docs[0].Intensity != models.Float(6) {
		t.Errorf("Unexpected docs %+v", docs)
	}

	bad := NewStore(stubFinder{docs: []json.RawMessage{json.RawMessage(`{"intensity":"high"}`)}})
	if _, err := bad.Fetch(context.Background()); err == nil {
		t.Error("Expected decode error")
	}

	boom := errors.New("boom")
	if _, err := NewStore(stubFinder{err: boom}).Fetch(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Expected wrapped finder error, got %v", err)
	}
}
