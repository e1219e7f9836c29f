package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type stubFinder struct {
	docs []json.RawMessage
	err  error
}

func (f stubFinder) FindAll(context.Context) ([]json.RawMessage, error) { return f.docs, f.err }

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGetData(t *testing.T) {
	// 1. Setup
	e := echo.New()
	NewHandler(stubFinder{docs: []json.RawMessage{
		json.RawMessage(`{"_id":{"$oid":"5d8c"},"title":"a","intensity":6}`),
		json.RawMessage(`{"title":"b","likelihood":""}`),
	}}, quietLogger()).RegisterRoutes(e)

	// 2. Request
	rec := serve(e, http.MethodGet, "/api/data")

	// 3. Verify
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var got []json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Body is not a JSON array: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(got))
	}
	if string(got[0]) != `{"_id":{"$oid":"5d8c"},"title":"a","intensity":6}` {
		t.Errorf("Document not returned verbatim: %s", got[0])
	}
}

func TestGetDataEmptyStore(t *testing.T) {
	e := echo.New()
	NewHandler(stubFinder{}, quietLogger()).RegisterRoutes(e)

	rec := serve(e, http.MethodGet, "/api/data")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("Expected empty array, got %q", body)
	}
}

func TestGetDataStoreError(t *testing.T) {
	e := echo.New()
	NewHandler(stubFinder{err: errors.New("connection refused")}, quietLogger()).RegisterRoutes(e)

	rec := serve(e, http.MethodGet, "/api/data")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
	var body messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Message != "connection refused" {
		t.Errorf("Unexpected message %q", body.Message)
	}
}

func TestHealth(t *testing.T) {
	e := echo.New()
	NewHandler(stubFinder{}, quietLogger()).RegisterRoutes(e)

	rec := serve(e, http.MethodGet, "/api/health")
	if rec.Code != http.StatusOK || rec.Body.String() != "{\"status\":\"ok\"}\n" {
		t.Errorf("Unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func TestMiddlewareCORSAndRateLimit(t *testing.T) {
	e := echo.New()
	Use(e, quietLogger(), 1)
	NewHandler(stubFinder{}, quietLogger()).RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("First request: expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "*" {
		t.Errorf("Expected CORS header *, got %q", got)
	}

	// Burst of one at one request per second
	if rec := serve(e, http.MethodGet, "/api/health"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("Second request: expected 429, got %d", rec.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	e := echo.New()
	Use(e, quietLogger(), 0)
	NewHandler(stubFinder{}, quietLogger()).RegisterRoutes(e)

	for i := range 50 {
		if rec := serve(e, http.MethodGet, "/api/health"); rec.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200 with the limiter off, got %d", i, rec.Code)
		}
	}
}

func TestRecoverMiddleware(t *testing.T) {
	e := echo.New()
	Use(e, quietLogger(), 0)
	e.GET("/boom", func(echo.Context) error { panic("boom") })

	if rec := serve(e, http.MethodGet, "/boom"); rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 after panic, got %d", rec.Code)
	}
}
