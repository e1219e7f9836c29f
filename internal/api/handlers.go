package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"insights/internal/logger"
)

// DocumentFinder is the read side of the document store.
type DocumentFinder interface {
	FindAll(ctx context.Context) ([]json.RawMessage, error)
}

type messageResponse struct {
	Message string `json:"message"`
}

// Handler serves the backend API: the stored documents, untouched.
type Handler struct {
	store DocumentFinder
	log   *logrus.Entry
}

func NewHandler(store DocumentFinder, log logrus.FieldLogger) *Handler {
	return &Handler{store: store, log: logger.For(log, logger.ComponentHTTP)}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/data", h.GetData)
	api.GET("/health", h.Health)
}

// GetData returns every stored document as stored. No query parameters.
// Mongo documents come back as relaxed extended JSON, so _id reads
// {"$oid": "..."} and BSON dates read {"$date": "..."}.
func (h *Handler) GetData(c echo.Context) error {
	docs, err := h.store.FindAll(c.Request().Context())
	if err != nil {
		h.log.WithError(err).Error("Error fetching data")
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: err.Error()})
	}
	if docs == nil {
		docs = []json.RawMessage{}
	}
	return c.JSON(http.StatusOK, docs)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
