package api

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"insights/internal/engine"
	"insights/internal/logger"
	"insights/internal/models"
	"insights/internal/render"
)

// DashboardHandler serves chart data computed from a loaded dataset.
// The server starts before the data is there; until SetData is called every
// route answers 503.
type DashboardHandler struct {
	mu   sync.RWMutex
	data *engine.Dataset
	log  *logrus.Entry
}

func NewDashboardHandler(log logrus.FieldLogger) *DashboardHandler {
	return &DashboardHandler{log: logger.For(log, logger.ComponentHTTP)}
}

// SetData installs the dataset. Safe to call while serving.
func (h *DashboardHandler) SetData(ds *engine.Dataset) {
	h.mu.Lock()
	h.data = ds
	h.mu.Unlock()
}

func (h *DashboardHandler) dataset() *engine.Dataset {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.data
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api", h.requireData)
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/years", h.GetYears)
	api.GET("/sectors", h.GetSectors)

	charts := api.Group("/charts")
	charts.GET("/line", h.chart(func(d models.DashboardData) any { return d.Line }))
	charts.GET("/radar", h.chart(func(d models.DashboardData) any { return d.Radar }))
	charts.GET("/bar/yearly", h.chart(func(d models.DashboardData) any { return d.YearlyBar }))
	charts.GET("/bar/sector", h.chart(func(d models.DashboardData) any { return d.SectorBar }))
	charts.GET("/pie", h.chart(func(d models.DashboardData) any { return d.RegionPie }))
	// Static routes win over the param, so this only sees "<kind>.png"
	charts.GET("/:file", h.GetChartImage)
}

func (h *DashboardHandler) requireData(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.dataset() == nil {
			return c.JSON(http.StatusServiceUnavailable, messageResponse{Message: "loading"})
		}
		return next(c)
	}
}

// view reads the year and sector selection. The year defaults to the one
// picked at load time, the sector to all sectors.
func view(c echo.Context, ds *engine.Dataset) engine.View {
	v := engine.View{
		Year:   c.QueryParam("year"),
		Sector: c.QueryParam("sector"),
	}
	if v.Year == "" {
		v.Year = ds.InitialYear()
	}
	if v.Sector == "" {
		v.Sector = engine.AllSectors
	}
	return v
}

func (h *DashboardHandler) build(c echo.Context) models.DashboardData {
	ds := h.dataset()
	return engine.Build(ds, view(c, ds))
}

func (h *DashboardHandler) GetDashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.build(c))
}

func (h *DashboardHandler) GetYears(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dataset().Years())
}

func (h *DashboardHandler) GetSectors(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dataset().Sectors())
}

func (h *DashboardHandler) chart(pick func(models.DashboardData) any) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, pick(h.build(c)))
	}
}

var imageKinds = map[string]render.Kind{
	"line":       render.KindLine,
	"radar":      render.KindRadar,
	"bar-yearly": render.KindYearlyBar,
	"bar-sector": render.KindSectorBar,
	"pie":        render.KindPie,
}

// GetChartImage renders one chart as PNG.
func (h *DashboardHandler) GetChartImage(c echo.Context) error {
	name, ok := strings.CutSuffix(c.Param("file"), ".png")
	kind, known := imageKinds[name]
	if !ok || !known {
		return c.JSON(http.StatusNotFound, messageResponse{Message: "unknown chart " + c.Param("file")})
	}

	var buf bytes.Buffer
	err := render.Dashboard(&buf, kind, h.build(c))
	switch {
	case errors.Is(err, render.ErrUnsupportedChart):
		return c.JSON(http.StatusNotImplemented, messageResponse{Message: err.Error()})
	case errors.Is(err, render.ErrEmptyChart):
		return c.NoContent(http.StatusNoContent)
	case err != nil:
		h.log.WithError(err).WithField("chart", name).Error("Error rendering chart")
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: err.Error()})
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}
