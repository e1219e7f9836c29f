package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"insights/internal/engine"
	"insights/internal/models"
)

func sampleDataset() *engine.Dataset {
	return engine.NewDataset([]models.Record{
		{Title: "a", Sector: "Energy", Region: "World", Year: "2017", Published: "2017-01-09", Intensity: 6, Likelihood: 3, Relevance: 2},
		{Title: "b", Sector: "Retail", Region: "Asia", Year: "2016", Published: "2016-05-20", Intensity: 4, Likelihood: 2, Relevance: 1},
		{Title: "c", Sector: "Energy", Region: "World", Year: "2017", Published: "2017-03-01", Intensity: 8, Likelihood: 1, Relevance: 4},
	}, "2017")
}

func newDashboard(ds *engine.Dataset) (*echo.Echo, *DashboardHandler) {
	e := echo.New()
	h := NewDashboardHandler(quietLogger())
	h.RegisterRoutes(e)
	if ds != nil {
		h.SetData(ds)
	}
	return e, h
}

func TestDashboardLoading(t *testing.T) {
	// 1. Setup with no data yet
	e, h := newDashboard(nil)

	// 2. Every route reports loading
	for _, path := range []string{"/api/dashboard", "/api/years", "/api/charts/line", "/api/charts/pie.png"} {
		rec := serve(e, http.MethodGet, path)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", path, rec.Code)
		}
		var body messageResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Message != "loading" {
			t.Errorf("%s: expected loading message, got %q", path, rec.Body.String())
		}
	}

	// 3. Installing data flips the server live
	h.SetData(sampleDataset())
	if rec := serve(e, http.MethodGet, "/api/dashboard"); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 after SetData, got %d", rec.Code)
	}
}

func TestGetDashboardDefaults(t *testing.T) {
	e, _ := newDashboard(sampleDataset())

	rec := serve(e, http.MethodGet, "/api/dashboard")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var d models.DashboardData
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatal(err)
	}

	if d.Year != "2017" || d.Sector != engine.AllSectors {
		t.Errorf("Unexpected defaults year=%q sector=%q", d.Year, d.Sector)
	}
	if len(d.Line.Labels) != 2 {
		t.Errorf("Expected 2 line points for 2017, got %d", len(d.Line.Labels))
	}
	if d.KeyMetrics.Records != 3 {
		t.Errorf("Expected key metrics over 3 records, got %d", d.KeyMetrics.Records)
	}
}

func TestGetDashboardSelection(t *testing.T) {
	e, _ := newDashboard(sampleDataset())

	rec := serve(e, http.MethodGet, "/api/dashboard?year=2016&sector=Energy")
	var d models.DashboardData
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatal(err)
	}

	if d.Year != "2016" || len(d.Line.Labels) != 1 {
		t.Errorf("Expected one 2016 point, got year=%q points=%d", d.Year, len(d.Line.Labels))
	}
	if d.KeyMetrics.Records != 2 || d.KeyMetrics.Intensity != 7 {
		t.Errorf("Unexpected Energy metrics %+v", d.KeyMetrics)
	}
	// Yearly bars ignore the selection
	if len(d.YearlyBar.Labels) != 2 {
		t.Errorf("Expected yearly bars over both years, got %v", d.YearlyBar.Labels)
	}
}

func TestChartRoutes(t *testing.T) {
	e, _ := newDashboard(sampleDataset())

	var line models.ChartData
	rec := serve(e, http.MethodGet, "/api/charts/line?year=2016")
	if err := json.Unmarshal(rec.Body.Bytes(), &line); err != nil {
		t.Fatal(err)
	}
	if len(line.Labels) != 1 || len(line.Datasets) == 0 {
		t.Errorf("Unexpected line chart %+v", line)
	}

	var radar models.ChartData
	rec = serve(e, http.MethodGet, "/api/charts/radar")
	if err := json.Unmarshal(rec.Body.Bytes(), &radar); err != nil {
		t.Fatal(err)
	}
	if len(radar.Labels) != 3 {
		t.Errorf("Expected 3 radar axes, got %v", radar.Labels)
	}

	var pie []models.Slice
	rec = serve(e, http.MethodGet, "/api/charts/pie")
	if err := json.Unmarshal(rec.Body.Bytes(), &pie); err != nil {
		t.Fatal(err)
	}
	if len(pie) != 2 || pie[0].Name != "World" || pie[0].Value != 2 {
		t.Errorf("Unexpected pie %+v", pie)
	}

	for _, path := range []string{"/api/charts/bar/yearly", "/api/charts/bar/sector"} {
		if rec := serve(e, http.MethodGet, path); rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestYearsAndSectors(t *testing.T) {
	e, _ := newDashboard(sampleDataset())

	var years, sectors []string
	if err := json.Unmarshal(serve(e, http.MethodGet, "/api/years").Body.Bytes(), &years); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(serve(e, http.MethodGet, "/api/sectors").Body.Bytes(), &sectors); err != nil {
		t.Fatal(err)
	}
	if len(years) != 2 || years[0] != "2017" || years[1] != "2016" {
		t.Errorf("Unexpected years %v", years)
	}
	if len(sectors) != 2 || sectors[0] != "Energy" {
		t.Errorf("Unexpected sectors %v", sectors)
	}
}

func TestGetChartImage(t *testing.T) {
	e, _ := newDashboard(sampleDataset())

	for _, name := range []string{"line", "bar-yearly", "bar-sector", "pie"} {
		rec := serve(e, http.MethodGet, "/api/charts/"+name+".png")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", name, rec.Code)
			continue
		}
		if ct := rec.Header().Get(echo.HeaderContentType); ct != "image/png" {
			t.Errorf("%s: unexpected content type %q", name, ct)
		}
		if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
			t.Errorf("%s: body is not a PNG", name)
		}
	}

	if rec := serve(e, http.MethodGet, "/api/charts/radar.png"); rec.Code != http.StatusNotImplemented {
		t.Errorf("radar: expected 501, got %d", rec.Code)
	}
	for _, path := range []string{"/api/charts/donut.png", "/api/charts/line.svg"} {
		if rec := serve(e, http.MethodGet, path); rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestGetChartImageEmpty(t *testing.T) {
	e, _ := newDashboard(engine.NewDataset(nil, ""))

	if rec := serve(e, http.MethodGet, "/api/charts/line.png"); rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for an empty chart, got %d", rec.Code)
	}
}
