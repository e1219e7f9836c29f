// Package render draws prepared chart series as PNG images with go-chart.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"insights/internal/models"
)

var (
	ErrEmptyChart       = errors.New("nothing to render")
	ErrUnsupportedChart = errors.New("chart kind has no renderer")
)

type Kind string

const (
	KindLine      Kind = "line"
	KindRadar     Kind = "radar"
	KindYearlyBar Kind = "bar-yearly"
	KindSectorBar Kind = "bar-sector"
	KindPie       Kind = "pie"
)

const (
	width  = 1024
	height = 512

	plotPadding = 64

	// Above this many points the x axis falls back to numeric ticks.
	maxTickLabels = 24
)

// Pie palette.
var palette = []string{
	"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF", "#FF9F40",
	"#FF5757", "#57C7B9", "#F9C74F", "#2A9D8F", "#E9C46A", "#F6BD60",
	"#E76F51", "#8ABF9E", "#F94144", "#F3722C", "#F8961E", "#F9C74F",
	"#90BE6D", "#577590", "#2C6E49", "#F3722C", "#A1C6EA", "#D9BF77",
}

// Dashboard renders the chart of kind from d.
func Dashboard(w io.Writer, kind Kind, d models.DashboardData) error {
	switch kind {
	case KindLine:
		return Line(w, d.Line, "Insights - Area Chart")
	case KindYearlyBar:
		return Bars(w, d.YearlyBar, "Insights - Vertical Bar Chart")
	case KindSectorBar:
		return Bars(w, d.SectorBar, "Sector Comparison")
	case KindPie:
		return Pie(w, d.RegionPie, "Regional Distribution")
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedChart, kind)
}

func color(hex string) drawing.Color {
	if hex == "" {
		return chart.ColorBlue
	}
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func yRange(data models.ChartData) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, ds := range data.Datasets {
		for _, v := range ds.Data {
			lo, hi = min(lo, v), max(hi, v)
		}
	}
	if hi == lo {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi * 1.1}
}

// Line draws one line per dataset against the label index.
func Line(w io.Writer, data models.ChartData, title string) error {
	n := len(data.Labels)
	if n == 0 {
		return ErrEmptyChart
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	// go-chart needs two distinct x values
	if n == 1 {
		xs = []float64{0, 1}
	}

	series := make([]chart.Series, 0, len(data.Datasets))
	for _, ds := range data.Datasets {
		ys := ds.Data
		if n == 1 {
			ys = []float64{ds.Data[0], ds.Data[0]}
		}
		series = append(series, chart.ContinuousSeries{
			Name:    ds.Label,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: color(ds.BorderColor),
				StrokeWidth: 2,
			},
		})
	}

	var ticks []chart.Tick
	if n <= maxTickLabels {
		for i, l := range data.Labels {
			ticks = append(ticks, chart.Tick{Value: float64(i), Label: l})
		}
	}

	ch := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		XAxis:  chart.XAxis{Name: "Date", Ticks: ticks},
		YAxis:  chart.YAxis{Name: "Value", Range: yRange(data)},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

// Bars draws grouped bars: one group per label, one bar per dataset.
func Bars(w io.Writer, data models.ChartData, title string) error {
	if len(data.Labels) == 0 || len(data.Datasets) == 0 {
		return ErrEmptyChart
	}

	bars := make([]chart.Value, 0, len(data.Labels)*len(data.Datasets))
	for i, label := range data.Labels {
		for j, ds := range data.Datasets {
			l := ""
			if j == 0 {
				l = label
			}
			bars = append(bars, chart.Value{
				Label: l,
				Value: ds.Data[i],
				Style: chart.Style{
					FillColor:   color(ds.BackgroundColor),
					StrokeColor: color(ds.BackgroundColor),
				},
			})
		}
	}

	// Split the plot width into one slot per bar, 60% bar and 40% gap
	slot := max(5, (width-2*plotPadding)/len(bars))

	bc := chart.BarChart{
		Title:      title,
		Width:      max(width, slot*len(bars)+2*plotPadding),
		Height:     height,
		BarWidth:   slot * 3 / 5,
		BarSpacing: slot - slot*3/5,
		YAxis:      chart.YAxis{Range: yRange(data)},
		Bars:       bars,
	}
	return bc.Render(chart.PNG, w)
}

// Pie draws one wedge per slice, coloured from the palette.
func Pie(w io.Writer, slices []models.Slice, title string) error {
	var total float64
	values := make([]chart.Value, 0, len(slices))
	for i, s := range slices {
		total += s.Value
		values = append(values, chart.Value{
			Label: s.Name,
			Value: s.Value,
			Style: chart.Style{FillColor: color(palette[i%len(palette)])},
		})
	}
	if total == 0 {
		return ErrEmptyChart
	}

	pc := chart.PieChart{
		Title:  title,
		Width:  height,
		Height: height,
		Values: values,
	}
	return pc.Render(chart.PNG, w)
}
