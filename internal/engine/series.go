package engine

import (
	"insights/internal/models"
)

// View is the current filter selection of the dashboard.
type View struct {
	Year   string
	Sector string
}

const latestCount = 5

// Series colours.
const (
	colorIntensity  = "#8884d8"
	colorLikelihood = "#82ca9d"
	colorRelevance  = "#ffc658"
)

var metricOrder = []Metric{MetricIntensity, MetricLikelihood, MetricRelevance}

var fillColors = map[Metric]string{
	MetricIntensity:  "rgba(136, 132, 216, 0.5)",
	MetricLikelihood: "rgba(130, 202, 157, 0.5)",
	MetricRelevance:  "rgba(255, 198, 88, 0.5)",
}

var strokeColors = map[Metric]string{
	MetricIntensity:  colorIntensity,
	MetricLikelihood: colorLikelihood,
	MetricRelevance:  colorRelevance,
}

// LineSeries plots each record's metrics against its publication date.
func LineSeries(records []models.Record) models.ChartData {
	labels := make([]string, len(records))
	for i, r := range records {
		labels[i] = dateLabel(r.Published)
	}

	datasets := make([]models.Series, 0, len(metricOrder))
	for _, m := range metricOrder {
		datasets = append(datasets, models.Series{
			Label:           m.Label(),
			Data:            values(records, m),
			BorderColor:     strokeColors[m],
			BackgroundColor: fillColors[m],
			Fill:            true,
		})
	}
	return models.ChartData{Labels: labels, Datasets: datasets}
}

// RadarSeries holds one dataset with the overall averages of intensity,
// relevance and likelihood, in that order.
func RadarSeries(records []models.Record) models.ChartData {
	axes := []Metric{MetricIntensity, MetricRelevance, MetricLikelihood}
	labels := make([]string, len(axes))
	data := make([]float64, len(axes))
	for i, m := range axes {
		labels[i] = m.Label()
		data[i] = OverallAverage(records, m)
	}
	return models.ChartData{
		Labels: labels,
		Datasets: []models.Series{{
			Label:           "Insights Overview",
			Data:            data,
			BorderColor:     "rgba(255, 99, 132, 1)",
			BackgroundColor: "rgba(255, 99, 132, 0.2)",
		}},
	}
}

// YearlyBarSeries buckets average intensity and relevance by year.
func YearlyBarSeries(records []models.Record) models.ChartData {
	return models.ChartData{
		Labels: DistinctYears(records),
		Datasets: []models.Series{
			{
				Label:           "Average Intensity",
				Data:            YearlyAverage(records, MetricIntensity),
				BackgroundColor: colorIntensity,
			},
			{
				Label:           "Average Relevance",
				Data:            YearlyAverage(records, MetricRelevance),
				BackgroundColor: colorRelevance,
			},
		},
	}
}

// SectorBarSeries buckets the per-sector averages.
func SectorBarSeries(stats []models.SectorAverage) models.ChartData {
	labels := make([]string, len(stats))
	series := make(map[Metric][]float64, len(metricOrder))
	for _, m := range metricOrder {
		series[m] = make([]float64, len(stats))
	}
	for i, s := range stats {
		labels[i] = s.Sector
		series[MetricIntensity][i] = s.Intensity
		series[MetricLikelihood][i] = s.Likelihood
		series[MetricRelevance][i] = s.Relevance
	}

	datasets := make([]models.Series, 0, len(metricOrder))
	for _, m := range metricOrder {
		datasets = append(datasets, models.Series{
			Label:           m.Label(),
			Data:            series[m],
			BackgroundColor: strokeColors[m],
		})
	}
	return models.ChartData{Labels: labels, Datasets: datasets}
}

func PieSeries(counts []models.RegionCount) []models.Slice {
	out := make([]models.Slice, len(counts))
	for i, c := range counts {
		out[i] = models.Slice{Name: c.Region, Value: float64(c.Count)}
	}
	return out
}

func KeyMetricsOf(records []models.Record) models.KeyMetrics {
	return models.KeyMetrics{
		Intensity:  Round2(OverallAverage(records, MetricIntensity)),
		Likelihood: Round2(OverallAverage(records, MetricLikelihood)),
		Relevance:  Round2(OverallAverage(records, MetricRelevance)),
		Records:    len(records),
	}
}

// Build derives every chart of the dashboard for view. The year selection
// drives the line and radar charts, the sector selection drives the key
// metrics and the sector bars; yearly bars and the region pie always cover the
// whole dataset.
func Build(ds *Dataset, v View) models.DashboardData {
	all := ds.records
	byYear := FilterByYear(all, v.Year)
	bySector := FilterBySector(all, v.Sector)
	stats := GroupAverageBySector(bySector)

	sector := v.Sector
	if sector == "" {
		sector = AllSectors
	}

	return models.DashboardData{
		Year:        v.Year,
		Sector:      sector,
		Years:       ds.Years(),
		Sectors:     ds.Sectors(),
		KeyMetrics:  KeyMetricsOf(bySector),
		SectorBar:   SectorBarSeries(stats),
		SectorStats: stats,
		RegionPie:   PieSeries(RegionDistribution(all)),
		Line:        LineSeries(byYear),
		Radar:       RadarSeries(byYear),
		YearlyBar:   YearlyBarSeries(all),
		Latest:      Latest(all, latestCount),
	}
}
