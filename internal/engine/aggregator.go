package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"insights/internal/models"
)

// AllSectors is the sector selection that disables sector filtering.
const AllSectors = "All"

type Metric string

const (
	MetricIntensity  Metric = "intensity"
	MetricLikelihood Metric = "likelihood"
	MetricRelevance  Metric = "relevance"
)

var ErrUnknownMetric = errors.New("unknown metric")

func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case MetricIntensity, MetricLikelihood, MetricRelevance:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

func (m Metric) Value(r models.Record) float64 {
	switch m {
	case MetricIntensity:
		return r.Intensity
	case MetricLikelihood:
		return r.Likelihood
	case MetricRelevance:
		return r.Relevance
	}
	return 0
}

// Label is the display name, e.g. "Intensity".
func (m Metric) Label() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

// EmptyGroupPolicy is the value an average takes over an empty group.
type EmptyGroupPolicy float64

// ZeroOnEmpty makes every empty average 0. All aggregates below use it.
const ZeroOnEmpty EmptyGroupPolicy = 0

// Mean is the single averaging primitive.
func Mean(values []float64, onEmpty EmptyGroupPolicy) float64 {
	if len(values) == 0 {
		return float64(onEmpty)
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// --- DICTIONARIES ---

// distinct returns the values of key in order of first appearance.
func distinct(records []models.Record, key func(models.Record) string, skipEmpty bool) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		k := key(r)
		if skipEmpty && k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// DistinctYears returns publication years in order of first appearance.
// Records with an unparseable date contribute no year.
func DistinctYears(records []models.Record) []string {
	return distinct(records, func(r models.Record) string { return r.Year }, true)
}

func DistinctSectors(records []models.Record) []string {
	return distinct(records, func(r models.Record) string { return r.Sector }, false)
}

// --- FILTERS ---

// FilterByYear keeps records published in year, preserving order.
// An empty year means no selection and returns records unchanged.
func FilterByYear(records []models.Record, year string) []models.Record {
	if year == "" {
		return records
	}
	out := make([]models.Record, 0)
	for _, r := range records {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}

// FilterBySector keeps records of sector, preserving order. "" and
// AllSectors return records unchanged.
func FilterBySector(records []models.Record, sector string) []models.Record {
	if sector == "" || sector == AllSectors {
		return records
	}
	out := make([]models.Record, 0)
	for _, r := range records {
		if r.Sector == sector {
			out = append(out, r)
		}
	}
	return out
}

// --- GROUPING ---

type sectorSums struct {
	intensity, likelihood, relevance float64
	count                            int
}

// GroupAverageBySector averages the three metrics per sector, rounded to 2
// decimals. Only sectors present in records are emitted.
func GroupAverageBySector(records []models.Record) []models.SectorAverage {
	// Dictionary: sector -> slot in sums, in first-appearance order
	ids := make(map[string]int)
	names := make([]string, 0)
	sums := make([]sectorSums, 0)

	for _, r := range records {
		id, ok := ids[r.Sector]
		if !ok {
			id = len(names)
			ids[r.Sector] = id
			names = append(names, r.Sector)
			sums = append(sums, sectorSums{})
		}
		s := &sums[id]
		s.intensity += r.Intensity
		s.likelihood += r.Likelihood
		s.relevance += r.Relevance
		s.count++
	}

	out := make([]models.SectorAverage, len(names))
	for i, name := range names {
		n := float64(sums[i].count) // >= 1 by construction
		out[i] = models.SectorAverage{
			Sector:     name,
			Intensity:  Round2(sums[i].intensity / n),
			Likelihood: Round2(sums[i].likelihood / n),
			Relevance:  Round2(sums[i].relevance / n),
		}
	}
	return out
}

// RegionDistribution counts records per region in first-appearance order.
func RegionDistribution(records []models.Record) []models.RegionCount {
	ids := make(map[string]int)
	out := make([]models.RegionCount, 0)
	for _, r := range records {
		id, ok := ids[r.Region]
		if !ok {
			id = len(out)
			ids[r.Region] = id
			out = append(out, models.RegionCount{Region: r.Region})
		}
		out[id].Count++
	}
	return out
}

// --- AVERAGES ---

func values(records []models.Record, metric Metric) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = metric.Value(r)
	}
	return out
}

// OverallAverage is the mean of metric across records, 0 when empty.
func OverallAverage(records []models.Record, metric Metric) float64 {
	return Mean(values(records, metric), ZeroOnEmpty)
}

// YearlyAverage returns, for each year of DistinctYears(records) and in the
// same order, the mean of metric over that year's records.
func YearlyAverage(records []models.Record, metric Metric) []float64 {
	years := DistinctYears(records)
	byYear := make(map[string][]float64, len(years))
	for _, r := range records {
		if r.Year == "" {
			continue
		}
		byYear[r.Year] = append(byYear[r.Year], metric.Value(r))
	}

	out := make([]float64, len(years))
	for i, y := range years {
		out[i] = Mean(byYear[y], ZeroOnEmpty)
	}
	return out
}

// Latest returns the first n records in source order.
func Latest(records []models.Record, n int) []models.Record {
	if n < 0 {
		n = 0
	}
	if n > len(records) {
		n = len(records)
	}
	out := make([]models.Record, n)
	copy(out, records[:n])
	return out
}
