package engine

import (
	"context"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"insights/internal/models"
)

// Source fetches the full document set in one request.
type Source interface {
	Fetch(ctx context.Context) ([]models.Document, error)
}

// YearPicker chooses the initial year selection from the distinct year set.
// It returns "" to leave the selection unset.
type YearPicker interface {
	Pick(years []string) string
}

type YearPickerFunc func(years []string) string

func (f YearPickerFunc) Pick(years []string) string { return f(years) }

// FixedYear always selects the same year, provided it occurs in the data.
type FixedYear string

func (y FixedYear) Pick(years []string) string {
	if slices.Contains(years, string(y)) {
		return string(y)
	}
	return ""
}

// RandomYearPicker draws a year uniformly from the set.
type RandomYearPicker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomYearPicker(seed uint64) *RandomYearPicker {
	return &RandomYearPicker{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *RandomYearPicker) Pick(years []string) string {
	if len(years) == 0 {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return years[p.rnd.IntN(len(years))]
}

type Loader struct {
	source Source
	picker YearPicker
	log    logrus.FieldLogger
}

func NewLoader(source Source, picker YearPicker, log logrus.FieldLogger) *Loader {
	if picker == nil {
		picker = FixedYear("")
	}
	return &Loader{source: source, picker: picker, log: log}
}

// Load issues exactly one fetch. On failure the error is logged and an empty
// dataset is returned; there is no retry.
func (l *Loader) Load(ctx context.Context) *Dataset {
	start := time.Now()
	l.log.Info("Loading insights...")

	docs, err := l.source.Fetch(ctx)
	if err != nil {
		l.log.WithError(err).Error("Error fetching insights")
		return NewDataset(nil, "")
	}

	records := make([]models.Record, len(docs))
	for i, doc := range docs {
		records[i] = Normalize(doc)
	}

	ds := NewDataset(records, "")
	ds.initialYear = l.picker.Pick(ds.years)

	l.log.WithFields(logrus.Fields{
		"records":      len(records),
		"years":        len(ds.years),
		"initial_year": ds.initialYear,
		"duration":     time.Since(start).String(),
	}).Info("Load complete")
	return ds
}

// Normalize applies the ingestion defaults: absent numbers become 0 and the
// publication year is resolved once.
func Normalize(doc models.Document) models.Record {
	return models.Record{
		Title:      doc.Title,
		Intensity:  orZero(doc.Intensity),
		Likelihood: orZero(doc.Likelihood),
		Relevance:  orZero(doc.Relevance),
		Sector:     doc.Sector,
		Topic:      doc.Topic,
		Region:     doc.Region,
		Country:    doc.Country,
		Published:  doc.Published,
		Added:      doc.Added,
		Year:       publishedYear(doc.Published),
	}
}

func orZero(n models.Number) float64 {
	if !n.Valid {
		return 0
	}
	return n.Value
}

// Layouts seen in the source data, most common first.
var dateLayouts = []string{
	"January, 2 2006 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"1/2/2006",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func publishedYear(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return ""
	}
	return strconv.Itoa(t.Year())
}

// dateLabel formats a published date as M/D/YYYY, keeping the raw text when
// it cannot be parsed.
func dateLabel(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return s
	}
	return t.Format("1/2/2006")
}
