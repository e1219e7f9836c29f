package engine

import (
	"slices"

	"insights/internal/models"
)

// Dataset holds the normalized record set in source order.
// It is built once per load and never mutated afterwards.
type Dataset struct {
	records []models.Record

	// Dictionaries in first-appearance order
	years   []string
	sectors []string

	initialYear string
}

func NewDataset(records []models.Record, initialYear string) *Dataset {
	return &Dataset{
		records:     records,
		years:       DistinctYears(records),
		sectors:     DistinctSectors(records),
		initialYear: initialYear,
	}
}

// Records returns a copy of the record set.
func (d *Dataset) Records() []models.Record {
	return slices.Clone(d.records)
}

func (d *Dataset) Len() int { return len(d.records) }

func (d *Dataset) Years() []string { return slices.Clone(d.years) }

func (d *Dataset) Sectors() []string { return slices.Clone(d.sectors) }

// InitialYear is the year selected when the dataset was loaded, or "" if none.
func (d *Dataset) InitialYear() string { return d.initialYear }
