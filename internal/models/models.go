package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number is a numeric field that may be absent. null, "" and a missing key
// all decode as not Valid; numeric strings are accepted. NaN and infinities
// decode as not Valid since they cannot be averaged or encoded.
type Number struct {
	Value float64
	Valid bool
}

func Float(v float64) Number { return Number{Value: v, Valid: true} }

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = Number{}
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*n = Number{}
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", b)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		*n = Number{}
		return nil
	}
	*n = Number{Value: v, Valid: true}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Document is one insight as it arrives from the data source.
type Document struct {
	Title      string `json:"title"`
	Intensity  Number `json:"intensity"`
	Likelihood Number `json:"likelihood"`
	Relevance  Number `json:"relevance"`
	Sector     string `json:"sector"`
	Topic      string `json:"topic"`
	Region     string `json:"region"`
	Country    string `json:"country"`
	Published  string `json:"published"`
	Added      string `json:"added"`
}

// Record is a normalized insight. Year is derived from Published once at
// ingestion and is empty when the date cannot be parsed.
type Record struct {
	Title      string  `json:"title"`
	Intensity  float64 `json:"intensity"`
	Likelihood float64 `json:"likelihood"`
	Relevance  float64 `json:"relevance"`
	Sector     string  `json:"sector"`
	Topic      string  `json:"topic,omitempty"`
	Region     string  `json:"region"`
	Country    string  `json:"country,omitempty"`
	Published  string  `json:"published"`
	Added      string  `json:"added"`
	Year       string  `json:"year,omitempty"`
}

type SectorAverage struct {
	Sector     string  `json:"sector"`
	Intensity  float64 `json:"intensity"`
	Likelihood float64 `json:"likelihood"`
	Relevance  float64 `json:"relevance"`
}

type RegionCount struct {
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// Series is one labelled series of a chart.
type Series struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BorderColor     string    `json:"borderColor,omitempty"`
	BackgroundColor string    `json:"backgroundColor,omitempty"`
	Fill            bool      `json:"fill,omitempty"`
}

// ChartData is the shape consumed by line, radar and bar charts.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Series  `json:"datasets"`
}

// Slice is one wedge of a pie chart.
type Slice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type KeyMetrics struct {
	Intensity  float64 `json:"intensity"`
	Likelihood float64 `json:"likelihood"`
	Relevance  float64 `json:"relevance"`
	Records    int     `json:"records"`
}

type DashboardData struct {
	Year        string          `json:"year"`
	Sector      string          `json:"sector"`
	Years       []string        `json:"years"`
	Sectors     []string        `json:"sectors"`
	KeyMetrics  KeyMetrics      `json:"key_metrics"`
	SectorBar   ChartData       `json:"sector_bar"`
	SectorStats []SectorAverage `json:"sector_stats"`
	RegionPie   []Slice         `json:"region_pie"`
	Line        ChartData       `json:"line"`
	Radar       ChartData       `json:"radar"`
	YearlyBar   ChartData       `json:"yearly_bar"`
	Latest      []Record        `json:"latest"`
}
