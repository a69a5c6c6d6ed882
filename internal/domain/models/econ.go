package models

import "time"

// Indicator names one of the three dashboard series.
type Indicator string

const (
	IndicatorGDP          Indicator = "GDP"
	IndicatorCPI          Indicator = "CPI"
	IndicatorUnemployment Indicator = "Unemployment"
)

// Indicators returns the selectable indicators in display order.
func Indicators() []Indicator {
	return []Indicator{IndicatorGDP, IndicatorCPI, IndicatorUnemployment}
}

// SeriesID maps the indicator to its FRED series identifier.
func (i Indicator) SeriesID() string {
	switch i {
	case IndicatorGDP:
		return "GDP"
	case IndicatorCPI:
		return "CPIAUCSL"
	case IndicatorUnemployment:
		return "UNRATE"
	default:
		return ""
	}
}

// IsValidIndicator returns true if i is one of the known indicators.
func IsValidIndicator(i Indicator) bool {
	return i.SeriesID() != ""
}

// NormalizeIndicator converts a raw string to a valid indicator (or GDP).
func NormalizeIndicator(s string) Indicator {
	i := Indicator(s)
	if IsValidIndicator(i) {
		return i
	}
	return IndicatorGDP
}

// RawObservation is one provider sample. Valid is false when the provider
// reported the value as missing.
type RawObservation struct {
	Date  time.Time
	Value float64
	Valid bool
}

// MergedRow is the outer join of the three series on one date.
// A nil field means the series had no usable value for that date.
type MergedRow struct {
	Date         time.Time
	GDP          *float64
	CPI          *float64
	Unemployment *float64
}

// Complete reports whether every field is present.
func (r MergedRow) Complete() bool {
	return r.GDP != nil && r.CPI != nil && r.Unemployment != nil
}

// CleanedRow is the persisted record shape: no absent values.
type CleanedRow struct {
	Date         time.Time `json:"date"`
	GDP          float64   `json:"gdp"`
	CPI          float64   `json:"cpi"`
	Unemployment float64   `json:"unemployment"`
}

// YearlyAggregate holds per-year means of the cleaned rows.
type YearlyAggregate struct {
	Year         int     `json:"year"`
	GDP          float64 `json:"gdp"`
	CPI          float64 `json:"cpi"`
	Unemployment float64 `json:"unemployment"`
}

// Value returns the mean for the given indicator.
func (a YearlyAggregate) Value(i Indicator) float64 {
	switch i {
	case IndicatorCPI:
		return a.CPI
	case IndicatorUnemployment:
		return a.Unemployment
	default:
		return a.GDP
	}
}
