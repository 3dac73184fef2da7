// Package timeseries holds the minimal time series container used by the
// predictability model: a time column and a numeric value column.
package timeseries

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrLengthMismatch is returned when time and value columns differ in length.
	ErrLengthMismatch = errors.New("time and value columns differ in length")
	// ErrEmpty is returned for operations that need at least one observation.
	ErrEmpty = errors.New("time series is empty")
	// ErrZeroMax is returned when rescaling a series whose maximum is zero.
	ErrZeroMax = errors.New("time series maximum is zero")
)

// TimeSeries is a univariate series. Time may be nil when only the values
// matter, e.g. for feature extraction.
type TimeSeries struct {
	Time  []time.Time
	Value []float64
}

// Row is a single observation of the tabular export.
type Row struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// New validates the columns and returns a series holding copies of them.
func New(t []time.Time, v []float64) (TimeSeries, error) {
	if t != nil && len(t) != len(v) {
		return TimeSeries{}, fmt.Errorf("%w: %d times, %d values", ErrLengthMismatch, len(t), len(v))
	}
	ts := TimeSeries{Time: t, Value: v}
	return ts.Copy(), nil
}

// FromValues builds a series indexed by consecutive days starting at start.
func FromValues(start time.Time, v []float64) TimeSeries {
	t := make([]time.Time, len(v))
	for i := range v {
		t[i] = start.AddDate(0, 0, i)
	}
	return TimeSeries{Time: t, Value: append([]float64(nil), v...)}
}

// Len returns the number of observations.
func (ts TimeSeries) Len() int { return len(ts.Value) }

// Copy returns a deep copy so callers can transform it freely.
func (ts TimeSeries) Copy() TimeSeries {
	var cp TimeSeries
	if ts.Time != nil {
		cp.Time = make([]time.Time, len(ts.Time))
		copy(cp.Time, ts.Time)
	}
	if ts.Value != nil {
		cp.Value = make([]float64, len(ts.Value))
		copy(cp.Value, ts.Value)
	}
	return cp
}

// Max returns the largest non-NaN value.
func (ts TimeSeries) Max() (float64, error) {
	m := math.Inf(-1)
	seen := false
	for _, v := range ts.Value {
		if math.IsNaN(v) {
			continue
		}
		seen = true
		if v > m {
			m = v
		}
	}
	if !seen {
		return 0, ErrEmpty
	}
	return m, nil
}

// Rescale divides every value by the series maximum in place.
func (ts TimeSeries) Rescale() error {
	m, err := ts.Max()
	if err != nil {
		return err
	}
	if m == 0 {
		return ErrZeroMax
	}
	floats.Scale(1/m, ts.Value)
	return nil
}

// Rows exports the series as a table. Missing timestamps are left zero.
func (ts TimeSeries) Rows() []Row {
	rows := make([]Row, len(ts.Value))
	for i, v := range ts.Value {
		rows[i].Value = v
		if i < len(ts.Time) {
			rows[i].Time = ts.Time[i]
		}
	}
	return rows
}
