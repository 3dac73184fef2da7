package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// ReadCSV parses a two column "time,value" CSV. A header row is skipped when
// its value column is not numeric.
func ReadCSV(r io.Reader) (TimeSeries, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true
	var ts TimeSeries
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return TimeSeries{}, err
		}
		line++
		v, verr := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if verr != nil {
			if line == 1 {
				continue
			}
			return TimeSeries{}, fmt.Errorf("line %d: value %q: %w", line, rec[1], verr)
		}
		t, terr := parseTime(strings.TrimSpace(rec[0]))
		if terr != nil {
			return TimeSeries{}, fmt.Errorf("line %d: %w", line, terr)
		}
		ts.Time = append(ts.Time, t)
		ts.Value = append(ts.Value, v)
	}
	if ts.Len() == 0 {
		return TimeSeries{}, ErrEmpty
	}
	return ts, nil
}

func parseTime(s string) (time.Time, error) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format %q", s)
}
