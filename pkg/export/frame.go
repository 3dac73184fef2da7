package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/kilianp07/predictability/core/predictability"
)

// ReadFrame reads a CSV of feature rows whose header names the features.
// Empty cells and NaN become NaN.
func ReadFrame(r io.Reader) (predictability.Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	frame := make(predictability.Frame, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("column %d has no name", i+1)
		}
		if _, dup := frame[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		header[i] = name
		frame[name] = nil
	}
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		for i, cell := range rec {
			v := math.NaN()
			if cell = strings.TrimSpace(cell); cell != "" {
				if v, err = strconv.ParseFloat(cell, 64); err != nil {
					return nil, fmt.Errorf("line %d column %q: %w", line, header[i], err)
				}
			}
			frame[header[i]] = append(frame[header[i]], v)
		}
	}
	if line == 1 {
		return nil, fmt.Errorf("no feature rows")
	}
	return frame, nil
}
