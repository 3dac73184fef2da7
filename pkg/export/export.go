package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
)

// Verdict is the prediction for one input row or series.
type Verdict struct {
	Row         int     `json:"row"`
	Source      string  `json:"source"`
	Predictable bool    `json:"predictable"`
	Probability float64 `json:"probability"`
	Method      string  `json:"method"`
	RunID       string  `json:"run_id"`
}

// WriteJSON writes the verdicts to w in JSON format.
func WriteJSON(w io.Writer, verdicts []Verdict) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(verdicts)
}

// WriteCSV writes the verdicts to w in CSV format with a header row.
func WriteCSV(w io.Writer, verdicts []Verdict) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"row", "source", "predictable", "probability", "method", "run_id"}); err != nil {
		return err
	}
	for _, v := range verdicts {
		rec := []string{
			strconv.Itoa(v.Row),
			v.Source,
			strconv.FormatBool(v.Predictable),
			strconv.FormatFloat(v.Probability, 'f', -1, 64),
			v.Method,
			v.RunID,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
