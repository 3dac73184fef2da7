package runlog

import (
	"context"
	"sort"
	"time"
)

// Record is one training run.
type Record struct {
	RunID        string             `json:"run_id"`
	Method       string             `json:"method"`
	StartedAt    time.Time          `json:"started_at"`
	Duration     time.Duration      `json:"duration"`
	Rows         int                `json:"rows"`
	TrainRows    int                `json:"train_rows"`
	ValidRows    int                `json:"valid_rows"`
	TestRows     int                `json:"test_rows"`
	Threshold    float64            `json:"threshold"`
	Fallback     bool               `json:"fallback"`
	Scores       map[string]float64 `json:"scores,omitempty"`
	Skipped      int                `json:"skipped"`
	Preprocessed bool               `json:"preprocessed"`
	Metadata     string             `json:"metadata,omitempty"`
	ModelPath    string             `json:"model_path,omitempty"`
}

// Query filters records. Zero values match everything; Limit keeps the most
// recent runs.
type Query struct {
	Method string
	Start  time.Time
	End    time.Time
	Limit  int
}

// Match reports whether r satisfies the filters of q.
func (q Query) Match(r Record) bool {
	if q.Method != "" && r.Method != q.Method {
		return false
	}
	if !q.Start.IsZero() && r.StartedAt.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.StartedAt.After(q.End) {
		return false
	}
	return true
}

// Store persists training run records.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// finish orders records by start time and applies the limit.
func finish(res []Record, limit int) []Record {
	sort.SliceStable(res, func(i, j int) bool { return res[i].StartedAt.Before(res[j].StartedAt) })
	if limit > 0 && len(res) > limit {
		res = res[len(res)-limit:]
	}
	return res
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
