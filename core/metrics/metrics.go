package metrics

import "time"

// TrainingEvent describes a finished training run.
type TrainingEvent struct {
	RunID     string
	Method    string
	Rows      int
	TrainRows int
	ValidRows int
	TestRows  int
	Threshold float64
	// Fallback is set when no operating point met the recall floor.
	Fallback bool
	Scores   map[string]float64
	Duration time.Duration
	Time     time.Time
}

// MetricsSink records training runs for observability purposes.
type MetricsSink interface {
	RecordTraining(ev TrainingEvent) error
}

// PredictionEvent is the verdict for one series or feature row.
type PredictionEvent struct {
	RunID       string
	Method      string
	Source      string
	Predictable bool
	Probability float64
	Time        time.Time
}

// PredictionRecorder records prediction verdicts.
type PredictionRecorder interface {
	RecordPredictions(evs []PredictionEvent) error
}

// Flusher is implemented by sinks that buffer events until flushed.
type Flusher interface {
	Flush() error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordTraining(TrainingEvent) error        { return nil }
func (NopSink) RecordPredictions([]PredictionEvent) error { return nil }
func (NopSink) Flush() error                              { return nil }
