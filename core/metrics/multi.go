package metrics

import "errors"

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordTraining forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordTraining(ev TrainingEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordTraining(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordPredictions forwards verdicts to the sinks able to record them.
func (m *MultiSink) RecordPredictions(evs []PredictionEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(PredictionRecorder); ok {
			if err := rec.RecordPredictions(evs); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes every buffering sink and joins their errors.
func (m *MultiSink) Flush() error {
	var errs []error
	for _, s := range m.Sinks {
		if f, ok := s.(Flusher); ok {
			errs = append(errs, f.Flush())
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink holding resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		Close(s)
	}
}
