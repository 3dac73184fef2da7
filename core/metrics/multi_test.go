package metrics

import (
	"errors"
	"testing"
)

type recordSink struct {
	count    int
	flushed  int
	flushErr error
}

func (r *recordSink) RecordTraining(TrainingEvent) error {
	r.count++
	return nil
}

func (r *recordSink) RecordPredictions([]PredictionEvent) error {
	r.count++
	return nil
}

func (r *recordSink) Flush() error {
	r.flushed++
	return r.flushErr
}

type trainingOnly struct{ count int }

func (r *trainingOnly) RecordTraining(TrainingEvent) error {
	r.count++
	return nil
}

// TestMultiSink ensures events are forwarded to all sinks.
func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	s3 := &trainingOnly{}
	m := NewMultiSink(s1, s2, s3)
	if err := m.RecordTraining(TrainingEvent{RunID: "r1"}); err != nil {
		t.Fatalf("record training: %v", err)
	}
	if err := m.RecordPredictions([]PredictionEvent{{Predictable: true}}); err != nil {
		t.Fatalf("record predictions: %v", err)
	}
	if s1.count != 2 || s2.count != 2 {
		t.Fatalf("events not forwarded")
	}
	if s3.count != 1 {
		t.Fatalf("expected training-only sink to see 1 event, got %d", s3.count)
	}
}

func TestMultiSink_FlushJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{flushErr: boom}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2, &trainingOnly{})
	err := m.Flush()
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if s1.flushed != 1 || s2.flushed != 1 {
		t.Fatalf("flush not forwarded")
	}
}

func TestHelpers_SkipUnsupportedSinks(t *testing.T) {
	s := &trainingOnly{}
	if err := RecordPredictions(s, []PredictionEvent{{}}); err != nil {
		t.Fatalf("record predictions: %v", err)
	}
	if err := Flush(s); err != nil {
		t.Fatalf("flush: %v", err)
	}
	r := &recordSink{}
	if err := RecordPredictions(r, nil); err != nil || r.count != 1 {
		t.Fatalf("expected forwarding to recorder, count=%d err=%v", r.count, err)
	}
}

type closingSink struct {
	trainingOnly
	closed bool
}

func (c *closingSink) Close() { c.closed = true }

func TestMultiSink_Close(t *testing.T) {
	c := &closingSink{}
	NewMultiSink(&recordSink{}, c).Close()
	if !c.closed {
		t.Fatalf("close not forwarded")
	}
	Close(NopSink{})
}
