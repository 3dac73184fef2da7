package predictability

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/predictability/core/classifier"
)

// State is the persisted form of a trained Model.
type State struct {
	Threshold         float64
	Columns           []string
	Features          *mat.Dense
	Labels            []int
	Mean              []float64
	Std               []float64
	Rescale           bool
	Classifier        classifier.Classifier
	DecisionThreshold float64
	Method            classifier.Method
	RunID             string
	TrainedAt         time.Time
}

// Validate checks that s can back a Model.
func (s *State) Validate() error {
	if s.Classifier == nil {
		return errors.New("state has no classifier")
	}
	if s.Classifier.Method() != s.Method {
		return fmt.Errorf("classifier is %s but state records %s", s.Classifier.Method(), s.Method)
	}
	if len(s.Columns) == 0 {
		return errors.New("state has no feature columns")
	}
	if len(s.Mean) != len(s.Columns) || len(s.Std) != len(s.Columns) {
		return fmt.Errorf("statistics width %d/%d does not match %d columns", len(s.Mean), len(s.Std), len(s.Columns))
	}
	for j, sd := range s.Std {
		if sd == 0 || math.IsNaN(sd) {
			return fmt.Errorf("invalid std for column %q", s.Columns[j])
		}
	}
	if s.Features != nil {
		r, c := s.Features.Dims()
		if c != len(s.Columns) {
			return fmt.Errorf("feature matrix has %d columns, want %d", c, len(s.Columns))
		}
		if r != len(s.Labels) {
			return fmt.Errorf("feature matrix has %d rows for %d labels", r, len(s.Labels))
		}
	}
	if math.IsNaN(s.DecisionThreshold) || math.IsInf(s.DecisionThreshold, 0) {
		return fmt.Errorf("decision threshold %v is not finite", s.DecisionThreshold)
	}
	if math.IsNaN(s.Threshold) || math.IsInf(s.Threshold, 0) {
		return fmt.Errorf("threshold %v is not finite", s.Threshold)
	}
	return nil
}

func (m *Model) state() *State {
	return &State{
		Threshold:         m.threshold,
		Columns:           m.columns,
		Features:          m.features,
		Labels:            m.labels,
		Mean:              m.mean,
		Std:               m.std,
		Rescale:           m.rescale,
		Classifier:        m.clf,
		DecisionThreshold: m.clfThreshold,
		Method:            m.method,
		RunID:             m.runID,
		TrainedAt:         m.trainedAt,
	}
}

func (m *Model) adopt(s *State) {
	m.threshold = s.Threshold
	m.columns = s.Columns
	m.features = s.Features
	m.labels = s.Labels
	m.mean = s.Mean
	m.std = s.Std
	m.rescale = s.Rescale
	m.clf = s.Classifier
	m.clfThreshold = s.DecisionThreshold
	m.method = s.Method
	m.runID = s.RunID
	m.trainedAt = s.TrainedAt
	m.skipped = nil
	m.report = nil
}

// Encode writes the trained state of m to w.
func (m *Model) Encode(w io.Writer) error {
	if m.clf == nil {
		return invalidf("please train the model first")
	}
	if err := gob.NewEncoder(w).Encode(m.state()); err != nil {
		return fmt.Errorf("encode model state: %w", err)
	}
	return nil
}

// Decode replaces the state of m with the one read from r. On failure m is
// left unchanged.
func (m *Model) Decode(r io.Reader) error {
	var s State
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return invalidf("fail to load model with exception msg: %v", err)
	}
	if err := s.Validate(); err != nil {
		return invalidf("fail to load model with exception msg: %v", err)
	}
	m.adopt(&s)
	return nil
}

// Save writes the trained state to path. The file is replaced atomically.
func (m *Model) Save(path string) error {
	if m.clf == nil {
		return invalidf("please train the model first")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := m.Encode(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close model file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write model file: %w", err)
	}
	m.log.Infof("saved %s model %s to %s", m.method, m.runID, path)
	return nil
}

// Load replaces the state of m with the one stored at path.
func (m *Model) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return invalidf("fail to load model with exception msg: %v", err)
	}
	defer f.Close()
	if err := m.Decode(f); err != nil {
		return err
	}
	m.log.Infof("loaded %s model %s from %s", m.method, m.runID, path)
	return nil
}

// TrainedAt returns when the current trained state was produced.
func (m *Model) TrainedAt() time.Time { return m.trainedAt }
