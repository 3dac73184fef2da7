package predictability

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/predictability/core/classifier"
	"github.com/kilianp07/predictability/core/evaluation"
)

// fallbackThreshold is used when no operating point meets the recall floor.
const fallbackThreshold = 0.5

// TrainOptions controls a training run.
type TrainOptions struct {
	Method          classifier.Method
	ValidSize       float64
	TestSize        float64
	RecallThreshold float64
	// NEstimators feeds RandomForest and NNeighbors feeds KNN unless Params
	// sets the same key.
	NEstimators int
	NNeighbors  int
	Params      map[string]any
}

// DefaultTrainOptions returns the options used when the caller has no
// preference.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Method:          classifier.MethodRandomForest,
		ValidSize:       0.1,
		TestSize:        0.1,
		RecallThreshold: 0.7,
		NEstimators:     500,
		NNeighbors:      5,
	}
}

// TrainingReport summarises a training run.
type TrainingReport struct {
	RunID     string             `json:"run_id"`
	Method    classifier.Method  `json:"method"`
	StartedAt time.Time          `json:"started_at"`
	Duration  time.Duration      `json:"duration"`
	Rows      int                `json:"rows"`
	TrainRows int                `json:"train_rows"`
	ValidRows int                `json:"valid_rows"`
	TestRows  int                `json:"test_rows"`
	Threshold float64            `json:"threshold"`
	Fallback  bool               `json:"fallback"`
	Scores    map[string]float64 `json:"scores,omitempty"`
}

// Train fits a classifier of opts.Method and picks the probability cutoff
// that maximises validation precision subject to the recall floor. When a
// test split is carved out, its accuracy, precision, recall and f1 are
// returned; otherwise the map is empty. A successful run replaces any prior
// trained state.
func (m *Model) Train(opts TrainOptions) (map[string]float64, error) {
	if !classifier.IsSupported(opts.Method) {
		return nil, invalidf("only support RandomForest, GBDT, KNN, and NaiveBayes method, got %q", opts.Method)
	}
	if !(opts.ValidSize > 0 && opts.ValidSize < 1) {
		return nil, invalidf("valid_size should be in (0,1), got %v", opts.ValidSize)
	}
	if m.features == nil {
		return nil, invalidf("no training data, the model was initialised for loading")
	}
	if !(opts.TestSize >= 0 && opts.TestSize < 1) {
		m.log.Warnf("test_size should be in [0,1), got %v; skipping test scores", opts.TestSize)
		opts.TestSize = 0
	}

	started := time.Now()
	n := len(m.labels)
	nValid := int(float64(n) * opts.ValidSize)
	if nValid == 0 {
		return nil, invalidf("valid_size %v leaves no validation rows out of %d", opts.ValidSize, n)
	}
	trainIdx, validIdx, err := evaluation.Split(n, nValid, m.rng)
	if err != nil {
		return nil, invalidf("%v", err)
	}

	var testIdx []int
	nTest := int(float64(n) * opts.TestSize)
	if opts.TestSize > 0 && opts.TestSize < 1-opts.ValidSize && nTest > 0 && nTest < len(trainIdx) {
		rest, held, err := evaluation.Split(len(trainIdx), nTest, m.rng)
		if err != nil {
			return nil, invalidf("%v", err)
		}
		testIdx = evaluation.SubsetIndices(trainIdx, held)
		trainIdx = evaluation.SubsetIndices(trainIdx, rest)
	} else {
		m.log.Infof("no usable test split (test_size=%v), training on all %d rows", opts.TestSize, n)
		trainIdx = allRows(n)
	}

	clf, err := classifier.New(opts.Method, m.classifierParams(opts))
	if err != nil {
		return nil, invalidf("%v", err)
	}
	xTrain, yTrain := m.subset(trainIdx)
	if err := clf.Fit(xTrain, yTrain); err != nil {
		return nil, invalidf("fit %s: %v", opts.Method, err)
	}

	xValid, yValid := m.subset(validIdx)
	proba, err := clf.PredictProba(xValid)
	if err != nil {
		return nil, invalidf("validate %s: %v", opts.Method, err)
	}
	threshold, fallback := m.selectThreshold(yValid, proba, opts.RecallThreshold)

	scores := map[string]float64{}
	if len(testIdx) > 0 {
		xTest, yTest := m.subset(testIdx)
		p, err := clf.PredictProba(xTest)
		if err != nil {
			return nil, invalidf("test %s: %v", opts.Method, err)
		}
		pred := make([]int, len(p))
		for i, v := range p {
			if v > threshold {
				pred[i] = 1
			}
		}
		s, err := evaluation.BinaryScores(yTest, pred)
		if err != nil {
			return nil, invalidf("%v", err)
		}
		scores = s.Map()
	}

	m.clf = clf
	m.clfThreshold = threshold
	m.method = opts.Method
	m.runID = uuid.NewString()
	m.trainedAt = started.UTC()
	m.report = &TrainingReport{
		RunID:     m.runID,
		Method:    opts.Method,
		StartedAt: m.trainedAt,
		Duration:  time.Since(started),
		Rows:      n,
		TrainRows: len(trainIdx),
		ValidRows: len(validIdx),
		TestRows:  len(testIdx),
		Threshold: threshold,
		Fallback:  fallback,
		Scores:    copyScores(scores),
	}
	m.log.Debugw("training finished", map[string]any{
		"run_id":    m.runID,
		"method":    string(opts.Method),
		"threshold": threshold,
		"train":     len(trainIdx),
		"valid":     len(validIdx),
		"test":      len(testIdx),
	})
	return scores, nil
}

// selectThreshold reports the chosen cutoff and whether the fallback was
// used.
func (m *Model) selectThreshold(y []int, proba []float64, floor float64) (float64, bool) {
	curve, err := evaluation.PrecisionRecallCurve(y, proba)
	if err == nil {
		var t float64
		if t, err = evaluation.SelectThreshold(curve, floor); err == nil && !math.IsNaN(t) {
			return t, false
		}
	}
	m.log.Warnf("failed to choose the optimal threshold (%v), falling back to %v", err, fallbackThreshold)
	return fallbackThreshold, true
}

// classifierParams layers the training options over the method defaults.
// Randomised variants get a seed from the model rng unless one was given.
func (m *Model) classifierParams(opts TrainOptions) map[string]any {
	params := make(map[string]any, len(opts.Params)+2)
	switch opts.Method {
	case classifier.MethodRandomForest:
		if opts.NEstimators > 0 {
			params["n_estimators"] = opts.NEstimators
		}
	case classifier.MethodKNN:
		if opts.NNeighbors > 0 {
			params["n_neighbors"] = opts.NNeighbors
		}
	}
	for k, v := range opts.Params {
		params[k] = v
	}
	if _, ok := classifier.Defaults(opts.Method)["random_state"]; ok {
		if _, set := params["random_state"]; !set {
			params["random_state"] = m.rng.Int63()
		}
	}
	return params
}

func (m *Model) subset(idx []int) (*mat.Dense, []int) {
	_, c := m.features.Dims()
	x := mat.NewDense(len(idx), c, nil)
	y := make([]int, len(idx))
	for i, r := range idx {
		x.SetRow(i, m.features.RawRowView(r))
		y[i] = m.labels[r]
	}
	return x, y
}

func allRows(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func copyScores(s map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (r TrainingReport) String() string {
	return fmt.Sprintf("run %s: %s on %d rows (train %d, valid %d, test %d), threshold %.4f",
		r.RunID, r.Method, r.Rows, r.TrainRows, r.ValidRows, r.TestRows, r.Threshold)
}
