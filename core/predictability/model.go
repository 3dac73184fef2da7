package predictability

import (
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/predictability/core/classifier"
	"github.com/kilianp07/predictability/core/features"
	"github.com/kilianp07/predictability/core/logger"
	"github.com/kilianp07/predictability/core/metadata"
)

// Model is the predictability meta-learner. It is not safe for concurrent
// use.
type Model struct {
	threshold float64

	columns  []string
	features *mat.Dense
	labels   []int
	mean     []float64
	std      []float64
	rescale  bool

	clf          classifier.Classifier
	clfThreshold float64
	method       classifier.Method
	runID        string
	trainedAt    time.Time

	skipped []SkippedRecord
	report  *TrainingReport

	log       logger.Logger
	extractor features.Extractor
	rng       *rand.Rand
}

// New builds a Model from historical metadata. It needs more than
// MinRecords records, the first of which must carry hpt_res, features and
// best_model.
func New(records []metadata.Record, opts ...Option) (*Model, error) {
	m := defaultModel()
	for _, o := range opts {
		o(m)
	}
	if records == nil {
		return nil, invalidf("please input meta data to initialize this class")
	}
	if len(records) <= MinRecords {
		return nil, invalidf("dataset is too small to train a meta learner: %d records", len(records))
	}
	switch records[0].Missing() {
	case metadata.KeyHPTRes:
		return nil, invalidf("missing best hyper-params, not able to train a meta learner")
	case metadata.KeyFeatures:
		return nil, invalidf("missing time series features, not able to train a meta learner")
	case metadata.KeyBestModel:
		return nil, invalidf("missing best models, not able to train a meta learner")
	}
	m.reorganize(records)
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewForLoad returns an empty Model whose state is expected to come from
// Load. Nothing is trained or validated.
func NewForLoad(opts ...Option) *Model {
	m := defaultModel()
	for _, o := range opts {
		o(m)
	}
	m.log.Infof("model initialised without meta data, load a pretrained model with Load")
	return m
}

// reorganize turns the records into the feature matrix, binary labels and
// column statistics. Records that cannot be parsed are skipped.
func (m *Model) reorganize(records []metadata.Record) {
	var (
		rows    []map[string]float64
		errs    []float64
		columns []string
		seen    = make(map[string]int)
	)
	m.skipped = nil
	for i, rec := range records {
		feats, err := rec.OrderedFeatures()
		if err != nil {
			m.skip(i, err)
			continue
		}
		best, err := rec.BestError()
		if err != nil {
			m.skip(i, err)
			continue
		}
		row := make(map[string]float64, len(feats))
		for _, f := range feats {
			if _, ok := seen[f.Name]; !ok {
				seen[f.Name] = len(columns)
				columns = append(columns, f.Name)
			}
			row[f.Name] = f.Value
		}
		rows = append(rows, row)
		errs = append(errs, best)
	}

	m.columns = columns
	m.labels = make([]int, len(errs))
	for i, e := range errs {
		if e > m.threshold {
			m.labels[i] = 1
		}
	}
	m.features = nil
	m.mean, m.std = nil, nil
	if len(rows) == 0 || len(columns) == 0 {
		return
	}

	m.features = mat.NewDense(len(rows), len(columns), nil)
	for i, row := range rows {
		for name, v := range row {
			if math.IsNaN(v) {
				continue
			}
			m.features.Set(i, seen[name], v)
		}
	}
	m.mean, m.std = columnStats(m.features)
}

func (m *Model) skip(i int, err error) {
	m.log.Warnf("skipping metadata record %d: %v", i, err)
	m.skipped = append(m.skipped, SkippedRecord{Index: i, Err: err})
}

// columnStats returns per-column means and population standard deviations,
// with zero deviations replaced by one.
func columnStats(x *mat.Dense) (mean, std []float64) {
	r, c := x.Dims()
	mean = make([]float64, c)
	std = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, x)
		mu, v := stat.PopMeanVariance(col, nil)
		mean[j] = mu
		std[j] = math.Sqrt(v)
		if std[j] == 0 {
			std[j] = 1
		}
	}
	return mean, std
}

// validate checks that both classes are present and enough rows survived.
func (m *Model) validate() error {
	distinct := make(map[int]struct{}, 2)
	for _, l := range m.labels {
		distinct[l] = struct{}{}
	}
	if len(distinct) == 1 {
		return invalidf("only one type of time series data and cannot train a classifier")
	}
	if len(m.labels) <= MinRecords || m.features == nil {
		return invalidf("dataset is too small to train a meta learner: %d usable records", len(m.labels))
	}
	return nil
}

// Preprocess standardises the stored features to zero mean and unit
// variance and makes later predictions apply the same transform. It is
// meant to be called once, before Train: a second call standardises the
// already standardised matrix again.
func (m *Model) Preprocess() error {
	if m.features == nil {
		return invalidf("no feature data to preprocess")
	}
	m.rescale = true
	r, c := m.features.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.features.Set(i, j, (m.features.At(i, j)-m.mean[j])/m.std[j])
		}
	}
	return nil
}

// Threshold returns the forecasting error threshold.
func (m *Model) Threshold() float64 { return m.threshold }

// Columns returns the feature names in matrix column order.
func (m *Model) Columns() []string { return append([]string(nil), m.columns...) }

// Labels returns the binary labels, 1 meaning the best error exceeds the
// threshold.
func (m *Model) Labels() []int { return append([]int(nil), m.labels...) }

// Features returns a copy of the feature matrix, or nil when the model holds
// no training data.
func (m *Model) Features() *mat.Dense {
	if m.features == nil {
		return nil
	}
	return mat.DenseCopyOf(m.features)
}

// Mean returns the per-column feature means.
func (m *Model) Mean() []float64 { return append([]float64(nil), m.mean...) }

// Std returns the per-column feature standard deviations; zeros are stored
// as one.
func (m *Model) Std() []float64 { return append([]float64(nil), m.std...) }

// Preprocessed reports whether Preprocess was applied.
func (m *Model) Preprocessed() bool { return m.rescale }

// Skipped lists the metadata records dropped during construction.
func (m *Model) Skipped() []SkippedRecord { return append([]SkippedRecord(nil), m.skipped...) }

// Trained reports whether a classifier is available for prediction.
func (m *Model) Trained() bool { return m.clf != nil }

// Method returns the classifier method of the trained state.
func (m *Model) Method() classifier.Method { return m.method }

// DecisionThreshold returns the probability cutoff chosen during training.
func (m *Model) DecisionThreshold() float64 { return m.clfThreshold }

// RunID identifies the training run that produced the current state.
func (m *Model) RunID() string { return m.runID }

// LastReport returns the report of the most recent Train call on this
// instance, or nil.
func (m *Model) LastReport() *TrainingReport { return m.report }
