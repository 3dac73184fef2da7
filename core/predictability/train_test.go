package predictability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/predictability/core/classifier"
)

func fastOptions(method classifier.Method) TrainOptions {
	opts := DefaultTrainOptions()
	opts.Method = method
	opts.NEstimators = 25
	if method == classifier.MethodGBDT {
		opts.Params = map[string]any{"n_estimators": 20}
	}
	return opts
}

func newSampleModel(t *testing.T, opts ...Option) *Model {
	t.Helper()
	m, err := New(sampleRecords(40), append([]Option{WithSeed(7)}, opts...)...)
	require.NoError(t, err)
	return m
}

func TestDefaultTrainOptions(t *testing.T) {
	opts := DefaultTrainOptions()
	assert.Equal(t, classifier.MethodRandomForest, opts.Method)
	assert.Equal(t, 0.1, opts.ValidSize)
	assert.Equal(t, 0.1, opts.TestSize)
	assert.Equal(t, 0.7, opts.RecallThreshold)
	assert.Equal(t, 500, opts.NEstimators)
	assert.Equal(t, 5, opts.NNeighbors)
}

func TestTrain_RejectsBadOptions(t *testing.T) {
	m := newSampleModel(t)
	tests := []struct {
		name string
		mod  func(*TrainOptions)
		msg  string
	}{
		{"method", func(o *TrainOptions) { o.Method = "SVM" }, "only support RandomForest, GBDT, KNN, and NaiveBayes"},
		{"valid zero", func(o *TrainOptions) { o.ValidSize = 0 }, "valid_size"},
		{"valid one", func(o *TrainOptions) { o.ValidSize = 1 }, "valid_size"},
		{"valid tiny", func(o *TrainOptions) { o.ValidSize = 0.01 }, "no validation rows"},
		{"unknown param", func(o *TrainOptions) { o.Params = map[string]any{"depth": 3} }, "depth"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := fastOptions(classifier.MethodRandomForest)
			tc.mod(&opts)
			_, err := m.Train(opts)
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Contains(t, err.Error(), tc.msg)
			assert.False(t, m.Trained())
		})
	}
}

func TestTrain_AllMethods(t *testing.T) {
	for _, method := range classifier.Supported() {
		t.Run(string(method), func(t *testing.T) {
			m := newSampleModel(t)
			require.NoError(t, m.Preprocess())
			scores, err := m.Train(fastOptions(method))
			require.NoError(t, err)
			assert.True(t, m.Trained())
			assert.Equal(t, method, m.Method())
			assert.NotEmpty(t, m.RunID())
			for _, k := range []string{"accuracy", "precision", "recall", "f1"} {
				require.Contains(t, scores, k)
				assert.GreaterOrEqual(t, scores[k], 0.0)
				assert.LessOrEqual(t, scores[k], 1.0)
			}
		})
	}
}

func TestTrain_NaiveBayesScenario(t *testing.T) {
	m := newSampleModel(t)
	opts := DefaultTrainOptions()
	opts.Method = classifier.MethodNaiveBayes
	opts.ValidSize = 0.2
	opts.TestSize = 0.2

	scores, err := m.Train(opts)
	require.NoError(t, err)
	assert.Len(t, scores, 4)
	for _, k := range []string{"accuracy", "precision", "recall", "f1"} {
		assert.GreaterOrEqual(t, scores[k], 0.0, k)
		assert.LessOrEqual(t, scores[k], 1.0, k)
	}

	rep := m.LastReport()
	require.NotNil(t, rep)
	assert.Equal(t, 40, rep.Rows)
	assert.Equal(t, 8, rep.ValidRows)
	assert.Equal(t, 8, rep.TestRows)
	assert.Equal(t, 24, rep.TrainRows)
	assert.Equal(t, m.DecisionThreshold(), rep.Threshold)
}

func TestTrain_TestSizeOutOfRange(t *testing.T) {
	for _, size := range []float64{-0.1, 1, 1.5, 0.95} {
		log := &recordingLogger{}
		m := newSampleModel(t, WithLogger(log))
		opts := fastOptions(classifier.MethodKNN)
		opts.TestSize = size

		scores, err := m.Train(opts)
		require.NoError(t, err, "test_size %v", size)
		assert.Empty(t, scores)
		assert.True(t, m.Trained())
		assert.Equal(t, 40, m.LastReport().TrainRows, "all rows are used for training")
		assert.Zero(t, m.LastReport().TestRows)
	}
}

func TestTrain_ThresholdFallback(t *testing.T) {
	log := &recordingLogger{}
	m := newSampleModel(t, WithLogger(log))
	opts := fastOptions(classifier.MethodNaiveBayes)
	opts.RecallThreshold = 1.1

	_, err := m.Train(opts)
	require.NoError(t, err)
	assert.Equal(t, 0.5, m.DecisionThreshold())
	assert.True(t, m.LastReport().Fallback)
	require.NotEmpty(t, log.warns)
	assert.Contains(t, log.warns[len(log.warns)-1], "falling back to 0.5")
}

func TestTrain_ZeroRecallFloorFallsBack(t *testing.T) {
	m := newSampleModel(t)
	opts := fastOptions(classifier.MethodNaiveBayes)
	opts.RecallThreshold = 0

	_, err := m.Train(opts)
	require.NoError(t, err)
	assert.Equal(t, 0.5, m.DecisionThreshold())
	assert.True(t, m.LastReport().Fallback)
}

func TestTrain_OverwritesState(t *testing.T) {
	m := newSampleModel(t)
	_, err := m.Train(fastOptions(classifier.MethodKNN))
	require.NoError(t, err)
	first := m.RunID()

	_, err = m.Train(fastOptions(classifier.MethodNaiveBayes))
	require.NoError(t, err)
	assert.Equal(t, classifier.MethodNaiveBayes, m.Method())
	assert.NotEqual(t, first, m.RunID())
}

func TestTrain_SeedIsReproducible(t *testing.T) {
	run := func() (float64, []float64) {
		m := newSampleModel(t)
		_, err := m.Train(fastOptions(classifier.MethodRandomForest))
		require.NoError(t, err)
		p, err := m.PredictProba(Rows{{1, 1.2, 0.3}, {1, -0.8, 0.1}})
		require.NoError(t, err)
		return m.DecisionThreshold(), p
	}
	t1, p1 := run()
	t2, p2 := run()
	assert.Equal(t, t1, t2)
	assert.Equal(t, p1, p2)
}

func TestTrain_RequiresData(t *testing.T) {
	m := NewForLoad()
	_, err := m.Train(DefaultTrainOptions())
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestClassifierParams(t *testing.T) {
	m := newSampleModel(t)

	p := m.classifierParams(TrainOptions{Method: classifier.MethodRandomForest, NEstimators: 10})
	assert.Equal(t, 10, p["n_estimators"])
	assert.Contains(t, p, "random_state")

	p = m.classifierParams(TrainOptions{Method: classifier.MethodRandomForest, NEstimators: 10,
		Params: map[string]any{"n_estimators": 3, "random_state": 1}})
	assert.Equal(t, 3, p["n_estimators"], "params win over options")
	assert.Equal(t, 1, p["random_state"])

	p = m.classifierParams(TrainOptions{Method: classifier.MethodKNN, NNeighbors: 3, NEstimators: 10})
	assert.Equal(t, map[string]any{"n_neighbors": 3}, p)

	p = m.classifierParams(TrainOptions{Method: classifier.MethodNaiveBayes})
	assert.Empty(t, p)
}
