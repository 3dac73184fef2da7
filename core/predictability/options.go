package predictability

import (
	"math/rand"
	"time"

	"github.com/kilianp07/predictability/core/features"
	"github.com/kilianp07/predictability/core/logger"
)

// DefaultThreshold is the forecasting error above which a series is
// considered unpredictable.
const DefaultThreshold = 0.2

// MinRecords is the smallest usable metadata size; anything at or below
// it is rejected.
const MinRecords = 30

// Option configures a Model.
type Option func(*Model)

// WithThreshold sets the forecasting error threshold used to derive labels.
func WithThreshold(t float64) Option {
	return func(m *Model) { m.threshold = t }
}

// WithLogger sets the logger used for warnings and progress messages.
func WithLogger(l logger.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithExtractor sets the feature extractor used by Predict.
func WithExtractor(e features.Extractor) Option {
	return func(m *Model) {
		if e != nil {
			m.extractor = e
		}
	}
}

// WithSeed makes splits and randomised classifiers reproducible.
func WithSeed(seed int64) Option {
	return func(m *Model) { m.rng = rand.New(rand.NewSource(seed)) }
}

func defaultModel() *Model {
	return &Model{
		threshold: DefaultThreshold,
		log:       logger.NopLogger{},
		extractor: features.NewStatExtractor(features.DefaultStatConfig()),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand sets the random source used for splits and classifier seeds.
func WithRand(r *rand.Rand) Option {
	return func(m *Model) {
		if r != nil {
			m.rng = r
		}
	}
}
