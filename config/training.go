package config

import (
	"fmt"

	"github.com/kilianp07/predictability/core/classifier"
	"github.com/kilianp07/predictability/core/predictability"
)

// TrainingConfig maps onto predictability.TrainOptions.
type TrainingConfig struct {
	Method          string  `json:"method"`
	ValidSize       float64 `json:"valid_size"`
	TestSize        float64 `json:"test_size"`
	RecallThreshold float64 `json:"recall_threshold"`
	NEstimators     int     `json:"n_estimators"`
	NNeighbors      int     `json:"n_neighbors"`

	// Preprocess standardises features before training.
	Preprocess bool           `json:"preprocess"`
	Params     map[string]any `json:"params"`
}

// DefaultTraining mirrors predictability.DefaultTrainOptions. Fields missing
// from a configuration file keep these values, so test_size: 0 disables the
// test split.
func DefaultTraining() TrainingConfig {
	o := predictability.DefaultTrainOptions()
	return TrainingConfig{
		Method:          string(o.Method),
		ValidSize:       o.ValidSize,
		TestSize:        o.TestSize,
		RecallThreshold: o.RecallThreshold,
		NEstimators:     o.NEstimators,
		NNeighbors:      o.NNeighbors,
	}
}

func (c *TrainingConfig) SetDefaults() {
	if c.Method == "" {
		c.Method = string(classifier.MethodRandomForest)
	}
}

func (c TrainingConfig) Validate() error {
	if !classifier.IsSupported(classifier.Method(c.Method)) {
		return fmt.Errorf("unknown method %q, supported: %v", c.Method, classifier.Supported())
	}
	if c.ValidSize <= 0 || c.ValidSize >= 1 {
		return fmt.Errorf("valid_size must be in (0,1), got %v", c.ValidSize)
	}
	if c.RecallThreshold < 0 || c.RecallThreshold > 1 {
		return fmt.Errorf("recall_threshold must be in [0,1], got %v", c.RecallThreshold)
	}
	return nil
}

// Options converts the section into training options.
func (c TrainingConfig) Options() predictability.TrainOptions {
	return predictability.TrainOptions{
		Method:          classifier.Method(c.Method),
		ValidSize:       c.ValidSize,
		TestSize:        c.TestSize,
		RecallThreshold: c.RecallThreshold,
		NEstimators:     c.NEstimators,
		NNeighbors:      c.NNeighbors,
		Params:          c.Params,
	}
}
