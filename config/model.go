package config

import (
	"fmt"
	"math"

	"github.com/kilianp07/predictability/core/features"
	"github.com/kilianp07/predictability/core/predictability"
)

// ModelConfig holds the settings shared by training and prediction.
type ModelConfig struct {
	// Threshold is the forecasting error above which a series is unpredictable.
	Threshold float64 `json:"threshold"`
	// Path is where the trained model is saved and loaded from.
	Path string `json:"path"`
	// Seed makes splits and ensembles reproducible; 0 picks a random seed.
	Seed int64 `json:"seed"`
}

func (c *ModelConfig) SetDefaults() {
	if c.Threshold == 0 {
		c.Threshold = predictability.DefaultThreshold
	}
	if c.Path == "" {
		c.Path = "model.gob"
	}
}

func (c ModelConfig) Validate() error {
	if c.Threshold <= 0 || math.IsInf(c.Threshold, 0) || math.IsNaN(c.Threshold) {
		return fmt.Errorf("threshold must be a positive number, got %v", c.Threshold)
	}
	return nil
}

// FeaturesConfig tunes the statistical feature extractor.
type FeaturesConfig struct {
	WindowSize int `json:"window_size"`
	Bins       int `json:"bins"`
}

func (c *FeaturesConfig) SetDefaults() {
	d := features.DefaultStatConfig()
	if c.WindowSize == 0 {
		c.WindowSize = d.WindowSize
	}
	if c.Bins == 0 {
		c.Bins = d.Bins
	}
}

func (c FeaturesConfig) Validate() error {
	if c.WindowSize < 2 {
		return fmt.Errorf("window_size must be at least 2, got %d", c.WindowSize)
	}
	if c.Bins < 1 {
		return fmt.Errorf("bins must be positive, got %d", c.Bins)
	}
	return nil
}

// StatConfig converts the section for the feature extractor.
func (c FeaturesConfig) StatConfig() features.StatConfig {
	return features.StatConfig{WindowSize: c.WindowSize, Bins: c.Bins}
}
