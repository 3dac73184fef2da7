package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/predictability/core/metrics"
)

type Config struct {
	Model    ModelConfig    `json:"model"`
	Training TrainingConfig `json:"training"`
	Features FeaturesConfig `json:"features"`
	Metrics  metrics.Config `json:"metrics"`
	RunLog   RunLogConfig   `json:"runlog"`
	Logging  LoggingConfig  `json:"logging"`
	Sentry   SentryConfig   `json:"sentry"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{Training: DefaultTraining()}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills unset fields of every section.
func (c *Config) SetDefaults() {
	c.Model.SetDefaults()
	c.Training.SetDefaults()
	c.Features.SetDefaults()
	c.RunLog.SetDefaults()
	c.Logging.SetDefaults()
	c.Sentry.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Model.Validate(); err != nil {
		return fmt.Errorf("model: %w", err)
	}
	if err := c.Training.Validate(); err != nil {
		return fmt.Errorf("training: %w", err)
	}
	if err := c.Features.Validate(); err != nil {
		return fmt.Errorf("features: %w", err)
	}
	if err := c.RunLog.Validate(); err != nil {
		return fmt.Errorf("runlog: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Sentry.Validate(); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}

// Load reads the YAML or JSON file at path, applies K_ environment
// overrides (K_TRAINING__METHOD=KNN sets training.method) and validates the
// result. An empty path loads the defaults and the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := &Config{Training: DefaultTraining()}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
