package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/predictability/core/classifier"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `model:
  threshold: 0.3
  path: "out/model.gob"
  seed: 42
training:
  method: "KNN"
  valid_size: 0.2
  test_size: 0
  n_neighbors: 7
  preprocess: true
  params:
    weights: "distance"
features:
  window_size: 12
metrics:
  sinks:
    - type: "nop"
runlog:
  backend: "bolt"
logging:
  level: "debug"
  format: "console"
sentry:
  dsn: "https://key@sentry.example/1"
  traces_sample_rate: 0.5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"model.threshold", cfg.Model.Threshold, 0.3},
		{"model.path", cfg.Model.Path, "out/model.gob"},
		{"model.seed", cfg.Model.Seed, int64(42)},
		{"training.method", cfg.Training.Method, "KNN"},
		{"training.valid_size", cfg.Training.ValidSize, 0.2},
		{"training.test_size", cfg.Training.TestSize, 0.0},
		{"training.recall_threshold", cfg.Training.RecallThreshold, 0.7},
		{"training.n_neighbors", cfg.Training.NNeighbors, 7},
		{"training.n_estimators", cfg.Training.NEstimators, 500},
		{"training.preprocess", cfg.Training.Preprocess, true},
		{"training.params.weights", cfg.Training.Params["weights"], "distance"},
		{"features.window_size", cfg.Features.WindowSize, 12},
		{"features.bins", cfg.Features.Bins, 10},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"runlog.backend", cfg.RunLog.Backend, "bolt"},
		{"runlog.path", cfg.RunLog.Path, "runs.db"},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"logging.format", cfg.Logging.Format, "console"},
		{"sentry.dsn", cfg.Sentry.DSN, "https://key@sentry.example/1"},
		{"sentry.environment", cfg.Sentry.Environment, "production"},
		{"sentry.traces_sample_rate", cfg.Sentry.TracesSampleRate, 0.5},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoad_JSONAndEnvOverride(t *testing.T) {
	path := writeFile(t, "config.json", `{"training": {"method": "GBDT"}, "model": {"threshold": 0.25}}`)
	t.Setenv("K_TRAINING__METHOD", "NaiveBayes")
	t.Setenv("K_TRAINING__VALID_SIZE", "0.3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "NaiveBayes", cfg.Training.Method)
	assert.Equal(t, 0.3, cfg.Training.ValidSize)
	assert.Equal(t, 0.25, cfg.Model.Threshold)

	opts := cfg.Training.Options()
	assert.Equal(t, classifier.MethodNaiveBayes, opts.Method)
	assert.Equal(t, 0.1, opts.TestSize)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "RandomForest", cfg.Training.Method)
	assert.Equal(t, 0.2, cfg.Model.Threshold)
	assert.Equal(t, "jsonl", cfg.RunLog.Backend)
	assert.Equal(t, "runs.jsonl", cfg.RunLog.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"method":     "training:\n  method: SVM\n",
		"valid_size": "training:\n  valid_size: 1.5\n",
		"recall":     "training:\n  recall_threshold: 2\n",
		"threshold":  "model:\n  threshold: -1\n",
		"backend":    "runlog:\n  backend: postgres\n",
		"level":      "logging:\n  level: loud\n",
		"format":     "logging:\n  format: xml\n",
		"sampling":   "sentry:\n  traces_sample_rate: 3\n",
		"sink":       "metrics:\n  sinks:\n    - conf: {}\n",
		"window":     "features:\n  window_size: 1\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yml", data))
			assert.Error(t, err)
		})
	}

	_, err := Load(writeFile(t, "config.toml", ""))
	assert.ErrorContains(t, err, "unsupported config format")
}
