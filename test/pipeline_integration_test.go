package test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/predictability/app"
	"github.com/kilianp07/predictability/config"
	"github.com/kilianp07/predictability/core/logger"
	"github.com/kilianp07/predictability/core/predictability"
	"github.com/kilianp07/predictability/core/runlog"
	"github.com/kilianp07/predictability/test/util"
)

func loadConfig(t *testing.T, dir, backend string) *config.Config {
	t.Helper()
	runs := filepath.Join(dir, "runs."+backend)
	data := fmt.Sprintf(`model:
  threshold: 0.3
  path: %s
  seed: 11
training:
  method: RandomForest
  n_estimators: 25
  valid_size: 0.2
  test_size: 0.2
  recall_threshold: 0.5
metrics:
  sinks:
    - type: prometheus
      conf:
        textfile: %s
runlog:
  backend: %s
  path: %s
logging:
  level: error
`, filepath.Join(dir, "model.gob"), filepath.Join(dir, "metrics.prom"), backend, runs)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

// TestPipeline trains, reloads and predicts through the service with every
// persistent run store.
func TestPipeline(t *testing.T) {
	for _, backend := range []string{"jsonl", "bolt", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			cfg := loadConfig(t, dir, backend)
			meta, err := util.WriteMetadata(dir, 80)
			require.NoError(t, err)

			svc, err := app.New(cfg, app.WithLogger(logger.NopLogger{}))
			require.NoError(t, err)
			res, err := svc.Train(context.Background(), app.TrainRequest{
				MetadataPath: meta,
				ModelPath:    cfg.Model.Path,
				Options:      cfg.Training.Options(),
			})
			require.NoError(t, err)
			assert.Equal(t, 80, res.Report.Rows)
			assert.Contains(t, res.Scores, "f1")

			frame := predictability.Frame{"y_acf1": {-0.6, 0.7}, "trend_slope": {-0.12, 0.13}}
			verdicts, err := svc.PredictFeatures(context.Background(), cfg.Model.Path, frame)
			require.NoError(t, err)
			require.Len(t, verdicts, 2)
			assert.True(t, verdicts[0].Predictable)
			assert.False(t, verdicts[1].Predictable)
			require.NoError(t, svc.Close())

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			require.NoError(t, util.WaitForFile(ctx, filepath.Join(dir, "metrics.prom"), "predictability_predictions_total"))

			// A fresh service sees the run recorded by the first one.
			svc, err = app.New(cfg, app.WithLogger(logger.NopLogger{}))
			require.NoError(t, err)
			defer svc.Close()
			recs, err := svc.Runs(context.Background(), runlog.Query{Method: "RandomForest"})
			require.NoError(t, err)
			require.Len(t, recs, 1)
			assert.Equal(t, res.Report.RunID, recs[0].RunID)
			assert.Equal(t, cfg.Model.Path, recs[0].ModelPath)
		})
	}
}
