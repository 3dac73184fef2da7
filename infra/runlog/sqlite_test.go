package runlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/predictability/core/factory"
	"github.com/kilianp07/predictability/core/runlog"
)

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.sqlite")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, r := range []runlog.Record{
		{RunID: "late", Method: "KNN", StartedAt: base.Add(2 * time.Hour)},
		{RunID: "early", Method: "GBDT", StartedAt: base, Scores: map[string]float64{"f1": 0.5}},
		{RunID: "mid", Method: "KNN", StartedAt: base.Add(time.Hour)},
	} {
		require.NoError(t, s.Append(ctx, r))
	}

	all, err := s.Query(ctx, runlog.Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"early", "mid", "late"}, []string{all[0].RunID, all[1].RunID, all[2].RunID})
	assert.Equal(t, 0.5, all[0].Scores["f1"])
	assert.True(t, all[0].StartedAt.Equal(base))

	ranged, err := s.Query(ctx, runlog.Query{Start: base.Add(time.Minute), End: base.Add(90 * time.Minute)})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "mid", ranged[0].RunID)

	knn, err := s.Query(ctx, runlog.Query{Method: "KNN", Limit: 1})
	require.NoError(t, err)
	require.Len(t, knn, 1)
	assert.Equal(t, "late", knn[0].RunID)

	// same run ID replaces the stored run
	require.NoError(t, s.Append(ctx, runlog.Record{RunID: "mid", Method: "NaiveBayes", StartedAt: base.Add(time.Hour)}))
	nb, err := s.Query(ctx, runlog.Query{Method: "NaiveBayes"})
	require.NoError(t, err)
	require.Len(t, nb, 1)
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	all, err = reopened.Query(ctx, runlog.Query{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLiteStore_Registered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.sqlite")
	s, err := runlog.NewStore(factory.ModuleConfig{Type: "sqlite", Conf: map[string]any{"path": path}})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	_, ok := s.(*SQLiteStore)
	assert.True(t, ok)
}
