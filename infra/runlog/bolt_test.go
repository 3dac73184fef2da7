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

func TestBoltStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := NewBoltStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []runlog.Record{
		{RunID: "late", Method: "KNN", StartedAt: base.Add(2 * time.Hour)},
		{RunID: "early", Method: "GBDT", StartedAt: base, Scores: map[string]float64{"accuracy": 1}},
		{RunID: "mid", Method: "KNN", StartedAt: base.Add(time.Hour)},
	}
	for _, r := range runs {
		require.NoError(t, s.Append(ctx, r))
	}

	all, err := s.Query(ctx, runlog.Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "early", all[0].RunID)
	assert.Equal(t, "late", all[2].RunID)
	assert.Equal(t, 1.0, all[0].Scores["accuracy"])

	ranged, err := s.Query(ctx, runlog.Query{Start: base.Add(time.Minute), End: base.Add(90 * time.Minute)})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "mid", ranged[0].RunID)

	knn, err := s.Query(ctx, runlog.Query{Method: "KNN", Limit: 1})
	require.NoError(t, err)
	require.Len(t, knn, 1)
	assert.Equal(t, "late", knn[0].RunID)

	require.NoError(t, s.Close())

	reopened, err := NewBoltStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	all, err = reopened.Query(ctx, runlog.Query{})
	require.NoError(t, err)
	assert.Len(t, all, 3, "runs survive reopening")
}

func TestBoltStore_Registered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := runlog.NewStore(factory.ModuleConfig{Type: "bolt", Conf: map[string]any{"path": path}})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	_, ok := s.(*BoltStore)
	assert.True(t, ok)

	_, err = runlog.NewStore(factory.ModuleConfig{Type: "bolt"})
	assert.Error(t, err)
}
