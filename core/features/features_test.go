package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/predictability/core/timeseries"
)

func TestStatExtractor_Linear(t *testing.T) {
	vals := make([]float64, 40)
	for i := range vals {
		vals[i] = float64(i)
	}
	e := NewStatExtractor(StatConfig{})
	f, err := e.Extract(timeseries.TimeSeries{Value: vals})
	require.NoError(t, err)

	assert.Len(t, f, len(e.Names()))
	for _, n := range e.Names() {
		_, ok := f[n]
		assert.True(t, ok, n)
	}
	assert.Equal(t, 40.0, f["length"])
	assert.InDelta(t, 19.5, f["mean"], 1e-12)
	assert.InDelta(t, 1.0, f["trend_slope"], 1e-12)
	assert.InDelta(t, 1.0, f["linearity"], 1e-12)
	assert.InDelta(t, 0.0, f["std1st_der"], 1e-12)
	assert.Equal(t, 1.0, f["crossing_points"])
	assert.Equal(t, 0.5, f["binarize_mean"])
	assert.Equal(t, 0.0, f["min"])
	assert.Equal(t, 39.0, f["max"])
	assert.False(t, math.IsNaN(f["lumpiness"]))
}

func TestStatExtractor_ConstantYieldsNaN(t *testing.T) {
	e := NewStatExtractor(DefaultStatConfig())
	f, err := e.Extract(timeseries.TimeSeries{Value: []float64{2, 2, 2, 2}})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(f["y_acf1"]))
	assert.Equal(t, 4.0, f["flat_spots"])
	assert.True(t, math.IsNaN(f["lumpiness"]))
}

func TestStatExtractor_DropsNaNAndRejectsShort(t *testing.T) {
	e := NewStatExtractor(DefaultStatConfig())
	f, err := e.Extract(timeseries.TimeSeries{Value: []float64{1, math.NaN(), 3}})
	require.NoError(t, err)
	assert.Equal(t, 2.0, f["length"])

	_, err = e.Extract(timeseries.TimeSeries{Value: []float64{1, math.NaN()}})
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestACF_Alternating(t *testing.T) {
	x := []float64{1, -1, 1, -1, 1, -1}
	assert.InDelta(t, -5.0/6.0, acf(x, 1), 1e-12)
	assert.True(t, math.IsNaN(acf(x, 10)))
}

func TestFlatSpots(t *testing.T) {
	assert.Equal(t, 3.0, flatSpots([]float64{0, 0.01, 0.02, 5, 10}, 10))
}

func TestExtractorFunc(t *testing.T) {
	var ex Extractor = ExtractorFunc(func(ts timeseries.TimeSeries) (map[string]float64, error) {
		return map[string]float64{"n": float64(ts.Len())}, nil
	})
	f, err := ex.Extract(timeseries.TimeSeries{Value: []float64{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, 2.0, f["n"])
}
