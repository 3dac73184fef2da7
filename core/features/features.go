// Package features turns a time series into the named numeric features the
// predictability classifier is trained on.
package features

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/predictability/core/timeseries"
)

// Extractor computes features for a series.
type Extractor interface {
	Extract(ts timeseries.TimeSeries) (map[string]float64, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ts timeseries.TimeSeries) (map[string]float64, error)

// Extract calls f.
func (f ExtractorFunc) Extract(ts timeseries.TimeSeries) (map[string]float64, error) { return f(ts) }

// ErrTooShort is returned for series with fewer than two observations.
var ErrTooShort = errors.New("time series too short for feature extraction")

// StatConfig tunes the statistical extractor.
type StatConfig struct {
	// WindowSize is the tile length used by lumpiness and stability.
	WindowSize int `json:"window_size"`
	// Bins is the number of equal-width bins used by flat_spots.
	Bins int `json:"bins"`
}

// DefaultStatConfig returns the window and bin counts used when unset.
func DefaultStatConfig() StatConfig { return StatConfig{WindowSize: 20, Bins: 10} }

// StatExtractor computes scale, shape and dependency statistics of a series.
// Features that are undefined for a series, e.g. the autocorrelation of a
// constant series, are reported as NaN.
type StatExtractor struct {
	cfg StatConfig
}

// NewStatExtractor returns an extractor using cfg, falling back to the
// defaults for non-positive values.
func NewStatExtractor(cfg StatConfig) *StatExtractor {
	def := DefaultStatConfig()
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = def.WindowSize
	}
	if cfg.Bins <= 0 {
		cfg.Bins = def.Bins
	}
	return &StatExtractor{cfg: cfg}
}

// Names lists the features produced by Extract in lexical order.
func (e *StatExtractor) Names() []string {
	names := []string{
		"binarize_mean", "crossing_points", "diff1y_acf1", "flat_spots",
		"length", "linearity", "lumpiness", "max", "mean", "min",
		"skewness", "kurtosis", "spikiness", "stability", "std1st_der",
		"trend_slope", "var", "y_acf1", "y_acf2",
	}
	sort.Strings(names)
	return names
}

// Extract implements Extractor. NaN observations are dropped first.
func (e *StatExtractor) Extract(ts timeseries.TimeSeries) (map[string]float64, error) {
	x := make([]float64, 0, ts.Len())
	for _, v := range ts.Value {
		if !math.IsNaN(v) {
			x = append(x, v)
		}
	}
	if len(x) < 2 {
		return nil, ErrTooShort
	}
	mean, variance := stat.PopMeanVariance(x, nil)
	diff := make([]float64, len(x)-1)
	for i := range diff {
		diff[i] = x[i+1] - x[i]
	}
	slope, r2 := trend(x)

	return map[string]float64{
		"length":          float64(len(x)),
		"mean":            mean,
		"var":             variance,
		"min":             floats.Min(x),
		"max":             floats.Max(x),
		"skewness":        stat.Skew(x, nil),
		"kurtosis":        stat.ExKurtosis(x, nil),
		"trend_slope":     slope,
		"linearity":       r2,
		"y_acf1":          acf(x, 1),
		"y_acf2":          acf(x, 2),
		"diff1y_acf1":     acf(diff, 1),
		"std1st_der":      stat.StdDev(diff, nil),
		"crossing_points": crossingPoints(x),
		"binarize_mean":   binarizeMean(x, mean),
		"flat_spots":      flatSpots(x, e.cfg.Bins),
		"lumpiness":       tiled(x, e.cfg.WindowSize, func(w []float64) float64 { return stat.Variance(w, nil) }),
		"stability":       tiled(x, e.cfg.WindowSize, func(w []float64) float64 { return stat.Mean(w, nil) }),
		"spikiness":       spikiness(x),
	}, nil
}

// trend fits value ~ index and returns the slope and R².
func trend(x []float64) (slope, r2 float64) {
	idx := make([]float64, len(x))
	for i := range idx {
		idx[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(idx, x, nil, false)
	return beta, stat.RSquared(idx, x, nil, alpha, beta)
}

// acf is the sample autocorrelation at the given lag.
func acf(x []float64, lag int) float64 {
	if lag >= len(x) {
		return math.NaN()
	}
	m := stat.Mean(x, nil)
	var num, den float64
	for i, v := range x {
		d := v - m
		den += d * d
		if i+lag < len(x) {
			num += d * (x[i+lag] - m)
		}
	}
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// crossingPoints counts how often the series crosses its median.
func crossingPoints(x []float64) float64 {
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	var n float64
	for i := 1; i < len(x); i++ {
		if (x[i-1] <= median) != (x[i] <= median) {
			n++
		}
	}
	return n
}

func binarizeMean(x []float64, mean float64) float64 {
	var above float64
	for _, v := range x {
		if v > mean {
			above++
		}
	}
	return above / float64(len(x))
}

// flatSpots is the longest run of consecutive values falling in the same
// equal-width bin.
func flatSpots(x []float64, bins int) float64 {
	lo, hi := floats.Min(x), floats.Max(x)
	if hi == lo {
		return float64(len(x))
	}
	width := (hi - lo) / float64(bins)
	bin := func(v float64) int {
		b := int((v - lo) / width)
		if b >= bins {
			b = bins - 1
		}
		return b
	}
	longest, run := 1, 1
	for i := 1; i < len(x); i++ {
		if bin(x[i]) == bin(x[i-1]) {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return float64(longest)
}

// tiled applies f to non-overlapping windows and returns the variance of
// the results. Series shorter than two windows yield NaN.
func tiled(x []float64, size int, f func([]float64) float64) float64 {
	var vals []float64
	for start := 0; start+size <= len(x); start += size {
		vals = append(vals, f(x[start:start+size]))
	}
	if len(vals) < 2 {
		return math.NaN()
	}
	return stat.Variance(vals, nil)
}

// spikiness is the variance of the leave-one-out variances.
func spikiness(x []float64) float64 {
	if len(x) < 3 {
		return math.NaN()
	}
	loo := make([]float64, len(x))
	rest := make([]float64, 0, len(x)-1)
	for i := range x {
		rest = rest[:0]
		rest = append(rest, x[:i]...)
		rest = append(rest, x[i+1:]...)
		loo[i] = stat.Variance(rest, nil)
	}
	return stat.Variance(loo, nil)
}
