package predictability

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/predictability/core/timeseries"
)

// Predict reports whether ts is predictable. When rescale is set the values
// of a copy of ts are divided by their maximum before features are
// extracted; ts itself is never modified.
func (m *Model) Predict(ts timeseries.TimeSeries, rescale bool) (bool, error) {
	frame, err := m.seriesFrame(ts, rescale)
	if err != nil {
		return false, err
	}
	pred, err := m.PredictByFeature(frame)
	if err != nil {
		return false, err
	}
	return pred[0] == 1, nil
}

// PredictSeriesProba returns the class-1 probability Predict compares
// against the decision threshold.
func (m *Model) PredictSeriesProba(ts timeseries.TimeSeries, rescale bool) (float64, error) {
	frame, err := m.seriesFrame(ts, rescale)
	if err != nil {
		return 0, err
	}
	proba, err := m.PredictProba(frame)
	if err != nil {
		return 0, err
	}
	return proba[0], nil
}

// seriesFrame extracts the features of ts as a single-row Frame. Features
// the model does not know are dropped by the Frame alignment.
func (m *Model) seriesFrame(ts timeseries.TimeSeries, rescale bool) (Frame, error) {
	if m.clf == nil {
		return nil, invalidf("please train the model first")
	}
	series := ts.Copy()
	if rescale {
		m.log.Infof("rescaling the time series by its maximum before extracting features")
		switch err := series.Rescale(); {
		case errors.Is(err, timeseries.ErrZeroMax):
			m.log.Warnf("time series maximum is zero, extracting features from the unscaled values")
		case err != nil:
			return nil, invalidf("rescale time series: %v", err)
		}
	}
	feats, err := m.extractor.Extract(series)
	if err != nil {
		return nil, invalidf("extract features: %v", err)
	}

	var overlap int
	var missing []string
	for _, c := range m.columns {
		v, ok := feats[c]
		switch {
		case !ok:
			missing = append(missing, c)
		case math.IsNaN(v):
			missing = append(missing, c)
			overlap++
		default:
			overlap++
		}
	}
	if overlap == 0 {
		m.log.Warnf("none of the %d model features were extracted from the time series", len(m.columns))
	}
	if len(missing) > 0 {
		m.log.Warnf("time series features contain NaNs: %v", missing)
	}
	return FrameOf(feats), nil
}

// PredictByFeature labels every row of x: 1 when the class-1 probability is
// below the decision threshold, 0 otherwise.
func (m *Model) PredictByFeature(x FeatureInput) ([]int, error) {
	proba, err := m.PredictProba(x)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(proba))
	for i, p := range proba {
		if p < m.clfThreshold {
			out[i] = 1
		}
	}
	return out, nil
}

// PredictProba returns the class-1 probability of every row of x, that is the
// probability that the forecasting error exceeds the model threshold. NaNs
// are replaced by zero and the training standardisation is applied when the
// model was preprocessed.
func (m *Model) PredictProba(x FeatureInput) ([]float64, error) {
	if m.clf == nil {
		return nil, invalidf("please train the model first")
	}
	if x == nil {
		return nil, invalidf("nil feature input")
	}
	dense, err := x.matrix(m.columns)
	if err != nil {
		return nil, err
	}
	m.normalize(dense)
	proba, err := m.clf.PredictProba(dense)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return proba, nil
}

func (m *Model) normalize(x *mat.Dense) {
	x.Apply(func(_, j int, v float64) float64 {
		if math.IsNaN(v) {
			v = 0
		}
		if m.rescale {
			v = (v - m.mean[j]) / m.std[j]
		}
		return v
	}, x)
}
