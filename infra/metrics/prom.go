package metrics

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/kilianp07/predictability/core/metrics"
)

// PromConfig configures how a PromSink exposes its metrics. Training and
// prediction commands are short-lived, so metrics are either written to a
// node_exporter textfile or pushed to a Pushgateway on Flush.
type PromConfig struct {
	Textfile    string `json:"textfile"`
	Pushgateway string `json:"pushgateway"`
	Job         string `json:"job"`
}

// PromSink records training runs and predictions in Prometheus metrics.
type PromSink struct {
	cfg      PromConfig
	gatherer prometheus.Gatherer

	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	threshold   *prometheus.GaugeVec
	scores      *prometheus.GaugeVec
	predictions *prometheus.CounterVec
	probability *prometheus.HistogramVec
}

// NewPromSink registers metrics on the default Prometheus registry.
func NewPromSink(cfg PromConfig) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer or gatherer defaults to the global Prometheus registry.
func NewPromSinkWithRegistry(cfg PromConfig, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if cfg.Job == "" {
		cfg.Job = "predictability"
	}
	s := &PromSink{
		cfg:      cfg,
		gatherer: gatherer,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "predictability_training_runs_total",
			Help: "Total number of training runs",
		}, []string{"method", "fallback"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "predictability_training_duration_seconds",
			Help:    "Wall time of training runs",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		threshold: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "predictability_decision_threshold",
			Help: "Probability cutoff chosen by the latest training run",
		}, []string{"method"}),
		scores: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "predictability_test_score",
			Help: "Test split scores of the latest training run",
		}, []string{"method", "metric"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "predictability_predictions_total",
			Help: "Total number of prediction verdicts",
		}, []string{"method", "source", "predictable"}),
		probability: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "predictability_prediction_probability",
			Help:    "Probability that the forecasting error exceeds the threshold",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 9),
		}, []string{"method"}),
	}

	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.threshold, err = register(reg, s.threshold); err != nil {
		return nil, err
	}
	if s.scores, err = register(reg, s.scores); err != nil {
		return nil, err
	}
	if s.predictions, err = register(reg, s.predictions); err != nil {
		return nil, err
	}
	if s.probability, err = register(reg, s.probability); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when c was registered before.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordTraining updates the run counter, duration histogram, threshold and score gauges.
func (s *PromSink) RecordTraining(ev coremetrics.TrainingEvent) error {
	s.runs.WithLabelValues(ev.Method, strconv.FormatBool(ev.Fallback)).Inc()
	s.duration.WithLabelValues(ev.Method).Observe(ev.Duration.Seconds())
	s.threshold.WithLabelValues(ev.Method).Set(ev.Threshold)
	for k, v := range ev.Scores {
		s.scores.WithLabelValues(ev.Method, k).Set(v)
	}
	return nil
}

// RecordPredictions counts verdicts and observes their probabilities.
func (s *PromSink) RecordPredictions(evs []coremetrics.PredictionEvent) error {
	for _, ev := range evs {
		s.predictions.WithLabelValues(ev.Method, ev.Source, strconv.FormatBool(ev.Predictable)).Inc()
		s.probability.WithLabelValues(ev.Method).Observe(ev.Probability)
	}
	return nil
}

// Flush writes the gathered metrics to the configured textfile and
// Pushgateway. It is a no-op when neither is set.
func (s *PromSink) Flush() error {
	var errs []error
	if s.cfg.Textfile != "" {
		if err := prometheus.WriteToTextfile(s.cfg.Textfile, s.gatherer); err != nil {
			errs = append(errs, fmt.Errorf("write textfile: %w", err))
		}
	}
	if s.cfg.Pushgateway != "" {
		if err := push.New(s.cfg.Pushgateway, s.cfg.Job).Gatherer(s.gatherer).Push(); err != nil {
			errs = append(errs, fmt.Errorf("push metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}
