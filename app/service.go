package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/predictability/config"
	"github.com/kilianp07/predictability/core/features"
	"github.com/kilianp07/predictability/core/metadata"
	coremetrics "github.com/kilianp07/predictability/core/metrics"
	"github.com/kilianp07/predictability/core/predictability"
	"github.com/kilianp07/predictability/core/runlog"
	"github.com/kilianp07/predictability/core/timeseries"
	"github.com/kilianp07/predictability/infra/logger"
	// Register the Prometheus and InfluxDB sinks and the bolt run store.
	_ "github.com/kilianp07/predictability/infra/metrics"
	_ "github.com/kilianp07/predictability/infra/runlog"
	"github.com/kilianp07/predictability/pkg/export"
)

// Service wires configuration, metrics sinks and the run store around the
// predictability model.
type Service struct {
	cfg       *config.Config
	sink      coremetrics.MetricsSink
	runs      runlog.Store
	log       logger.Logger
	modelLog  logger.Logger
	extractor features.Extractor
}

// Option customises a Service.
type Option func(*Service)

// WithSink replaces the sinks built from the configuration.
func WithSink(s coremetrics.MetricsSink) Option { return func(svc *Service) { svc.sink = s } }

// WithRunStore replaces the run store built from the configuration.
func WithRunStore(s runlog.Store) Option { return func(svc *Service) { svc.runs = s } }

// WithLogger sets the logger used by the service and the model.
func WithLogger(l logger.Logger) Option {
	return func(svc *Service) {
		svc.log = l
		svc.modelLog = l
	}
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	svc := &Service{
		cfg:       cfg,
		log:       logger.New("service"),
		modelLog:  logger.New("model"),
		extractor: features.NewStatExtractor(cfg.Features.StatConfig()),
	}
	for _, o := range opts {
		o(svc)
	}
	if svc.sink == nil {
		sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		svc.sink = sink
	}
	if svc.runs == nil {
		store, err := runlog.NewStore(cfg.RunLog.ModuleConfig())
		if err != nil {
			return nil, fmt.Errorf("run store: %w", err)
		}
		svc.runs = store
	}
	return svc, nil
}

func (s *Service) modelOptions() []predictability.Option {
	opts := []predictability.Option{
		predictability.WithThreshold(s.cfg.Model.Threshold),
		predictability.WithLogger(s.modelLog),
		predictability.WithExtractor(s.extractor),
	}
	if s.cfg.Model.Seed != 0 {
		opts = append(opts, predictability.WithSeed(s.cfg.Model.Seed))
	}
	return opts
}

// TrainRequest describes a training run.
type TrainRequest struct {
	MetadataPath string
	ModelPath    string
	Options      predictability.TrainOptions
	Preprocess   bool
}

// TrainResult is returned by Train.
type TrainResult struct {
	Scores  map[string]float64
	Report  predictability.TrainingReport
	Skipped []predictability.SkippedRecord
}

// Train builds a model from the metadata file, trains and saves it, then
// records the run in the run store and the metrics sinks. Failing to record
// the run is logged but does not fail training.
func (s *Service) Train(ctx context.Context, req TrainRequest) (*TrainResult, error) {
	records, err := metadata.LoadFile(req.MetadataPath)
	if err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}
	m, err := predictability.New(records, s.modelOptions()...)
	if err != nil {
		return nil, err
	}
	if req.Preprocess {
		if err := m.Preprocess(); err != nil {
			return nil, err
		}
	}
	scores, err := m.Train(req.Options)
	if err != nil {
		return nil, err
	}
	if err := m.Save(req.ModelPath); err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}

	rep := *m.LastReport()
	res := &TrainResult{Scores: scores, Report: rep, Skipped: m.Skipped()}
	rec := runlog.Record{
		RunID:        rep.RunID,
		Method:       string(rep.Method),
		StartedAt:    rep.StartedAt,
		Duration:     rep.Duration,
		Rows:         rep.Rows,
		TrainRows:    rep.TrainRows,
		ValidRows:    rep.ValidRows,
		TestRows:     rep.TestRows,
		Threshold:    rep.Threshold,
		Fallback:     rep.Fallback,
		Scores:       rep.Scores,
		Skipped:      len(res.Skipped),
		Preprocessed: req.Preprocess,
		Metadata:     req.MetadataPath,
		ModelPath:    req.ModelPath,
	}
	if err := s.runs.Append(ctx, rec); err != nil {
		s.log.Errorf("record run %s: %v", rep.RunID, err)
	}
	ev := coremetrics.TrainingEvent{
		RunID:     rep.RunID,
		Method:    string(rep.Method),
		Rows:      rep.Rows,
		TrainRows: rep.TrainRows,
		ValidRows: rep.ValidRows,
		TestRows:  rep.TestRows,
		Threshold: rep.Threshold,
		Fallback:  rep.Fallback,
		Scores:    rep.Scores,
		Duration:  rep.Duration,
		Time:      rep.StartedAt,
	}
	if err := errors.Join(s.sink.RecordTraining(ev), coremetrics.Flush(s.sink)); err != nil {
		s.log.Errorf("record training metrics: %v", err)
	}
	s.log.Infof("trained %s", rep)
	return res, nil
}

// Load returns the model stored at path.
func (s *Service) Load(path string) (*predictability.Model, error) {
	m := predictability.NewForLoad(s.modelOptions()...)
	if err := m.Load(path); err != nil {
		return nil, err
	}
	return m, nil
}

// PredictSeries returns one verdict per series.
func (s *Service) PredictSeries(ctx context.Context, modelPath string, series []timeseries.TimeSeries, rescale bool) ([]export.Verdict, error) {
	m, err := s.Load(modelPath)
	if err != nil {
		return nil, err
	}
	verdicts := make([]export.Verdict, 0, len(series))
	for i, ts := range series {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := m.PredictSeriesProba(ts, rescale)
		if err != nil {
			return nil, fmt.Errorf("series %d: %w", i, err)
		}
		verdicts = append(verdicts, s.verdict(m, i, "series", p))
	}
	s.recordPredictions(verdicts)
	return verdicts, nil
}

// PredictFeatures returns one verdict per feature row.
func (s *Service) PredictFeatures(_ context.Context, modelPath string, rows predictability.FeatureInput) ([]export.Verdict, error) {
	m, err := s.Load(modelPath)
	if err != nil {
		return nil, err
	}
	proba, err := m.PredictProba(rows)
	if err != nil {
		return nil, err
	}
	verdicts := make([]export.Verdict, len(proba))
	for i, p := range proba {
		verdicts[i] = s.verdict(m, i, "features", p)
	}
	s.recordPredictions(verdicts)
	return verdicts, nil
}

// verdict applies the same comparison as Model.PredictByFeature.
func (s *Service) verdict(m *predictability.Model, row int, source string, p float64) export.Verdict {
	return export.Verdict{
		Row:         row,
		Source:      source,
		Predictable: p < m.DecisionThreshold(),
		Probability: p,
		Method:      string(m.Method()),
		RunID:       m.RunID(),
	}
}

func (s *Service) recordPredictions(verdicts []export.Verdict) {
	now := time.Now()
	evs := make([]coremetrics.PredictionEvent, len(verdicts))
	for i, v := range verdicts {
		evs[i] = coremetrics.PredictionEvent{
			RunID:       v.RunID,
			Method:      v.Method,
			Source:      v.Source,
			Predictable: v.Predictable,
			Probability: v.Probability,
			Time:        now,
		}
	}
	if err := errors.Join(coremetrics.RecordPredictions(s.sink, evs), coremetrics.Flush(s.sink)); err != nil {
		s.log.Errorf("record prediction metrics: %v", err)
	}
}

// Runs lists recorded training runs.
func (s *Service) Runs(ctx context.Context, q runlog.Query) ([]runlog.Record, error) {
	return s.runs.Query(ctx, q)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	coremetrics.Close(s.sink)
	return s.runs.Close()
}
