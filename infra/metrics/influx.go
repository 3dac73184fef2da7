package metrics

import (
	"context"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/predictability/core/metrics"
	"github.com/kilianp07/predictability/infra/logger"
)

// InfluxSink writes training and prediction events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordTraining writes one training_run point. Test scores become score_<name> fields.
func (s *InfluxSink) RecordTraining(ev coremetrics.TrainingEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, trainingPoint(ev))
}

// RecordPredictions writes one prediction point per verdict.
func (s *InfluxSink) RecordPredictions(evs []coremetrics.PredictionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, ev := range evs {
		if err := s.writeAPI.WritePoint(ctx, predictionPoint(ev)); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the client resources.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func trainingPoint(ev coremetrics.TrainingEvent) *write.Point {
	p := write.NewPointWithMeasurement("training_run").
		AddTag("run_id", ev.RunID).
		AddTag("method", ev.Method).
		AddTag("fallback", strconv.FormatBool(ev.Fallback)).
		AddField("rows", ev.Rows).
		AddField("train_rows", ev.TrainRows).
		AddField("valid_rows", ev.ValidRows).
		AddField("test_rows", ev.TestRows).
		AddField("threshold", round3(ev.Threshold)).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000))
	names := make([]string, 0, len(ev.Scores))
	for k := range ev.Scores {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		p = p.AddField("score_"+k, round3(ev.Scores[k]))
	}
	return p.SetTime(ev.Time)
}

func predictionPoint(ev coremetrics.PredictionEvent) *write.Point {
	return write.NewPointWithMeasurement("prediction").
		AddTag("run_id", ev.RunID).
		AddTag("method", ev.Method).
		AddTag("source", ev.Source).
		AddField("predictable", ev.Predictable).
		AddField("probability", round3(ev.Probability)).
		SetTime(ev.Time)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
