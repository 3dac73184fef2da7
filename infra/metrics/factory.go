package metrics

import (
	"fmt"

	"github.com/kilianp07/predictability/core/factory"
	coremetrics "github.com/kilianp07/predictability/core/metrics"
)

// InfluxConfig locates the bucket receiving training_run and prediction
// points.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

func (c InfluxConfig) validate() error {
	switch {
	case c.URL == "":
		return fmt.Errorf("url is required")
	case c.Org == "":
		return fmt.Errorf("org is required")
	case c.Bucket == "":
		return fmt.Errorf("bucket is required")
	}
	return nil
}

// init registers the nop, prometheus and influx sinks. Unknown settings are
// rejected so a misspelt textfile or bucket does not silently drop metrics.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c PromConfig
		if err := factory.DecodeStrict(conf, &c); err != nil {
			return nil, err
		}
		return NewPromSink(c)
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c InfluxConfig
		if err := factory.DecodeStrict(conf, &c); err != nil {
			return nil, err
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})
}
