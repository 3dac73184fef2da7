package metrics

import "github.com/kilianp07/predictability/core/factory"

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink adds a metrics sink factory identified by name.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// NewMetricsSink creates a MetricsSink from the provided configuration.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]MetricsSink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}

// RecordPredictions forwards evs to sink when it can record predictions.
func RecordPredictions(sink MetricsSink, evs []PredictionEvent) error {
	if rec, ok := sink.(PredictionRecorder); ok {
		return rec.RecordPredictions(evs)
	}
	return nil
}

// Flush flushes sink when it buffers events.
func Flush(sink MetricsSink) error {
	if f, ok := sink.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// Close releases sink when it holds resources such as a client connection.
func Close(sink MetricsSink) {
	if c, ok := sink.(interface{ Close() }); ok {
		c.Close()
	}
}
