package metrics

// Package metrics defines the events emitted by training runs and
// predictions and the sinks that record them. Sinks like PromSink and
// InfluxSink live in infra/metrics and register themselves by name; the
// factory helpers return a MultiSink automatically when multiple sinks are
// configured.
