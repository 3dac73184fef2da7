package monitoring

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/predictability/config"
	coremon "github.com/kilianp07/predictability/core/monitoring"
)

// NewSentryMonitor initializes Sentry from cfg. An empty DSN yields a
// NopMonitor.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	return newSentryMonitor(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate,
		Release:          cfg.Release,
		AttachStacktrace: true,
	})
}

func newSentryMonitor(opts sentry.ClientOptions) (coremon.Monitor, error) {
	if err := sentry.Init(opts); err != nil {
		return nil, fmt.Errorf("sentry init: %w", err)
	}
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("service", "predictability")
	})
	return &sentryMonitor{hub: sentry.CurrentHub()}, nil
}

type sentryMonitor struct {
	hub *sentry.Hub
}

// withTags runs fn on a scope carrying tags. Events of the same command are
// grouped together on top of the default grouping.
func (s *sentryMonitor) withTags(tags map[string]string, fn func(*sentry.Hub)) {
	s.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		if cmd, ok := tags["command"]; ok {
			scope.SetFingerprint([]string{"{{ default }}", cmd})
		}
		fn(s.hub)
	})
}

func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	s.withTags(tags, func(h *sentry.Hub) { h.CaptureException(err) })
}

func (s *sentryMonitor) CapturePanic(v any, tags map[string]string) {
	s.withTags(tags, func(h *sentry.Hub) { h.Recover(v) })
}

func (s *sentryMonitor) Flush(timeout time.Duration) { s.hub.Flush(timeout) }
