// Package monitoring reports command failures and panics to an error
// tracker. The process-wide monitor defaults to NopMonitor.
package monitoring

import (
	"sync"
	"time"
)

// Monitor forwards failures to an error tracker.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	CapturePanic(v any, tags map[string]string)
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) CapturePanic(any, map[string]string)       {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init sets the global monitor implementation. nil is ignored.
func Init(m Monitor) {
	if m == nil {
		return
	}
	mu.Lock()
	current = m
	mu.Unlock()
}

// Current returns the global monitor.
func Current() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureException records err with optional tags.
func CaptureException(err error, tags map[string]string) {
	if err != nil {
		Current().CaptureException(err, tags)
	}
}

// Report captures err, tagged with the failing command, and returns it
// unchanged so callers can write `return monitoring.Report("train", err)`.
func Report(command string, err error) error {
	if err != nil {
		CaptureException(err, map[string]string{"command": command})
	}
	return err
}

// Guard runs fn, reporting its error like Report. A panic raised by fn is
// captured and flushed before it is re-raised.
func Guard(command string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			tags := map[string]string{"command": command}
			Current().CapturePanic(r, tags)
			Current().Flush(2 * time.Second)
			panic(r)
		}
	}()
	return Report(command, fn())
}

// Flush flushes buffered events.
func Flush(d time.Duration) { Current().Flush(d) }
