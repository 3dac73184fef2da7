// Package logger provides the zerolog backed implementation of the core
// logging contract.
package logger

import corelogger "github.com/kilianp07/predictability/core/logger"

type (
	Logger    = corelogger.Logger
	NopLogger = corelogger.NopLogger
)

// New returns a Logger tagged with component, using the output format set by
// Configure.
func New(component string) Logger {
	return NewZerologLogger(component)
}
