package metrics

import (
	"fmt"

	"github.com/kilianp07/predictability/core/factory"
)

// Config lists the sinks that receive training and prediction events. No
// sinks means events are dropped.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" koanf:"sinks"`
}

// Validate checks that every sink names a type. Whether the type is known is
// only checked when the sinks are built, since adapters register themselves.
func (c Config) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("sink %d has no type", i)
		}
	}
	return nil
}
