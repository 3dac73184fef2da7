package config

import (
	"fmt"

	"github.com/kilianp07/predictability/core/factory"
)

// RunLogConfig selects where training runs are recorded.
type RunLogConfig struct {
	// Backend selects the store type: "jsonl", "bolt", "sqlite", "memory" or "none".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *RunLogConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		switch c.Backend {
		case "bolt":
			c.Path = "runs.db"
		case "sqlite":
			c.Path = "runs.sqlite"
		default:
			c.Path = "runs.jsonl"
		}
	}
}

// Validate checks mandatory fields.
func (c RunLogConfig) Validate() error {
	switch c.Backend {
	case "jsonl", "bolt", "sqlite", "memory", "none":
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// ModuleConfig returns the store description understood by runlog.NewStore.
func (c RunLogConfig) ModuleConfig() factory.ModuleConfig {
	return factory.ModuleConfig{Type: c.Backend, Conf: map[string]any{"path": c.Path}}
}
