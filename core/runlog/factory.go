package runlog

import (
	"fmt"

	"github.com/kilianp07/predictability/core/factory"
)

var storeRegistry = factory.NewRegistry[Store]()

func init() {
	_ = RegisterStore("none", func(map[string]any) (Store, error) { return NopStore{}, nil })
	_ = RegisterStore("memory", func(map[string]any) (Store, error) { return NewMemoryStore(), nil })
	_ = RegisterStore("jsonl", func(conf map[string]any) (Store, error) {
		var c PathConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, fmt.Errorf("jsonl store: path is required")
		}
		return NewJSONLStore(c.Path)
	})
}

// PathConfig is the configuration of file backed stores.
type PathConfig struct {
	Path string `json:"path"`
}

// RegisterStore adds a store factory identified by name.
func RegisterStore(name string, f factory.Factory[Store]) error {
	return storeRegistry.Register(name, f)
}

// NewStore creates the store described by cfg.
func NewStore(cfg factory.ModuleConfig) (Store, error) {
	return storeRegistry.Create(cfg)
}
