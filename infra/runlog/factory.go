package runlog

import (
	"fmt"

	"github.com/kilianp07/predictability/core/factory"
	"github.com/kilianp07/predictability/core/runlog"
)

// init registers the file database run stores.
func init() {
	_ = runlog.RegisterStore("bolt", func(conf map[string]any) (runlog.Store, error) {
		var c runlog.PathConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, fmt.Errorf("bolt store: path is required")
		}
		return NewBoltStore(c.Path)
	})

	_ = runlog.RegisterStore("sqlite", func(conf map[string]any) (runlog.Store, error) {
		var c runlog.PathConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, fmt.Errorf("sqlite store: path is required")
		}
		return NewSQLiteStore(c.Path)
	})
}
