// Package factory holds the generic registry behind every pluggable piece of
// the meta-learner: classifier variants, metrics sinks and run stores.
//
// A module is described by a ModuleConfig, a type name plus a map of raw
// settings as they come out of the YAML or JSON configuration. The factory
// registered under that name decodes the settings with Decode or
// DecodeStrict and returns the implementation:
//
//	stores := factory.NewRegistry[runlog.Store]()
//	_ = stores.Register("jsonl", func(conf map[string]any) (runlog.Store, error) {
//	    var c runlog.PathConfig
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return runlog.NewJSONLStore(c.Path)
//	})
//	s, err := stores.Create(factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{"path": "runs.jsonl"}})
package factory
