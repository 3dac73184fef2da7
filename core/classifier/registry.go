package classifier

import (
	"fmt"

	"github.com/kilianp07/predictability/core/factory"
)

// defaults are the hyperparameters each variant starts from before caller
// overrides are applied.
var defaults = map[Method]map[string]any{
	MethodNaiveBayes: {
		"var_smoothing": 1e-9,
	},
	MethodGBDT: {
		"n_estimators":      100,
		"learning_rate":     0.1,
		"max_depth":         3,
		"min_samples_split": 2,
		"min_samples_leaf":  1,
		"subsample":         1.0,
		"max_features":      "all",
		"random_state":      0,
	},
	MethodKNN: {
		"n_neighbors": 5,
		"weights":     "uniform",
		"p":           2,
	},
	MethodRandomForest: {
		"n_estimators":      500,
		"class_weight":      "balanced_subsample",
		"max_depth":         0,
		"min_samples_split": 2,
		"min_samples_leaf":  1,
		"max_features":      "sqrt",
		"bootstrap":         true,
		"random_state":      0,
	},
}

var registry = factory.NewRegistry[Classifier]()

func init() {
	mustRegister(MethodNaiveBayes, func(conf map[string]any) (Classifier, error) {
		var c NaiveBayesConfig
		if err := factory.DecodeStrict(conf, &c); err != nil {
			return nil, err
		}
		if c.VarSmoothing < 0 {
			return nil, fmt.Errorf("var_smoothing must be non-negative, got %v", c.VarSmoothing)
		}
		if c.Priors != nil && len(c.Priors) != 2 {
			return nil, fmt.Errorf("priors must hold 2 values, got %d", len(c.Priors))
		}
		return NewGaussianNB(c), nil
	})
	mustRegister(MethodGBDT, func(conf map[string]any) (Classifier, error) {
		var c GBDTConfig
		if err := factory.DecodeStrict(conf, &c); err != nil {
			return nil, err
		}
		return NewGBDT(c)
	})
	mustRegister(MethodKNN, func(conf map[string]any) (Classifier, error) {
		var c KNNConfig
		if err := factory.DecodeStrict(conf, &c); err != nil {
			return nil, err
		}
		return NewKNN(c)
	})
	mustRegister(MethodRandomForest, func(conf map[string]any) (Classifier, error) {
		var c ForestConfig
		if err := factory.DecodeStrict(conf, &c); err != nil {
			return nil, err
		}
		return NewRandomForest(c)
	})
}

func mustRegister(m Method, f factory.Factory[Classifier]) {
	if err := registry.Register(string(m), f); err != nil {
		panic(err)
	}
}

// Supported lists the registered methods in lexical order.
func Supported() []Method {
	names := registry.Names()
	out := make([]Method, len(names))
	for i, n := range names {
		out[i] = Method(n)
	}
	return out
}

// IsSupported reports whether m names a registered variant.
func IsSupported(m Method) bool { return registry.Has(string(m)) }

// Defaults returns a copy of the default hyperparameters of m.
func Defaults(m Method) map[string]any {
	out := make(map[string]any, len(defaults[m]))
	for k, v := range defaults[m] {
		out[k] = v
	}
	return out
}

// New creates an unfitted classifier of the given method. params override
// the method defaults; unknown keys are rejected.
func New(m Method, params map[string]any) (Classifier, error) {
	if !IsSupported(m) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, m)
	}
	conf := Defaults(m)
	for k, v := range params {
		conf[k] = v
	}
	return registry.Create(factory.ModuleConfig{Type: string(m), Conf: conf})
}
