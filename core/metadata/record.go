package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"gopkg.in/yaml.v3"
)

// Required record keys.
const (
	KeyHPTRes    = "hpt_res"
	KeyFeatures  = "features"
	KeyBestModel = "best_model"
)

// ErrMissingModel is returned when best_model has no entry in hpt_res.
var ErrMissingModel = errors.New("best model not found in hpt_res")

// Record is the meta-data of one historical time series.
//
// HPTRes and Features are kept untyped because producers hand them over
// either as decoded structures or as literal strings; ParseHPTRes and
// ParseFeatures normalise both forms.
type Record struct {
	HPTRes    any    `json:"hpt_res" yaml:"hpt_res"`
	Features  any    `json:"features" yaml:"features"`
	BestModel string `json:"best_model" yaml:"best_model"`
}

// ModelResult is the outcome of tuning one candidate forecasting model.
type ModelResult struct {
	Params map[string]any
	Error  float64
}

// Missing returns the first required key absent from r, or "" when the
// record is complete.
func (r Record) Missing() string {
	switch {
	case isEmpty(r.HPTRes):
		return KeyHPTRes
	case isEmpty(r.Features):
		return KeyFeatures
	case r.BestModel == "":
		return KeyBestModel
	}
	return ""
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case *Dict:
		return x == nil
	}
	return false
}

// UnmarshalJSON decodes a record, keeping the key order of an object valued
// features field.
func (r *Record) UnmarshalJSON(b []byte) error {
	var raw struct {
		HPTRes    any             `json:"hpt_res"`
		Features  json.RawMessage `json:"features"`
		BestModel string          `json:"best_model"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = Record{HPTRes: raw.HPTRes, BestModel: raw.BestModel}
	trimmed := bytes.TrimSpace(raw.Features)
	switch {
	case len(trimmed) == 0:
	case trimmed[0] == '{':
		d := NewDict()
		if err := d.UnmarshalJSON(trimmed); err != nil {
			return fmt.Errorf("features: %w", err)
		}
		r.Features = d
	default:
		if err := json.Unmarshal(trimmed, &r.Features); err != nil {
			return fmt.Errorf("features: %w", err)
		}
	}
	return nil
}

// UnmarshalYAML decodes a record, keeping the key order of a mapping valued
// features field.
func (r *Record) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		HPTRes    any       `yaml:"hpt_res"`
		Features  yaml.Node `yaml:"features"`
		BestModel string    `yaml:"best_model"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*r = Record{HPTRes: raw.HPTRes, BestModel: raw.BestModel}
	switch raw.Features.Kind {
	case 0:
	case yaml.MappingNode:
		d := NewDict()
		if err := d.UnmarshalYAML(&raw.Features); err != nil {
			return fmt.Errorf("features: %w", err)
		}
		r.Features = d
	default:
		if err := raw.Features.Decode(&r.Features); err != nil {
			return fmt.Errorf("features: %w", err)
		}
	}
	return nil
}

// Feature is a named feature value.
type Feature struct {
	Name  string
	Value float64
}

// OrderedFeatures returns the record features in their source order: the
// key order of a literal string or of a decoded Dict. Plain Go maps carry no
// order, so their features are sorted by name.
func (r Record) OrderedFeatures() ([]Feature, error) {
	m, err := ParseFeatures(r.Features)
	if err != nil {
		return nil, err
	}
	keys, err := featureKeys(r.Features)
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}
	out := make([]Feature, 0, len(keys))
	for _, k := range keys {
		out = append(out, Feature{Name: k, Value: m[k]})
	}
	return out, nil
}

// featureKeys returns the source key order of v, or nil when v has none.
func featureKeys(v any) ([]string, error) {
	switch f := v.(type) {
	case *Dict:
		return f.Keys, nil
	case Dict:
		return f.Keys, nil
	case string:
		_, keys, err := parseLiteral(f)
		return keys, err
	}
	return nil, nil
}

// BestError returns the error achieved by the record's best model.
func (r Record) BestError() (float64, error) {
	hpt, err := ParseHPTRes(r.HPTRes)
	if err != nil {
		return 0, err
	}
	res, ok := hpt[r.BestModel]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingModel, r.BestModel)
	}
	return res.Error, nil
}

// ParseFeatures converts a features field into a name to value mapping.
// None/null values become NaN.
func ParseFeatures(v any) (map[string]float64, error) {
	switch f := v.(type) {
	case nil:
		return nil, &ParseError{Pos: -1, Msg: "features missing"}
	case map[string]float64:
		out := make(map[string]float64, len(f))
		for k, x := range f {
			out[k] = x
		}
		return out, nil
	case *Dict:
		if f == nil {
			return nil, &ParseError{Pos: -1, Msg: "features missing"}
		}
		return ParseFeatures(f.Values)
	case Dict:
		return ParseFeatures(f.Values)
	case map[string]any:
		out := make(map[string]float64, len(f))
		for k, x := range f {
			n, err := toFloat(x)
			if err != nil {
				return nil, &ParseError{Pos: -1, Msg: fmt.Sprintf("feature %q: %v", k, err)}
			}
			out[k] = n
		}
		return out, nil
	case string:
		lit, err := ParseLiteral(f)
		if err != nil {
			return nil, err
		}
		if _, ok := lit.(map[string]any); !ok {
			return nil, &ParseError{Pos: -1, Msg: fmt.Sprintf("features literal is %T, want dict", lit)}
		}
		return ParseFeatures(lit)
	}
	return nil, &ParseError{Pos: -1, Msg: fmt.Sprintf("unsupported features type %T", v)}
}

// ParseHPTRes converts an hpt_res field into typed model results. Each entry
// must be a sequence whose second element is the model error; a leading
// mapping is kept as the tuned parameters.
func ParseHPTRes(v any) (map[string]ModelResult, error) {
	switch h := v.(type) {
	case nil:
		return nil, &ParseError{Pos: -1, Msg: "hpt_res missing"}
	case map[string]ModelResult:
		out := make(map[string]ModelResult, len(h))
		for k, x := range h {
			out[k] = x
		}
		return out, nil
	case map[string][]any:
		out := make(map[string]ModelResult, len(h))
		for k, x := range h {
			res, err := toModelResult(x)
			if err != nil {
				return nil, &ParseError{Pos: -1, Msg: fmt.Sprintf("model %q: %v", k, err)}
			}
			out[k] = res
		}
		return out, nil
	case map[string]any:
		out := make(map[string]ModelResult, len(h))
		for k, x := range h {
			seq, ok := x.([]any)
			if !ok {
				return nil, &ParseError{Pos: -1, Msg: fmt.Sprintf("model %q: entry is %T, want sequence", k, x)}
			}
			res, err := toModelResult(seq)
			if err != nil {
				return nil, &ParseError{Pos: -1, Msg: fmt.Sprintf("model %q: %v", k, err)}
			}
			out[k] = res
		}
		return out, nil
	case string:
		lit, err := ParseLiteral(h)
		if err != nil {
			return nil, err
		}
		if _, ok := lit.(map[string]any); !ok {
			return nil, &ParseError{Pos: -1, Msg: fmt.Sprintf("hpt_res literal is %T, want dict", lit)}
		}
		return ParseHPTRes(lit)
	}
	return nil, &ParseError{Pos: -1, Msg: fmt.Sprintf("unsupported hpt_res type %T", v)}
}

func toModelResult(seq []any) (ModelResult, error) {
	if len(seq) < 2 {
		return ModelResult{}, fmt.Errorf("entry has %d elements, want at least 2", len(seq))
	}
	e, err := toFloat(seq[1])
	if err != nil {
		return ModelResult{}, fmt.Errorf("error value: %w", err)
	}
	res := ModelResult{Error: e}
	if p, ok := seq[0].(map[string]any); ok {
		res.Params = p
	}
	return res, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return math.NaN(), nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return n.Float64()
	}
	return 0, fmt.Errorf("value %v (%T) is not numeric", v, v)
}
