package metadata

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Missing(t *testing.T) {
	full := Record{HPTRes: "{}", Features: map[string]float64{"a": 1}, BestModel: "arima"}
	assert.Equal(t, "", full.Missing())
	assert.Equal(t, KeyHPTRes, Record{Features: "{}", BestModel: "m"}.Missing())
	assert.Equal(t, KeyFeatures, Record{HPTRes: "{}", BestModel: "m"}.Missing())
	assert.Equal(t, KeyBestModel, Record{HPTRes: "{}", Features: "{}"}.Missing())
}

func TestRecord_BestError(t *testing.T) {
	cases := []struct {
		name string
		hpt  any
	}{
		{"literal", "{'arima': ({'p': 2}, 0.25), 'theta': ({}, 0.5)}"},
		{"decoded json", map[string]any{"arima": []any{map[string]any{"p": 2.0}, 0.25}, "theta": []any{map[string]any{}, 0.5}}},
		{"typed", map[string]ModelResult{"arima": {Error: 0.25}, "theta": {Error: 0.5}}},
		{"slices", map[string][]any{"arima": {nil, 0.25}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := Record{HPTRes: c.hpt, Features: "{}", BestModel: "arima"}
			e, err := r.BestError()
			require.NoError(t, err)
			assert.Equal(t, 0.25, e)
		})
	}
}

func TestRecord_BestErrorFailures(t *testing.T) {
	_, err := Record{HPTRes: "{'theta': ({}, 0.5)}", BestModel: "arima"}.BestError()
	assert.ErrorIs(t, err, ErrMissingModel)

	_, err = Record{HPTRes: "{'arima': ({}, 'high')}", BestModel: "arima"}.BestError()
	assert.ErrorIs(t, err, ErrParse)

	_, err = Record{HPTRes: "{'arima': 0.5}", BestModel: "arima"}.BestError()
	assert.ErrorIs(t, err, ErrParse)

	_, err = Record{HPTRes: "[1, 2]", BestModel: "arima"}.BestError()
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseFeatures(t *testing.T) {
	f, err := ParseFeatures("{'length': 100, 'mean': 0.5, 'hurst': None}")
	require.NoError(t, err)
	assert.Equal(t, 100.0, f["length"])
	assert.Equal(t, 0.5, f["mean"])
	assert.True(t, math.IsNaN(f["hurst"]))

	_, err = ParseFeatures(map[string]any{"x": "text"})
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, -1, pe.Pos)

	_, err = ParseFeatures(42)
	assert.ErrorIs(t, err, ErrParse)
}

func TestOrderedFeatures(t *testing.T) {
	names := func(fs []Feature) []string {
		out := make([]string, len(fs))
		for i, f := range fs {
			out[i] = f.Name
		}
		return out
	}

	r := Record{Features: map[string]float64{"b": 2, "a": 1, "c": 3}}
	got, err := r.OrderedFeatures()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names(got), "plain maps are sorted")

	r = Record{Features: "{'zeta': 1, 'alpha': -1, 'mid': None}"}
	got, err = r.OrderedFeatures()
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names(got))
	assert.Equal(t, -1.0, got[1].Value)
	assert.True(t, math.IsNaN(got[2].Value))

	d := NewDict()
	d.Set("y", 1.0)
	d.Set("x", 2.0)
	d.Set("y", 3.0)
	got, err = Record{Features: d}.OrderedFeatures()
	require.NoError(t, err)
	assert.Equal(t, []Feature{{Name: "y", Value: 3}, {Name: "x", Value: 2}}, got)

	_, err = Record{Features: "{'a': "}.OrderedFeatures()
	assert.ErrorIs(t, err, ErrParse)
}

func TestRecord_DecodeKeepsFeatureOrder(t *testing.T) {
	recs, err := ReadJSONL(strings.NewReader(
		`{"hpt_res": {"m": [{}, 0.1]}, "features": {"zeta": 1, "alpha": 2, "mid": null}, "best_model": "m"}` + "\n" +
			`{"hpt_res": {"m": [{}, 0.1]}, "features": "{'q': 1, 'b': 2}", "best_model": "m"}`))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	feats, err := recs[0].OrderedFeatures()
	require.NoError(t, err)
	require.Len(t, feats, 3)
	assert.Equal(t, "zeta", feats[0].Name)
	assert.Equal(t, "alpha", feats[1].Name)
	assert.Equal(t, "mid", feats[2].Name)
	assert.True(t, math.IsNaN(feats[2].Value))
	assert.Equal(t, "{'q': 1, 'b': 2}", recs[1].Features)

	out, err := json.Marshal(recs[0].Features)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeta": 1, "alpha": 2, "mid": null}`, string(out))
	assert.True(t, strings.HasPrefix(string(out), `{"zeta":1,"alpha":2`))

	yrecs, err := ReadYAML(strings.NewReader(`- hpt_res: {m: [{}, 0.1]}
  features:
    zeta: 1
    alpha: 2.5
  best_model: m
`))
	require.NoError(t, err)
	require.Len(t, yrecs, 1)
	feats, err = yrecs[0].OrderedFeatures()
	require.NoError(t, err)
	assert.Equal(t, []Feature{{Name: "zeta", Value: 1}, {Name: "alpha", Value: 2.5}}, feats)
	assert.Empty(t, yrecs[0].Missing())

	_, err = ReadJSONL(strings.NewReader(`{"features": {"a": }}`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	jsonl := filepath.Join(dir, "meta.jsonl")
	content := `{"hpt_res": {"arima": [{"p": 1}, 0.1]}, "features": {"mean": 1}, "best_model": "arima"}

{"hpt_res": "{'arima': ({}, 0.3)}", "features": "{'mean': 2}", "best_model": "arima"}
`
	require.NoError(t, os.WriteFile(jsonl, []byte(content), 0o644))
	recs, err := LoadFile(jsonl)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	e, err := recs[1].BestError()
	require.NoError(t, err)
	assert.Equal(t, 0.3, e)

	arr := filepath.Join(dir, "meta.json")
	require.NoError(t, os.WriteFile(arr, []byte(`[{"hpt_res": {"m": [{}, 0.2]}, "features": {"x": 3}, "best_model": "m"}]`), 0o644))
	recs, err = LoadFile(arr)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	_, err = ReadJSONL(strings.NewReader("{bad"))
	assert.Error(t, err)
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.yaml")
	content := `- hpt_res:
    arima: [{p: 1, q: 0}, 0.15]
    prophet: [{}, 0.4]
  features: {mean: 1.5, var: null}
  best_model: arima
- hpt_res: "{'theta': ({}, 0.25)}"
  features: "{'mean': 2}"
  best_model: theta
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	recs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	e, err := recs[0].BestError()
	require.NoError(t, err)
	assert.Equal(t, 0.15, e)
	feats, err := ParseFeatures(recs[0].Features)
	require.NoError(t, err)
	assert.Equal(t, 1.5, feats["mean"])
	assert.True(t, math.IsNaN(feats["var"]))

	e, err = recs[1].BestError()
	require.NoError(t, err)
	assert.Equal(t, 0.25, e)

	_, err = ReadYAML(strings.NewReader("hpt_res: [unclosed"))
	assert.Error(t, err)
}
