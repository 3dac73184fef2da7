package export

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleVerdicts() []Verdict {
	return []Verdict{
		{Row: 0, Source: "series", Predictable: true, Probability: 0.125, Method: "KNN", RunID: "r1"},
		{Row: 1, Source: "features", Predictable: false, Probability: 0.75, Method: "KNN", RunID: "r1"},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleVerdicts()))
	want := "row,source,predictable,probability,method,run_id\n" +
		"0,series,true,0.125,KNN,r1\n" +
		"1,features,false,0.75,KNN,r1\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleVerdicts()))
	var got []Verdict
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleVerdicts(), got)
}

func TestReadFrame(t *testing.T) {
	f, err := ReadFrame(strings.NewReader("f1, f2\n1.5,\n-2,NaN\n"))
	require.NoError(t, err)
	require.Len(t, f, 2)
	assert.Equal(t, []float64{1.5, -2}, f["f1"])
	require.Len(t, f["f2"], 2)
	assert.True(t, math.IsNaN(f["f2"][0]))
	assert.True(t, math.IsNaN(f["f2"][1]))
}

func TestReadFrame_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":     "",
		"no rows":   "f1,f2\n",
		"dup":       "f1,f1\n1,2\n",
		"unnamed":   "f1,\n1,2\n",
		"bad value": "f1\nabc\n",
		"ragged":    "f1,f2\n1\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadFrame(strings.NewReader(data))
			assert.Error(t, err)
		})
	}
}
