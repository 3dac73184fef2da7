package metadata

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLiteral_Structures(t *testing.T) {
	v, err := ParseLiteral(`{'arima': ({'p': 1, 'd': 1, 'q': 0}, 0.12), "prophet": ({}, 3e-1,), 'tags': [True, False, None]}`)
	require.NoError(t, err)
	m, ok := v.(map[string]any)
	require.True(t, ok)

	arima := m["arima"].([]any)
	assert.Equal(t, map[string]any{"p": int64(1), "d": int64(1), "q": int64(0)}, arima[0])
	assert.Equal(t, 0.12, arima[1])
	assert.Equal(t, 0.3, m["prophet"].([]any)[1])
	assert.Equal(t, []any{true, false, nil}, m["tags"])
}

func TestParseLiteral_Scalars(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{"42", int64(42)},
		{"-1.5", -1.5},
		{"+2", int64(2)},
		{"1_000", int64(1000)},
		{"1e-3", 0.001},
		{`'it\'s'`, "it's"},
		{`"tab\there"`, "tab\there"},
		{`'é'`, "é"},
		{"-inf", math.Inf(-1)},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseLiteral(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
	nan, err := ParseLiteral("nan")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(nan.(float64)))
}

func TestParseLiteral_RejectsCode(t *testing.T) {
	for _, in := range []string{
		"__import__('os').system('ls')",
		"np.float64(0.1)",
		"{'a': 1 + 2}",
		"{1: 2}",
		"{'a': 1",
		"'unterminated",
		"[1, 2",
		"",
		"{'a' 1}",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseLiteral(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse))
			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
}

func TestParseLiteral_NestingLimit(t *testing.T) {
	_, err := ParseLiteral(strings.Repeat("[", 20_000_000))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "nesting too deep", pe.Msg)
	assert.Equal(t, maxLiteralDepth, pe.Pos)

	_, err = ParseLiteral("{'a': " + strings.Repeat("(", 300) + strings.Repeat(")", 300) + "}")
	assert.ErrorIs(t, err, ErrParse)

	deep := strings.Repeat("[", maxLiteralDepth) + strings.Repeat("]", maxLiteralDepth)
	_, err = ParseLiteral(deep)
	assert.NoError(t, err)
}

func TestParseLiteral_TopLevelKeyOrder(t *testing.T) {
	_, keys, err := parseLiteral("{'zeta': 1, 'alpha': {'inner': 2, 'b': 3}, 'mid': 3, 'zeta': 4}")
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys)

	_, keys, err = parseLiteral("[1, 2]")
	require.NoError(t, err)
	assert.Nil(t, keys)
}
