package metadata

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrParse is wrapped by every error produced while turning literal strings
// or loosely typed values into typed metadata.
var ErrParse = errors.New("metadata parse error")

// ParseError reports where a literal could not be read. Pos is the byte
// offset in the input, or -1 when the failure is not tied to a position.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	if e.Pos < 0 {
		return "parse: " + e.Msg
	}
	return fmt.Sprintf("parse: offset %d: %s", e.Pos, e.Msg)
}

// Unwrap allows errors.Is(err, ErrParse).
func (e *ParseError) Unwrap() error { return ErrParse }

func parseErrorf(pos int, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// maxLiteralDepth bounds how deeply dicts, lists and tuples may nest.
const maxLiteralDepth = 256

// ParseLiteral parses a Python-style literal made of dicts, lists, tuples,
// strings, numbers, booleans and None. Dicts become map[string]any, lists and
// tuples []any, integers int64, other numbers float64 and None nil.
func ParseLiteral(s string) (any, error) {
	v, _, err := parseLiteral(s)
	return v, err
}

// parseLiteral also returns the keys of a top-level dict in source order.
func parseLiteral(s string) (any, []string, error) {
	p := &literalParser{src: s}
	p.skipSpace()
	v, err := p.value()
	if err != nil {
		return nil, nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, nil, parseErrorf(p.pos, "unexpected trailing input %q", p.rest(10))
	}
	return v, p.topKeys, nil
}

type literalParser struct {
	src     string
	pos     int
	depth   int
	topKeys []string
}

func (p *literalParser) rest(n int) string {
	r := p.src[p.pos:]
	if len(r) > n {
		r = r[:n]
	}
	return r
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *literalParser) value() (any, error) {
	if p.pos >= len(p.src) {
		return nil, parseErrorf(p.pos, "unexpected end of input")
	}
	c := p.src[p.pos]
	if c == '{' || c == '[' || c == '(' {
		if p.depth >= maxLiteralDepth {
			return nil, parseErrorf(p.pos, "nesting too deep")
		}
		p.depth++
		defer func() { p.depth-- }()
	}
	switch {
	case c == '{':
		return p.dict()
	case c == '[':
		return p.sequence('[', ']')
	case c == '(':
		return p.sequence('(', ')')
	case c == '\'' || c == '"':
		return p.str()
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	case isIdentStart(c):
		return p.ident()
	}
	return nil, parseErrorf(p.pos, "unexpected character %q", c)
}

func (p *literalParser) dict() (any, error) {
	p.pos++ // {
	out := make(map[string]any)
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return out, nil
		}
		keyPos := p.pos
		k, err := p.value()
		if err != nil {
			return nil, err
		}
		key, ok := k.(string)
		if !ok {
			return nil, parseErrorf(keyPos, "dict key must be a string, got %T", k)
		}
		p.skipSpace()
		if p.peek() != ':' {
			return nil, parseErrorf(p.pos, "expected ':' after dict key")
		}
		p.pos++
		p.skipSpace()
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		if _, dup := out[key]; !dup && p.depth == 1 {
			p.topKeys = append(p.topKeys, key)
		}
		out[key] = v
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return out, nil
		default:
			return nil, parseErrorf(p.pos, "expected ',' or '}' in dict")
		}
	}
}

func (p *literalParser) sequence(open, closing byte) (any, error) {
	start := p.pos
	p.pos++ // open
	out := []any{}
	for {
		p.skipSpace()
		if p.peek() == closing {
			p.pos++
			return out, nil
		}
		if p.pos >= len(p.src) {
			return nil, parseErrorf(start, "unterminated %c", open)
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case closing:
			p.pos++
			return out, nil
		default:
			return nil, parseErrorf(p.pos, "expected ',' or '%c'", closing)
		}
	}
}

func (p *literalParser) str() (any, error) {
	start := p.pos
	quote := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case quote:
			p.pos++
			return b.String(), nil
		case '\\':
			if p.pos+1 >= len(p.src) {
				return nil, parseErrorf(p.pos, "dangling escape")
			}
			if err := p.escape(&b); err != nil {
				return nil, err
			}
		case '\n':
			return nil, parseErrorf(p.pos, "newline in string")
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
	return nil, parseErrorf(start, "unterminated string")
}

func (p *literalParser) escape(b *strings.Builder) error {
	c := p.src[p.pos+1]
	p.pos += 2
	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case '\\', '\'', '"':
		b.WriteByte(c)
	case 'u', 'x':
		n := 4
		if c == 'x' {
			n = 2
		}
		if p.pos+n > len(p.src) {
			return parseErrorf(p.pos, "short \\%c escape", c)
		}
		code, err := strconv.ParseUint(p.src[p.pos:p.pos+n], 16, 32)
		if err != nil {
			return parseErrorf(p.pos, "invalid \\%c escape", c)
		}
		b.WriteRune(rune(code))
		p.pos += n
	default:
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return nil
}

func (p *literalParser) number() (any, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
		if isIdentStart(p.peek()) {
			v, err := p.ident()
			if err != nil {
				return nil, err
			}
			f, ok := v.(float64)
			if !ok {
				return nil, parseErrorf(start, "sign applied to non-number")
			}
			if p.src[start] == '-' {
				f = -f
			}
			return f, nil
		}
	}
	for p.pos < len(p.src) && strings.IndexByte("0123456789.eE+-_", p.src[p.pos]) >= 0 {
		c := p.src[p.pos]
		if (c == '+' || c == '-') && p.src[p.pos-1] != 'e' && p.src[p.pos-1] != 'E' {
			break
		}
		p.pos++
	}
	text := strings.ReplaceAll(p.src[start:p.pos], "_", "")
	if !strings.ContainsAny(text, ".eE") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return i, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, parseErrorf(start, "invalid number %q", text)
	}
	return f, nil
}

func (p *literalParser) ident() (any, error) {
	start := p.pos
	for p.pos < len(p.src) && (isIdentStart(p.src[p.pos]) || (p.src[p.pos] >= '0' && p.src[p.pos] <= '9')) {
		p.pos++
	}
	name := p.src[start:p.pos]
	switch name {
	case "None":
		return nil, nil
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "nan", "NaN":
		return math.NaN(), nil
	case "inf", "Infinity":
		return math.Inf(1), nil
	}
	return nil, parseErrorf(start, "unsupported name %q", name)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
