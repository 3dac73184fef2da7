package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Dict is a string keyed mapping that remembers the order keys were first
// set in. Feature columns follow that order.
type Dict struct {
	Keys   []string
	Values map[string]any
}

// NewDict returns an empty Dict.
func NewDict() *Dict {
	return &Dict{Values: make(map[string]any)}
}

// Set stores v under k. A key that is set again keeps its first position.
func (d *Dict) Set(k string, v any) {
	if d.Values == nil {
		d.Values = make(map[string]any)
	}
	if _, ok := d.Values[k]; !ok {
		d.Keys = append(d.Keys, k)
	}
	d.Values[k] = v
}

// Get returns the value stored under k.
func (d *Dict) Get(k string) (any, bool) {
	v, ok := d.Values[k]
	return v, ok
}

// Len returns the number of keys.
func (d *Dict) Len() int { return len(d.Keys) }

// UnmarshalJSON decodes a JSON object, keeping its key order. Nested values
// are decoded as plain Go values.
func (d *Dict) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decode dict: got %v, want object", tok)
	}
	*d = Dict{Values: make(map[string]any)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("decode dict: key %v is not a string", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("decode dict key %q: %w", key, err)
		}
		d.Set(key, v)
	}
	_, err = dec.Token()
	return err
}

// MarshalJSON writes the keys in their stored order.
func (d *Dict) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(d.Values[k])
		if err != nil {
			return nil, fmt.Errorf("encode dict key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes a YAML mapping, keeping its key order.
func (d *Dict) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("decode dict: line %d: want mapping", node.Line)
	}
	*d = Dict{Values: make(map[string]any)}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return fmt.Errorf("decode dict: line %d: %w", node.Content[i].Line, err)
		}
		var v any
		if err := node.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("decode dict key %q: %w", key, err)
		}
		d.Set(key, v)
	}
	return nil
}
