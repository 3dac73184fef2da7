package metadata

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads records from a JSON array file, from one JSON object per
// line for the .jsonl and .ndjson extensions, or from a YAML sequence for
// .yaml and .yml.
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return ReadJSONL(f)
	case ".yaml", ".yml":
		return ReadYAML(f)
	default:
		return ReadJSON(f)
	}
}

// ReadJSON decodes a JSON array of records.
func ReadJSON(r io.Reader) ([]Record, error) {
	var recs []Record
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return recs, nil
}

// ReadJSONL decodes one record per non-empty line.
func ReadJSONL(r io.Reader) ([]Record, error) {
	var recs []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, fmt.Errorf("decode metadata line %d: %w", line, err)
		}
		recs = append(recs, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// ReadYAML decodes a YAML sequence of records. Tuples in hpt_res are written
// as two-element sequences.
func ReadYAML(r io.Reader) ([]Record, error) {
	var recs []Record
	if err := yaml.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return recs, nil
}
