package tasks

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one top-level entry of an object-shaped result, carrying the
// position its key holds in the raw JSON. Plain map decoding loses that
// order, and downstream renderers want fields in the order the model
// emitted them.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Fields returns the top-level fields of an object-shaped result in
// document order.
func Fields(raw json.RawMessage) ([]Field, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("decode result object: %w", err)
	}

	var fields []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode result object: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("decode result object: expected object key")
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("decode result object: %w", err)
		}
		fields = append(fields, Field{Key: key, Value: value})
	}
	return fields, nil
}

// TableColumns returns the union of keys across a list-of-objects result,
// ordered by first appearance.
func TableColumns(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := expectDelim(dec, '['); err != nil {
		return nil, fmt.Errorf("decode table result: %w", err)
	}

	seen := map[string]bool{}
	var columns []string
	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, fmt.Errorf("decode table result: %w", err)
		}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("decode table result: %w", err)
			}
			key, ok := tok.(string)
			if !ok {
				return nil, fmt.Errorf("decode table result: expected object key")
			}
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("decode table result: %w", err)
			}
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("decode table result: %w", err)
		}
	}
	return columns, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("expected %q", want)
	}
	return nil
}
