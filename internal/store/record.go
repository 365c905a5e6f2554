package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// record is a value decoded into its JSON fields, ready to be written.
type record struct {
	id     string
	fields map[string]any
}

// encodeRecord marshals v and extracts its primary key.
// Numbers are kept as json.Number so decimal values round-trip exactly.
func encodeRecord(v any) (record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return record{}, fmt.Errorf("marshal record: %w", err)
	}
	return decodeRecord(raw)
}

func decodeRecord(raw []byte) (record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return record{}, fmt.Errorf("decode record: %w", err)
	}
	if fields == nil {
		return record{}, ErrMissingKey
	}
	id, _ := fields["id"].(string)
	if id == "" {
		return record{}, ErrMissingKey
	}
	return record{id: id, fields: fields}, nil
}

func (r record) data() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r.fields); err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

func (r record) tenant() string {
	tenant, _ := r.fields["companyId"].(string)
	return tenant
}

// columnValue converts a JSON field to the value stored in an index column.
// Nested objects and arrays are not indexable and are stored as NULL.
func columnValue(v any) any {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return 1
		}
		return 0
	case int, int64:
		return val
	case fmt.Stringer:
		return val.String()
	}
	return nil
}
