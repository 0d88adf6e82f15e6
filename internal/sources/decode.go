package sources

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// row reads fixed-position fields out of a positional upstream record.
// A present value of the wrong type marks the row bad; absent or null
// values read as unknown.
type row struct {
	fields []any
	bad    bool
}

func decodeRow(raw json.RawMessage, minFields int) (*row, bool) {
	var fields []any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	if len(fields) < minFields {
		return nil, false
	}
	return &row{fields: fields}, true
}

func (r *row) at(i int) any {
	if i < 0 || i >= len(r.fields) {
		return nil
	}
	return r.fields[i]
}

func (r *row) number(i int) *float64 {
	switch v := r.at(i).(type) {
	case nil:
		return nil
	case float64:
		return &v
	default:
		r.bad = true
		return nil
	}
}

// flag accepts JSON booleans and the 0/1 integers some feeds use.
func (r *row) flag(i int) *bool {
	switch v := r.at(i).(type) {
	case nil:
		return nil
	case bool:
		return &v
	case float64:
		b := v != 0
		return &b
	default:
		r.bad = true
		return nil
	}
}

func (r *row) text(i int) string {
	if s, ok := r.at(i).(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

type member struct {
	key string
	raw json.RawMessage
}

// decodeObject reads a JSON object keeping member order, which maps lose.
func decodeObject(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var members []member
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		members = append(members, member{key: key, raw: raw})
	}
	return members, nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
