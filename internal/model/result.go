package model

import "strings"

// NotFoundLabel is rendered in summaries for fields without a value.
const NotFoundLabel = "Not found"

// FieldValue is the outcome of matching one field: either a found,
// non-empty value or not found.
type FieldValue struct {
	Value string `json:"value,omitempty"`
	Found bool   `json:"found"`
}

// Found returns a FieldValue holding v.
func Found(v string) FieldValue {
	return FieldValue{Value: v, Found: true}
}

// NotFound returns the empty FieldValue.
func NotFound() FieldValue {
	return FieldValue{}
}

// String returns the value, or NotFoundLabel.
func (v FieldValue) String() string {
	if !v.Found {
		return NotFoundLabel
	}
	return v.Value
}

// FieldResult pairs a field key with its extracted value.
type FieldResult struct {
	Key string `json:"key"`
	FieldValue
}

// Result holds one FieldResult per configured field, in configuration order.
type Result struct {
	Fields []FieldResult `json:"fields"`
}

// Get returns the value for key and whether the key is present in the result.
func (r Result) Get(key string) (FieldValue, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.FieldValue, true
		}
	}
	return FieldValue{}, false
}

// Map returns found values keyed by field key.
func (r Result) Map() map[string]string {
	m := make(map[string]string, len(r.Fields))
	for _, f := range r.Fields {
		if f.Found {
			m[f.Key] = f.Value
		}
	}
	return m
}

// FoundCount returns the number of fields with a value.
func (r Result) FoundCount() int {
	n := 0
	for _, f := range r.Fields {
		if f.Found {
			n++
		}
	}
	return n
}

// Summary renders "<key>: <value>" lines joined by newlines.
func (r Result) Summary() string {
	var sb strings.Builder
	for i, f := range r.Fields {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(f.Key)
		sb.WriteString(": ")
		sb.WriteString(f.String())
	}
	return sb.String()
}
