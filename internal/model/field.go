package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrInvalidFieldSpec is wrapped by every configuration error returned from
// NewFieldRegistry.
var ErrInvalidFieldSpec = eris.New("invalid field spec")

// FieldSpec describes one target field and the alias patterns that introduce
// its value on a line of OCR text. Patterns are matched case-insensitively and
// in order: the first pattern wins, so a short alias that is a substring of a
// longer one must be listed after it.
type FieldSpec struct {
	Key      string   `json:"key" yaml:"key"`
	Patterns []string `json:"patterns" yaml:"patterns"`
}

// FieldRegistry is an ordered, validated collection of field specs. It is
// never mutated after construction and may be shared across goroutines.
type FieldRegistry struct {
	specs []FieldSpec
	byKey map[string]int
}

// NewFieldRegistry validates specs and returns an indexed FieldRegistry.
// Empty keys, duplicate keys, empty pattern lists and blank patterns are rejected.
func NewFieldRegistry(specs []FieldSpec) (*FieldRegistry, error) {
	r := &FieldRegistry{
		specs: make([]FieldSpec, 0, len(specs)),
		byKey: make(map[string]int, len(specs)),
	}
	for i, s := range specs {
		key := strings.TrimSpace(s.Key)
		if key == "" {
			return nil, eris.Wrapf(ErrInvalidFieldSpec, "field %d: empty key", i)
		}
		if _, dup := r.byKey[key]; dup {
			return nil, eris.Wrapf(ErrInvalidFieldSpec, "field %q: duplicate key", key)
		}
		if len(s.Patterns) == 0 {
			return nil, eris.Wrapf(ErrInvalidFieldSpec, "field %q: no patterns", key)
		}
		patterns := make([]string, len(s.Patterns))
		for j, p := range s.Patterns {
			if strings.TrimSpace(p) == "" {
				return nil, eris.Wrapf(ErrInvalidFieldSpec, "field %q: pattern %d is blank", key, j)
			}
			patterns[j] = p
		}
		r.byKey[key] = len(r.specs)
		r.specs = append(r.specs, FieldSpec{Key: key, Patterns: patterns})
	}
	return r, nil
}

// MustFieldRegistry is like NewFieldRegistry but panics on invalid input.
// Intended for static configuration.
func MustFieldRegistry(specs []FieldSpec) *FieldRegistry {
	r, err := NewFieldRegistry(specs)
	if err != nil {
		panic(err)
	}
	return r
}

// Specs returns a copy of the registered specs in configuration order.
func (r *FieldRegistry) Specs() []FieldSpec {
	out := make([]FieldSpec, len(r.specs))
	for i, s := range r.specs {
		out[i] = FieldSpec{Key: s.Key, Patterns: append([]string(nil), s.Patterns...)}
	}
	return out
}

// ByKey returns the spec for key, or nil if not registered.
func (r *FieldRegistry) ByKey(key string) *FieldSpec {
	i, ok := r.byKey[key]
	if !ok {
		return nil
	}
	s := r.specs[i]
	return &FieldSpec{Key: s.Key, Patterns: append([]string(nil), s.Patterns...)}
}

// Keys returns the field keys in configuration order.
func (r *FieldRegistry) Keys() []string {
	keys := make([]string, len(r.specs))
	for i, s := range r.specs {
		keys[i] = s.Key
	}
	return keys
}

// Len returns the number of registered fields.
func (r *FieldRegistry) Len() int {
	return len(r.specs)
}
