package feature

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FieldKind tells consumers how to interpret a field's value.
type FieldKind string

const (
	FieldCount FieldKind = "count" // non-negative integer stored as float64
	FieldFlag  FieldKind = "flag"  // boolean as 0/1
	FieldScore FieldKind = "score" // real-valued
)

// Field is one named slot of the feature vector.
type Field struct {
	Name    string    `yaml:"name"`
	Kind    FieldKind `yaml:"kind"`
	Default float64   `yaml:"default"`
}

// Schema is the versioned, ordered field set shared by training and inference.
// A vector is only comparable to trained parameters carrying the same version
// and field list.
type Schema struct {
	Version string  `yaml:"version"`
	Fields  []Field `yaml:"fields"`

	index map[string]int
}

// BuiltinVersion identifies the schema compiled into the binary.
const BuiltinVersion = "v1"

// Builtin returns the canonical schema. Field order is part of the contract.
func Builtin() *Schema {
	s := &Schema{
		Version: BuiltinVersion,
		Fields: []Field{
			{Name: "sentiment_score", Kind: FieldScore},
			{Name: "num_adjectives", Kind: FieldCount},
			{Name: "num_verbs", Kind: FieldCount},
			{Name: "num_exclamations", Kind: FieldCount},
			{Name: "has_question", Kind: FieldFlag},
			{Name: "num_emojis", Kind: FieldCount},
			{Name: "contains_adopt_keywords", Kind: FieldFlag},
			{Name: "has_urgency_words", Kind: FieldFlag},
			{Name: "has_pronouns", Kind: FieldFlag},
			{Name: "num_words", Kind: FieldCount},
			{Name: "title_length", Kind: FieldCount},
			{Name: "contains_money", Kind: FieldFlag},
			{Name: "num_lines", Kind: FieldCount},
		},
	}
	s.buildIndex()
	return s
}

// LoadSchema reads a schema file. An empty path yields the builtin schema.
func LoadSchema(path string) (*Schema, error) {
	if path == "" {
		return Builtin(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	var s Schema
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if s.Version == "" {
		return nil, fmt.Errorf("schema %s: missing version", path)
	}
	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("schema %s: no fields", path)
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema %s: unnamed field", path)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("schema %s: duplicate field %q", path, f.Name)
		}
		seen[f.Name] = true
	}
	s.buildIndex()
	return &s, nil
}

// SaveSchema writes a schema as YAML, for seeding a schema file from the builtin.
func SaveSchema(path string, s *Schema) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func (s *Schema) buildIndex() {
	s.index = make(map[string]int, len(s.Fields))
	for i, f := range s.Fields {
		s.index[f.Name] = i
	}
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.Fields) }

// Index returns the position of a named field.
func (s *Schema) Index(name string) (int, bool) {
	if s.index == nil {
		s.buildIndex()
	}
	i, ok := s.index[name]
	return i, ok
}

// FieldNames returns field names in schema order.
func (s *Schema) FieldNames() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// Defaults returns the all-default value slice in schema order.
func (s *Schema) Defaults() []float64 {
	out := make([]float64, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Default
	}
	return out
}

// SameShape reports whether two schemas agree on version, order, and names.
func (s *Schema) SameShape(other *Schema) bool {
	if other == nil || s.Version != other.Version || len(s.Fields) != len(other.Fields) {
		return false
	}
	for i := range s.Fields {
		if s.Fields[i].Name != other.Fields[i].Name {
			return false
		}
	}
	return true
}

// Vector is an immutable ordered value set over a schema. Downstream
// consumers must treat it as read-only; a revision produces a new Vector.
type Vector struct {
	schema *Schema
	values []float64
}

// NewVector wraps values in schema order. The length must match the schema.
func NewVector(s *Schema, values []float64) (Vector, error) {
	if len(values) != s.Len() {
		return Vector{}, fmt.Errorf("vector has %d values, schema %s has %d fields", len(values), s.Version, s.Len())
	}
	v := make([]float64, len(values))
	copy(v, values)
	return Vector{schema: s, values: v}, nil
}

// Schema returns the schema the vector was built against.
func (v Vector) Schema() *Schema { return v.schema }

// Len returns the number of values.
func (v Vector) Len() int { return len(v.values) }

// At returns the value at position i.
func (v Vector) At(i int) float64 { return v.values[i] }

// Get returns a named value.
func (v Vector) Get(name string) (float64, bool) {
	i, ok := v.schema.Index(name)
	if !ok {
		return 0, false
	}
	return v.values[i], true
}

// Values returns a copy of the ordered values.
func (v Vector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}

// Map returns name -> value, for JSON surfaces and debugging.
func (v Vector) Map() map[string]float64 {
	out := make(map[string]float64, len(v.values))
	for i, f := range v.schema.Fields {
		out[f.Name] = v.values[i]
	}
	return out
}

// Equal reports value-for-value equality over the same schema shape.
func (v Vector) Equal(other Vector) bool {
	if v.schema == nil || other.schema == nil || !v.schema.SameShape(other.schema) {
		return false
	}
	for i := range v.values {
		if v.values[i] != other.values[i] {
			return false
		}
	}
	return true
}
