package predict

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"pawlift/internal/feature"
)

// Coefficients hold one linear model: bias plus a weight per schema field,
// in schema order.
type Coefficients struct {
	Bias    float64   `json:"bias"`
	Weights []float64 `json:"weights"`
}

// VocabWeight is a vocabulary word with its trained importance. The artifact
// carries these for the replacement suggester and corpus lexicons.
type VocabWeight struct {
	Word   string  `json:"word"`
	Weight float64 `json:"weight"`
}

// KindParams bundles the per-pet-kind models.
type KindParams struct {
	Classifier Coefficients  `json:"classifier"`
	Regressor  Coefficients  `json:"regressor"`
	Vocab      []VocabWeight `json:"vocab,omitempty"`
}

// Params is the trained-parameter artifact, keyed by the schema version it
// was fitted against. Loaded read-only; reload goes through Handle.Swap.
type Params struct {
	SchemaVersion string                `json:"schema_version"`
	Fields        []string              `json:"fields"`
	TrainedAt     time.Time             `json:"trained_at"`
	Kinds         map[string]KindParams `json:"kinds"`
}

// LoadParams reads and validates an artifact against the runtime schema.
// Version drift or a field-list disagreement is fatal here, not a warning.
func LoadParams(path string, schema *feature.Schema) (*Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("trained artifact: %w", err)
	}
	var p Params
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("trained artifact %s: %w", path, err)
	}
	if err := p.Validate(schema); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the artifact's internal consistency against a schema.
func (p *Params) Validate(schema *feature.Schema) error {
	if p.SchemaVersion != schema.Version {
		return &SchemaMismatchError{Want: p.SchemaVersion, Got: schema.Version, Detail: "artifact vs runtime schema"}
	}
	names := schema.FieldNames()
	if len(p.Fields) != len(names) {
		return &SchemaMismatchError{Want: p.SchemaVersion, Got: schema.Version,
			Detail: fmt.Sprintf("artifact lists %d fields, schema has %d", len(p.Fields), len(names))}
	}
	for i := range names {
		if p.Fields[i] != names[i] {
			return &SchemaMismatchError{Want: p.SchemaVersion, Got: schema.Version,
				Detail: fmt.Sprintf("field %d is %q in artifact, %q in schema", i, p.Fields[i], names[i])}
		}
	}
	if len(p.Kinds) == 0 {
		return fmt.Errorf("trained artifact: no per-kind parameters")
	}
	for kind, kp := range p.Kinds {
		if len(kp.Classifier.Weights) != len(names) {
			return fmt.Errorf("trained artifact: %s classifier has %d weights, schema has %d fields", kind, len(kp.Classifier.Weights), len(names))
		}
		if len(kp.Regressor.Weights) != len(names) {
			return fmt.Errorf("trained artifact: %s regressor has %d weights, schema has %d fields", kind, len(kp.Regressor.Weights), len(names))
		}
	}
	return nil
}

// Kind returns the parameter set for a pet kind.
func (p *Params) Kind(k feature.Kind) (KindParams, error) {
	kp, ok := p.Kinds[string(k)]
	if !ok {
		return KindParams{}, fmt.Errorf("trained artifact: no parameters for kind %q", k)
	}
	return kp, nil
}

// SaveParams writes an artifact, mainly for seeding fixtures and examples.
func SaveParams(path string, p *Params) error {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// checkVector guards every prediction: the vector's schema must agree with
// the artifact on version and on the exact ordered field list.
func (p *Params) checkVector(v feature.Vector) *SchemaMismatchError {
	s := v.Schema()
	if s == nil {
		return &SchemaMismatchError{Want: p.SchemaVersion, Got: "none", Detail: "vector has no schema"}
	}
	if s.Version != p.SchemaVersion {
		return &SchemaMismatchError{Want: p.SchemaVersion, Got: s.Version}
	}
	names := s.FieldNames()
	if len(names) != len(p.Fields) {
		return &SchemaMismatchError{Want: p.SchemaVersion, Got: s.Version,
			Detail: fmt.Sprintf("vector has %d fields, artifact trained on %d", len(names), len(p.Fields))}
	}
	for i := range names {
		if names[i] != p.Fields[i] {
			return &SchemaMismatchError{Want: p.SchemaVersion, Got: s.Version,
				Detail: fmt.Sprintf("field %d is %q, artifact trained on %q", i, names[i], p.Fields[i])}
		}
	}
	return nil
}
