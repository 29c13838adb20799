package predict

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"pawlift/internal/feature"
)

func testParams(s *feature.Schema) *Params {
	n := s.Len()
	flat := func(bias float64) Coefficients {
		return Coefficients{Bias: bias, Weights: make([]float64, n)}
	}
	// sigmoid(0.405) ~ 0.60, so the classifier sits between the 0.5 and 0.7 cutoffs
	kp := KindParams{Classifier: flat(0.405), Regressor: flat(42)}
	return &Params{
		SchemaVersion: s.Version,
		Fields:        s.FieldNames(),
		TrainedAt:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Kinds:         map[string]KindParams{"cat": kp, "dog": kp},
	}
}

func testVector(t *testing.T, s *feature.Schema) feature.Vector {
	t.Helper()
	v, err := feature.NewVector(s, s.Defaults())
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestClassifyDeterministic(t *testing.T) {
	s := feature.Builtin()
	p := testParams(s)
	v := testVector(t, s)
	l1, p1, err := Classify(p, feature.Cat, v, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		l2, p2, err := Classify(p, feature.Cat, v, 0.5)
		if err != nil || l2 != l1 || p2 != p1 {
			t.Fatalf("classification drifted: %s/%v vs %s/%v (%v)", l1, p1, l2, p2, err)
		}
	}
	if p1 <= 0 || p1 >= 1 {
		t.Fatalf("probability out of range: %v", p1)
	}
}

func TestThresholdFlipsLabelWithoutTouchingRegressor(t *testing.T) {
	s := feature.Builtin()
	p := testParams(s)
	v := testVector(t, s)

	label5, prob, err := Classify(p, feature.Dog, v, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	label7, _, err := Classify(p, feature.Dog, v, 0.7)
	if err != nil {
		t.Fatal(err)
	}
	if label5 != High || label7 != Low {
		t.Fatalf("threshold change did not flip label: %s then %s (prob %v)", label5, label7, prob)
	}

	s1, err := Regress(p, feature.Dog, v)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := Regress(p, feature.Dog, v)
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 || s1 != 42 {
		t.Fatalf("regressor changed across threshold settings: %v vs %v", s1, s2)
	}
}

func TestRegressOutputNotClamped(t *testing.T) {
	s := feature.Builtin()
	p := testParams(s)
	kp := p.Kinds["dog"]
	for i := range kp.Regressor.Weights {
		kp.Regressor.Weights[i] = 1e6
	}
	p.Kinds["dog"] = kp

	vals := s.Defaults()
	for i := range vals {
		vals[i] = 1000
	}
	v, err := feature.NewVector(s, vals)
	if err != nil {
		t.Fatal(err)
	}
	score, err := Regress(p, feature.Dog, v)
	if err != nil {
		t.Fatal(err)
	}
	want := 42 + float64(s.Len())*1e9
	if math.Abs(score-want) > 1 {
		t.Fatalf("expected unclamped %v, got %v", want, score)
	}
}

func TestSchemaMismatchDetected(t *testing.T) {
	s := feature.Builtin()
	p := testParams(s)

	extra := &feature.Schema{Version: s.Version, Fields: append(append([]feature.Field{}, s.Fields...), feature.Field{Name: "num_hashtags", Kind: feature.FieldCount})}
	vExtra, err := feature.NewVector(extra, extra.Defaults())
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := Classify(p, feature.Cat, vExtra, 0.5); !isSchemaMismatch(err) {
		t.Fatalf("added field: expected SchemaMismatchError, got %v", err)
	}

	removed := &feature.Schema{Version: s.Version, Fields: s.Fields[:s.Len()-1]}
	vRemoved, err := feature.NewVector(removed, removed.Defaults())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Regress(p, feature.Cat, vRemoved); !isSchemaMismatch(err) {
		t.Fatalf("removed field: expected SchemaMismatchError, got %v", err)
	}

	otherVersion := &feature.Schema{Version: "v2", Fields: s.Fields}
	vOther, err := feature.NewVector(otherVersion, otherVersion.Defaults())
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := Classify(p, feature.Cat, vOther, 0.5); !isSchemaMismatch(err) {
		t.Fatalf("version drift: expected SchemaMismatchError, got %v", err)
	}
}

func isSchemaMismatch(err error) bool {
	var sm *SchemaMismatchError
	return errors.As(err, &sm)
}

func TestParamsValidate(t *testing.T) {
	s := feature.Builtin()
	p := testParams(s)
	if err := p.Validate(s); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}

	bad := testParams(s)
	bad.SchemaVersion = "v0"
	if err := bad.Validate(s); !isSchemaMismatch(err) {
		t.Fatalf("expected version mismatch, got %v", err)
	}

	short := testParams(s)
	kp := short.Kinds["cat"]
	kp.Classifier.Weights = kp.Classifier.Weights[:3]
	short.Kinds["cat"] = kp
	if err := short.Validate(s); err == nil {
		t.Fatalf("expected weight-count error")
	}
}

func TestHandleLazyLoadSwapClose(t *testing.T) {
	s := feature.Builtin()
	dir := t.TempDir()

	good := filepath.Join(dir, "params.json")
	if err := SaveParams(good, testParams(s)); err != nil {
		t.Fatal(err)
	}
	h := NewHandle(good, s)
	p, err := h.Params()
	if err != nil {
		t.Fatal(err)
	}
	if p.SchemaVersion != s.Version {
		t.Fatalf("loaded wrong artifact: %s", p.SchemaVersion)
	}

	// A bad replacement must be rejected and leave the active set intact.
	bad := filepath.Join(dir, "bad.json")
	badParams := testParams(s)
	badParams.SchemaVersion = "v0"
	if err := SaveParams(bad, badParams); err != nil {
		t.Fatal(err)
	}
	if err := h.Swap(bad); err == nil {
		t.Fatalf("expected swap rejection for drifted artifact")
	}
	if again, err := h.Params(); err != nil || again != p {
		t.Fatalf("active set disturbed by failed swap: %v", err)
	}

	next := filepath.Join(dir, "next.json")
	nextParams := testParams(s)
	nextParams.TrainedAt = nextParams.TrainedAt.Add(24 * time.Hour)
	if err := SaveParams(next, nextParams); err != nil {
		t.Fatal(err)
	}
	if err := h.Swap(next); err != nil {
		t.Fatal(err)
	}
	swapped, err := h.Params()
	if err != nil {
		t.Fatal(err)
	}
	if !swapped.TrainedAt.After(p.TrainedAt) {
		t.Fatalf("swap did not replace the active set")
	}

	h.Close()
	if _, err := h.Params(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestHandleMissingArtifact(t *testing.T) {
	h := NewHandle(filepath.Join(t.TempDir(), "absent.json"), feature.Builtin())
	if _, err := h.Params(); err == nil {
		t.Fatalf("expected error for missing artifact")
	}
}
