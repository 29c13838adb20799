package feature

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSchemaSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	if err := SaveSchema(path, Builtin()); err != nil {
		t.Fatal(err)
	}
	s, err := LoadSchema(path)
	if err != nil {
		t.Fatal(err)
	}
	if !s.SameShape(Builtin()) {
		t.Fatalf("reloaded schema diverged from builtin")
	}
}

func TestLoadSchemaRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()

	noVersion := filepath.Join(dir, "nover.yaml")
	if err := os.WriteFile(noVersion, []byte("fields:\n  - name: a\n    kind: count\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSchema(noVersion); err == nil {
		t.Fatalf("expected missing-version error")
	}

	dup := filepath.Join(dir, "dup.yaml")
	body := "version: v9\nfields:\n  - name: a\n    kind: count\n  - name: a\n    kind: flag\n"
	if err := os.WriteFile(dup, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSchema(dup); err == nil {
		t.Fatalf("expected duplicate-field error")
	}
}

func TestLoadSchemaEmptyPathIsBuiltin(t *testing.T) {
	s, err := LoadSchema("")
	if err != nil {
		t.Fatal(err)
	}
	if s.Version != BuiltinVersion {
		t.Fatalf("expected builtin version, got %s", s.Version)
	}
}

func TestVectorAccessors(t *testing.T) {
	s := Builtin()
	vals := s.Defaults()
	i, ok := s.Index("num_words")
	if !ok {
		t.Fatal("num_words missing from builtin schema")
	}
	vals[i] = 7
	v, err := NewVector(s, vals)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := v.Get("num_words"); got != 7 {
		t.Fatalf("Get(num_words) = %v", got)
	}
	if v.At(i) != 7 {
		t.Fatalf("At(%d) = %v", i, v.At(i))
	}
	// Values() hands out a copy; mutating it must not touch the vector.
	v.Values()[i] = 99
	if v.At(i) != 7 {
		t.Fatalf("vector mutated through Values()")
	}
	if _, err := NewVector(s, vals[:3]); err == nil {
		t.Fatalf("expected length mismatch error")
	}
}
