package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pawlift.yaml")
	cfg := Default()
	cfg.Model.ArtifactPath = "/tmp/params.json"
	cfg.Suggest.Timeout = 12 * time.Second
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Model.ArtifactPath != "/tmp/params.json" {
		t.Fatalf("artifact path mismatch: %s", got.Model.ArtifactPath)
	}
	if got.Suggest.Timeout != 12*time.Second {
		t.Fatalf("timeout mismatch: %s", got.Suggest.Timeout)
	}
	if got.Model.Threshold != 0.5 {
		t.Fatalf("threshold default mismatch: %f", got.Model.Threshold)
	}
}

func TestResolveEnvProviderKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg := Default()
	cfg.Suggest.Provider = "openai"
	cfg.ResolveEnv()
	if cfg.Suggest.APIKey != "sk-test" {
		t.Fatalf("expected env key, got %q", cfg.Suggest.APIKey)
	}

	t.Setenv("ANTHROPIC_API_KEY", "ak-test")
	cfg2 := Default()
	cfg2.Suggest.Provider = "anthropic"
	cfg2.ResolveEnv()
	if cfg2.Suggest.APIKey != "ak-test" {
		t.Fatalf("expected anthropic env key, got %q", cfg2.Suggest.APIKey)
	}
}
