package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model.
// It captures the model artifact, suggestion loop, storage, and serving surfaces.
type Config struct {
	Model    ModelConfig    `yaml:"model"`
	Suggest  SuggestConfig  `yaml:"suggest"`
	Storage  StorageConfig  `yaml:"storage"`
	Labels   LabelsConfig   `yaml:"labels"`
	API      APIConfig      `yaml:"api"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

type ModelConfig struct {
	// Trained-parameter artifact (JSON). Required by every scoring surface.
	ArtifactPath string `yaml:"artifactPath"`
	// Feature schema file. If empty, the built-in schema is used.
	SchemaPath string `yaml:"schemaPath"`
	// Positive-class probability cutoff for HIGH. Changing it needs no retraining.
	Threshold float64 `yaml:"threshold"`
}

type SuggestConfig struct {
	Provider string `yaml:"provider"` // "openai", "anthropic", or "none"
	Model    string `yaml:"model"`
	// If empty, read from env OPENAI_API_KEY or ANTHROPIC_API_KEY per provider.
	APIKey      string        `yaml:"apiKey"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"maxTokens"`
	Timeout     time.Duration `yaml:"timeout"`
	// Retries after the first attempt fails. 1 means at most two calls.
	Retries int `yaml:"retries"`
	// Margin a candidate must beat the original by. CompareOn is "score" or "probability".
	Margin    float64 `yaml:"margin"`
	CompareOn string  `yaml:"compareOn"`
	// Daily cap on generation calls; 0 disables the budget.
	MaxPerDay int `yaml:"maxPerDay"`
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
	// Directory scanned for the collection pipeline's CSV exports.
	CSVDir string `yaml:"csvDir"`
}

type LabelsConfig struct {
	// Engagement quantiles for HIGH / LOW labeling; the middle band is dropped.
	HighQuantile float64 `yaml:"highQuantile"`
	LowQuantile  float64 `yaml:"lowQuantile"`
}

type APIConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

type SnapshotConfig struct {
	// Cron spec for serve-mode corpus refresh + divergence snapshots; empty disables.
	Cron     string `yaml:"cron"`
	TopWords int    `yaml:"topWords"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Model: ModelConfig{
			ArtifactPath: "./artifacts/params.json",
			SchemaPath:   "",
			Threshold:    0.5,
		},
		Suggest: SuggestConfig{
			Provider:    "none",
			Model:       "gpt-4",
			Temperature: 0.7,
			MaxTokens:   300,
			Timeout:     30 * time.Second,
			Retries:     1,
			Margin:      0,
			CompareOn:   "score",
			MaxPerDay:   200,
		},
		Storage:  StorageConfig{DBPath: "./pawlift.db", CSVDir: "./data/processed-data"},
		Labels:   LabelsConfig{HighQuantile: 0.75, LowQuantile: 0.50},
		API:      APIConfig{Addr: ":8080", CORSOrigins: []string{"http://localhost:3000"}},
		Metrics:  MetricsConfig{Addr: ""},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
		Snapshot: SnapshotConfig{Cron: "", TopWords: 20},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if c.Suggest.APIKey == "" {
		switch c.Suggest.Provider {
		case "openai":
			c.Suggest.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			c.Suggest.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = os.Getenv("PAWLIFT_DB")
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = os.Getenv("METRICS_ADDR")
	}
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
