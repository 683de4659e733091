package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"recall/internal/domain"
)

// Retrieval modes and rerank strategies.
const (
	ModeLexical = "lexical"
	ModeVector  = "vector"

	RerankScore = "score"
	RerankLLM   = "llm"
)

// Config holds all configuration for the memory layer.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Index    IndexConfig    `yaml:"index"`
	Retrieve RetrieveConfig `yaml:"retrieve"`
	Provider ProviderConfig `yaml:"provider"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// StorageConfig locates the on-disk state.
type StorageConfig struct {
	Dir string `yaml:"dir"`
}

// IndexConfig holds chunking and lexical scoring parameters.
type IndexConfig struct {
	ChunkSize int     `yaml:"chunk_size"`
	Overlap   int     `yaml:"overlap"`
	Stopwords bool    `yaml:"stopwords"`
	K1        float64 `yaml:"k1"`
	B         float64 `yaml:"b"`
}

// RetrieveConfig holds retrieval and fusion parameters. Alpha is the
// weight given to the vector score; 1-alpha goes to the lexical score.
type RetrieveConfig struct {
	Modes  []string `yaml:"modes"`
	TopK   int      `yaml:"top_k"`
	Alpha  float64  `yaml:"alpha"`
	Fanout int      `yaml:"fanout"`
	Rerank string   `yaml:"rerank"`
}

// ProviderConfig holds OpenAI-compatible provider settings.
type ProviderConfig struct {
	APIKeyEnv      string `yaml:"api_key_env"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
	Dimension      int    `yaml:"dimension"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Dir: ".recall",
		},
		Index: IndexConfig{
			ChunkSize: 512,
			Overlap:   32,
			Stopwords: true,
			K1:        1.2,
			B:         0.75,
		},
		Retrieve: RetrieveConfig{
			Modes:  []string{ModeLexical, ModeVector},
			TopK:   5,
			Alpha:  0.5,
			Fanout: 3,
			Rerank: RerankScore,
		},
		Provider: ProviderConfig{
			APIKeyEnv:      "OPENAI_API_KEY",
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			TimeoutSeconds: 30,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks mode names and parameter ranges.
func (c *Config) Validate() error {
	if len(c.Retrieve.Modes) == 0 {
		return fmt.Errorf("%w: at least one retrieval mode is required", domain.ErrInvalidConfig)
	}
	for _, mode := range c.Retrieve.Modes {
		if mode != ModeLexical && mode != ModeVector {
			return fmt.Errorf("%w: unknown retrieval mode %q", domain.ErrInvalidConfig, mode)
		}
	}
	if c.Retrieve.Alpha < 0 || c.Retrieve.Alpha > 1 {
		return fmt.Errorf("%w: alpha must be in [0,1], got %g", domain.ErrInvalidConfig, c.Retrieve.Alpha)
	}
	if c.Retrieve.Fanout < 1 {
		return fmt.Errorf("%w: fanout must be >= 1, got %d", domain.ErrInvalidConfig, c.Retrieve.Fanout)
	}
	if c.Retrieve.Rerank != RerankScore && c.Retrieve.Rerank != RerankLLM {
		return fmt.Errorf("%w: unknown rerank mode %q", domain.ErrInvalidConfig, c.Retrieve.Rerank)
	}
	if c.Index.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", domain.ErrInvalidConfig, c.Index.ChunkSize)
	}
	if c.Index.Overlap < 0 {
		return fmt.Errorf("%w: overlap must be >= 0, got %d", domain.ErrInvalidConfig, c.Index.Overlap)
	}
	return nil
}

// HasMode reports whether a retrieval mode is enabled.
func (c *Config) HasMode(mode string) bool {
	for _, m := range c.Retrieve.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// Load loads configuration from a YAML file, layering it over defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (recall.yaml, then
// .recall/config.yaml, then defaults).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "recall.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".recall", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DBPath returns the canonical store's SQLite file path.
func DBPath(dir string) string {
	return filepath.Join(dir, "memory.db")
}

// IndexPath returns the index store's bolt file path.
func IndexPath(dir string) string {
	return filepath.Join(dir, "index.db")
}
