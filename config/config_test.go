package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recall/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 512, cfg.Index.ChunkSize)
	assert.Equal(t, 32, cfg.Index.Overlap)
	assert.Equal(t, 0.5, cfg.Retrieve.Alpha)
	assert.Equal(t, 3, cfg.Retrieve.Fanout)
	assert.Equal(t, RerankScore, cfg.Retrieve.Rerank)
	assert.True(t, cfg.HasMode(ModeLexical))
	assert.True(t, cfg.HasMode(ModeVector))
	require.NoError(t, cfg.Validate())
}

func TestLoadNonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/recall.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadValidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recall.yaml")
	content := `
index:
  chunk_size: 256
  overlap: 16
retrieve:
  modes: [lexical]
  alpha: 0.7
  top_k: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Index.ChunkSize)
	assert.Equal(t, 16, cfg.Index.Overlap)
	assert.Equal(t, 0.7, cfg.Retrieve.Alpha)
	assert.Equal(t, []string{ModeLexical}, cfg.Retrieve.Modes)
	assert.False(t, cfg.HasMode(ModeVector))
	// Untouched sections keep defaults.
	assert.Equal(t, 1.2, cfg.Index.K1)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no modes", func(c *Config) { c.Retrieve.Modes = nil }},
		{"unknown mode", func(c *Config) { c.Retrieve.Modes = []string{"semantic"} }},
		{"alpha below range", func(c *Config) { c.Retrieve.Alpha = -0.1 }},
		{"alpha above range", func(c *Config) { c.Retrieve.Alpha = 1.5 }},
		{"zero fanout", func(c *Config) { c.Retrieve.Fanout = 0 }},
		{"unknown rerank", func(c *Config) { c.Retrieve.Rerank = "cross" }},
		{"zero chunk size", func(c *Config) { c.Index.ChunkSize = 0 }},
		{"negative overlap", func(c *Config) { c.Index.Overlap = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
		})
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	content := "retrieve:\n  top_k: 7\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "recall.yaml"), []byte(content), 0644))

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Retrieve.TopK)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recall.yaml")

	cfg := DefaultConfig()
	cfg.Retrieve.Alpha = 0.25
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.25, loaded.Retrieve.Alpha)
}
