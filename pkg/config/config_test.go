package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/recall/pkg/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)

	cfg, err = config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
	assert.Equal(t, "hash", cfg.Embedding.Provider)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, 500, cfg.Retrieval.ChunkSize)
	assert.Equal(t, 50, cfg.Retrieval.ChunkOverlap)
	assert.InDelta(t, 0.1, cfg.Retrieval.MinScore, 1e-9)
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm:
  model: mistral
  temperature: 0.3
embedding:
  provider: openai
retrieval:
  chunk_size: 800
  chunk_overlap: 120
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "mistral", cfg.LLM.Model)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, 800, cfg.Retrieval.ChunkSize)
	assert.Equal(t, 120, cfg.Retrieval.ChunkOverlap)
	// Unset fields still get defaults.
	assert.Equal(t, 2000, cfg.LLM.MaxTokens)
}

func TestValidate(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Validate())

	cfg.Embedding.Provider = "quantum"
	cfg.Store.Type = "pgvector"
	cfg.Store.URL = ""
	cfg.Retrieval.ChunkOverlap = cfg.Retrieval.ChunkSize

	errs := cfg.Validate()
	fields := make(map[string]bool)
	for _, e := range errs {
		fields[e.Field] = true
	}
	assert.True(t, fields["embedding.provider"])
	assert.True(t, fields["store.url"])
	assert.True(t, fields["retrieval.chunk_overlap"])
}

func TestSettingsStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	s, err := config.LoadSettings(path)
	require.NoError(t, err)

	s.Set("OPENAI_API_KEY", "sk-test")
	s.Set("OPENAI_BASE_URL", "http://localhost:8080/v1")
	require.NoError(t, s.Save())

	reloaded, err := config.LoadSettings(path)
	require.NoError(t, err)

	key, ok := reloaded.Get("OPENAI_API_KEY")
	assert.True(t, ok)
	assert.Equal(t, "sk-test", key)
}

func TestSettingsStore_UnsetRemovesKey(t *testing.T) {
	s := config.NewSettingsStore()
	s.Set("OPENAI_API_KEY", "sk-test")
	s.Set("OPENAI_API_KEY", "")

	_, ok := s.Get("OPENAI_API_KEY")
	assert.False(t, ok)
}
