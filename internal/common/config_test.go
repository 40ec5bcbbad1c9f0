package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, LLMProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, 256, cfg.LLM.EmbedDimension)
	assert.Equal(t, 256, cfg.Storage.SQLite.EmbeddingDimension)
	assert.Equal(t, 0.4, cfg.Retrieval.SimilarityFloor)
	assert.Equal(t, 20, cfg.Retrieval.MaxCandidates)
	assert.Equal(t, 5, cfg.Retrieval.MaxArticles)
	assert.Equal(t, 5, cfg.Retrieval.MaxSnippets)
	assert.Equal(t, 10*24*time.Hour, cfg.Collector.ProfileMaxAge)
	assert.Equal(t, 24*time.Hour, cfg.Collector.NewsMaxAge)
	assert.Equal(t, 1, cfg.Pipeline.MaxIterations)
	assert.Equal(t, 3, cfg.Pipeline.ResearchCallBudget)
	assert.False(t, cfg.Scheduler.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromFilesTOMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "auspex.toml")
	content := `
[server]
port = 9090

[llm]
provider = "claude"

[pipeline]
max_iterations = 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, LLMProviderClaude, cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.Pipeline.MaxIterations)
	// Untouched sections keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 50, cfg.Collector.NewsFetchLimit)
}

func TestLoadFromFilesLaterFileWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "base.toml")
	second := filepath.Join(dir, "override.toml")
	require.NoError(t, os.WriteFile(first, []byte("[server]\nport = 9000\nhost = \"base\"\n"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("[server]\nport = 9100\n"), 0644))

	cfg, err := LoadFromFiles(first, second)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "base", cfg.Server.Host, "fields absent from the later file survive")
}

func TestLoadFromFilesYAMLByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "auspex.yaml")
	content := "server:\n  port: 9200\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFiles(path)
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
}

func TestEnvOverridesBeatFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "auspex.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 9000\n"), 0644))

	t.Setenv("AUSPEX_SERVER_PORT", "9999")
	t.Setenv("AUSPEX_FINNHUB_API_KEY", "env-key")

	cfg, err := LoadFromFiles(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "env-key", cfg.Finnhub.APIKey)
}

func TestValidateRejectsDimensionMismatch(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.LLM.EmbedDimension = 768

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed_dimension")
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.LLM.Provider = "openai"

	assert.Error(t, cfg.Validate())
}

func TestLoadFromFileMissingPathFails(t *testing.T) {
	_, err := LoadFromFile("/does/not/exist.toml")
	assert.Error(t, err)
}
