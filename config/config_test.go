package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/talentgraph/ai"
	"github.com/poiesic/talentgraph/ingestion"
	"github.com/poiesic/talentgraph/retrieval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ingestion.DefaultChunkSize, cfg.Ingestion.ChunkSize)
	assert.Equal(t, retrieval.DefaultTopK, cfg.Retrieval.TopK)
	assert.Equal(t, 0.7, cfg.ATS.MatchWeight)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /data/talent
ai:
  embedding_model: text-embedding-3-small
  timeout: 15s
retrieval:
  top_k: 8
ats:
  match_weight: 0.5
  skill_weight: 0.5
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/talent", cfg.Database.Path)
	assert.Equal(t, "text-embedding-3-small", cfg.AI.EmbeddingModel)
	assert.Equal(t, ai.DefaultConfig().ExtractionModel, cfg.AI.ExtractionModel)
	assert.Equal(t, 15*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
	assert.Equal(t, retrieval.DefaultMaxContextChars, cfg.Retrieval.MaxContextChars)
	assert.Equal(t, 0.5, cfg.ATS.MatchWeight)
	assert.Equal(t, 10, cfg.ATS.MaxRecommendations)
}

func TestLoad_EnvironmentOverridesAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai:\n  api_key: from-file\n"), 0o600))

	t.Setenv(APIKeyEnv, "from-env")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.AI.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	dir := t.TempDir()

	tests := map[string]string{
		"malformed":    "database: [unclosed",
		"chunk size":   "ingestion:\n  chunk_size: 0\n",
		"overlap":      "ingestion:\n  chunk_size: 100\n  chunk_overlap: 100\n",
		"top k":        "retrieval:\n  top_k: 0\n",
		"weights":      "ats:\n  match_weight: 0\n  skill_weight: 0\n",
		"dimensions":   "database:\n  dimensions: -1\n",
		"context size": "retrieval:\n  max_context_chars: -5\n",
		"min score":    "retrieval:\n  min_score: -0.5\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Database.Dimensions = 768
	cfg.Ingestion.Workers = 6
	cfg.Reindex.RetryDelay = 2 * time.Second
	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestComponentOptions(t *testing.T) {
	cfg := Default()
	cfg.Ingestion.Workers = 2
	cfg.Reindex.Workers = 0
	cfg.Reindex.BatchSize = 7

	assert.Len(t, cfg.IngestionOptions(), 4)
	assert.Len(t, cfg.RetrievalOptions(), 4)

	job := cfg.ReindexJobConfig()
	assert.Equal(t, 7, job.BatchSize)
	assert.Equal(t, 4, job.Workers)

	aiCfg := ai.NewConfig(cfg.AIConfigOptions()...)
	assert.Equal(t, cfg.AI.EmbeddingModel, aiCfg.EmbeddingModel)
	assert.Equal(t, cfg.AI.Timeout, aiCfg.Timeout)
}
