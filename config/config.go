// Package config loads and saves the YAML file that configures the
// talentgraph command line tool.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/talentgraph/ai"
	"github.com/poiesic/talentgraph/ats"
	"github.com/poiesic/talentgraph/ingestion"
	"github.com/poiesic/talentgraph/reindex"
	"github.com/poiesic/talentgraph/retrieval"
)

// APIKeyEnv overrides the API key from the file when set.
const APIKeyEnv = "TALENTGRAPH_API_KEY"

// DatabaseConfig locates the on-disk store.
type DatabaseConfig struct {
	Path       string `yaml:"path"`
	Dimensions int    `yaml:"dimensions"` // 0 pins on first write
}

// AIConfig configures the OpenAI-compatible model endpoints.
type AIConfig struct {
	EmbeddingHost         string        `yaml:"embedding_host"`
	ExtractionHost        string        `yaml:"extraction_host"`
	EmbeddingModel        string        `yaml:"embedding_model"`
	ExtractionModel       string        `yaml:"extraction_model"`
	SynthesisModel        string        `yaml:"synthesis_model,omitempty"`
	APIKey                string        `yaml:"api_key,omitempty"`
	Timeout               time.Duration `yaml:"timeout"`
	MaxExtractionAttempts int           `yaml:"max_extraction_attempts"`
}

// IngestionConfig configures the ingestion coordinator.
type IngestionConfig struct {
	ChunkSize     int           `yaml:"chunk_size"`
	ChunkOverlap  int           `yaml:"chunk_overlap"`
	IndexAttempts int           `yaml:"index_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
	EmbedTimeout  time.Duration `yaml:"embed_timeout"`
	IndexTimeout  time.Duration `yaml:"index_timeout"`
	Workers       int           `yaml:"workers,omitempty"` // 0 selects the coordinator default
}

// RetrievalConfig configures query answering.
type RetrievalConfig struct {
	TopK             int           `yaml:"top_k"`
	MaxContextChars  int           `yaml:"max_context_chars"`
	MinScore         float32       `yaml:"min_score"`
	EmbedTimeout     time.Duration `yaml:"embed_timeout"`
	SearchTimeout    time.Duration `yaml:"search_timeout"`
	SynthesisTimeout time.Duration `yaml:"synthesis_timeout"`
}

// ReindexConfig configures the reconciliation job.
type ReindexConfig struct {
	BatchSize      int           `yaml:"batch_size"`
	Workers        int           `yaml:"workers"`
	ReportInterval int           `yaml:"report_interval"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
}

// Config is the root of the configuration file.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	AI        AIConfig        `yaml:"ai"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Reindex   ReindexConfig   `yaml:"reindex"`
	ATS       ats.Config      `yaml:"ats"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	reindexDefaults := reindex.DefaultConfig()
	return &Config{
		Database: DatabaseConfig{Path: defaultDatabasePath()},
		AI: AIConfig{
			EmbeddingHost:         aiDefaults.EmbeddingHost,
			ExtractionHost:        aiDefaults.ExtractionHost,
			EmbeddingModel:        aiDefaults.EmbeddingModel,
			ExtractionModel:       aiDefaults.ExtractionModel,
			APIKey:                aiDefaults.APIKey,
			Timeout:               aiDefaults.Timeout,
			MaxExtractionAttempts: aiDefaults.MaxExtractionAttempts,
		},
		Ingestion: IngestionConfig{
			ChunkSize:     ingestion.DefaultChunkSize,
			ChunkOverlap:  ingestion.DefaultChunkOverlap,
			IndexAttempts: ingestion.DefaultMaxIndexAttempts,
			RetryDelay:    ingestion.DefaultRetryDelay,
			EmbedTimeout:  ingestion.DefaultEmbedTimeout,
			IndexTimeout:  ingestion.DefaultIndexTimeout,
		},
		Retrieval: RetrievalConfig{
			TopK:             retrieval.DefaultTopK,
			MaxContextChars:  retrieval.DefaultMaxContextChars,
			EmbedTimeout:     retrieval.DefaultEmbedTimeout,
			SearchTimeout:    retrieval.DefaultSearchTimeout,
			SynthesisTimeout: retrieval.DefaultSynthesisTimeout,
		},
		Reindex: ReindexConfig{
			BatchSize:      reindexDefaults.BatchSize,
			Workers:        reindexDefaults.Workers,
			ReportInterval: reindexDefaults.ReportInterval,
			MaxRetries:     reindexDefaults.MaxRetries,
			RetryDelay:     reindexDefaults.RetryDelay,
		},
		ATS: ats.DefaultConfig(),
	}
}

// Load reads the configuration at path. Keys missing from the file keep
// their defaults, and a missing file yields Default(). The API key is taken
// from TALENTGRAPH_API_KEY when that variable is set.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.AI.APIKey = key
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating directories as needed. The file is only
// readable by its owner since it may hold an API key.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// DefaultPath returns ~/.config/talentgraph/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "talentgraph", "config.yaml"), nil
}

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "talentgraph.db"
	}
	return filepath.Join(home, ".local", "share", "talentgraph")
}

// Validate checks values the components would reject.
func (c *Config) Validate() error {
	if c.Database.Dimensions < 0 {
		return fmt.Errorf("database.dimensions cannot be negative, got %d", c.Database.Dimensions)
	}
	if c.Ingestion.ChunkSize < 1 || c.Ingestion.ChunkOverlap < 0 || c.Ingestion.ChunkOverlap >= c.Ingestion.ChunkSize {
		return fmt.Errorf("%w: size %d, overlap %d", ingestion.ErrInvalidChunkSize, c.Ingestion.ChunkSize, c.Ingestion.ChunkOverlap)
	}
	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("retrieval.top_k must be at least 1, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.MaxContextChars < 1 {
		return fmt.Errorf("retrieval.max_context_chars must be at least 1, got %d", c.Retrieval.MaxContextChars)
	}
	if c.Retrieval.MinScore < 0 {
		return fmt.Errorf("retrieval.min_score must be >= 0, got %v", c.Retrieval.MinScore)
	}
	if err := c.ATS.Validate(); err != nil {
		return fmt.Errorf("ats: %w", err)
	}
	return nil
}

// AIConfigOptions converts the AI section into capability options.
func (c *Config) AIConfigOptions() []ai.ConfigOption {
	opts := []ai.ConfigOption{
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithExtractionHost(c.AI.ExtractionHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithExtractionModel(c.AI.ExtractionModel),
		ai.WithSynthesisModel(c.AI.SynthesisModel),
		ai.WithAPIKey(c.AI.APIKey),
	}
	if c.AI.Timeout > 0 {
		opts = append(opts, ai.WithTimeout(c.AI.Timeout))
	}
	if c.AI.MaxExtractionAttempts > 0 {
		opts = append(opts, ai.WithMaxExtractionAttempts(c.AI.MaxExtractionAttempts))
	}
	return opts
}

// IngestionOptions converts the ingestion section into coordinator options.
func (c *Config) IngestionOptions() []ingestion.Option {
	opts := []ingestion.Option{
		ingestion.WithChunking(c.Ingestion.ChunkSize, c.Ingestion.ChunkOverlap),
		ingestion.WithCapabilityTimeouts(c.Ingestion.EmbedTimeout, c.Ingestion.IndexTimeout),
	}
	if c.Ingestion.IndexAttempts > 0 {
		opts = append(opts, ingestion.WithMaxIndexAttempts(c.Ingestion.IndexAttempts, c.Ingestion.RetryDelay))
	}
	if c.Ingestion.Workers > 0 {
		opts = append(opts, ingestion.WithPoolSize(c.Ingestion.Workers))
	}
	return opts
}

// RetrievalOptions converts the retrieval section into retriever options.
func (c *Config) RetrievalOptions() []retrieval.Option {
	return []retrieval.Option{
		retrieval.WithTopK(c.Retrieval.TopK),
		retrieval.WithMaxContextChars(c.Retrieval.MaxContextChars),
		retrieval.WithMinScore(c.Retrieval.MinScore),
		retrieval.WithTimeouts(c.Retrieval.EmbedTimeout, c.Retrieval.SearchTimeout, c.Retrieval.SynthesisTimeout),
	}
}

// ReindexJobConfig converts the reindex section, filling zero values from the
// job defaults.
func (c *Config) ReindexJobConfig() *reindex.Config {
	out := reindex.DefaultConfig()
	if c.Reindex.BatchSize > 0 {
		out.BatchSize = c.Reindex.BatchSize
	}
	if c.Reindex.Workers > 0 {
		out.Workers = c.Reindex.Workers
	}
	if c.Reindex.ReportInterval > 0 {
		out.ReportInterval = c.Reindex.ReportInterval
	}
	if c.Reindex.MaxRetries > 0 {
		out.MaxRetries = c.Reindex.MaxRetries
	}
	if c.Reindex.RetryDelay > 0 {
		out.RetryDelay = c.Reindex.RetryDelay
	}
	return out
}
