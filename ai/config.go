// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// ExtractionHost is the base URL for the chat model used for extraction and synthesis.
	ExtractionHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// ExtractionModel is the model identifier used to structure résumés.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	ExtractionModel string

	// SynthesisModel is the model identifier used to answer queries.
	// Defaults to ExtractionModel when empty.
	SynthesisModel string

	// APIKey is sent as the bearer token. Local servers accept any value.
	APIKey string

	// Timeout bounds every individual model call.
	// Default: 60s
	Timeout time.Duration

	// MaxExtractionAttempts is how often extraction is retried on malformed output.
	// Default: 3
	MaxExtractionAttempts int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithExtractionHost sets the chat model host URL.
func WithExtractionHost(host string) ConfigOption {
	return func(c *Config) {
		c.ExtractionHost = host
	}
}

// WithHost sets both embedding and extraction hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ExtractionHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithExtractionModel sets the extraction model identifier.
func WithExtractionModel(model string) ConfigOption {
	return func(c *Config) {
		c.ExtractionModel = model
	}
}

// WithSynthesisModel sets the answer synthesis model identifier.
func WithSynthesisModel(model string) ConfigOption {
	return func(c *Config) {
		c.SynthesisModel = model
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithMaxExtractionAttempts sets the extraction retry budget.
func WithMaxExtractionAttempts(n int) ConfigOption {
	return func(c *Config) {
		c.MaxExtractionAttempts = n
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:         defaultHost,
		ExtractionHost:        defaultHost,
		EmbeddingModel:        "embeddinggemma",
		ExtractionModel:       "qwen2.5:3b",
		APIKey:                "none",
		Timeout:               60 * time.Second,
		MaxExtractionAttempts: 3,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithEmbeddingModel("text-embedding-3-small"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to hosts if missing, which is required by most
// OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc), and fills the
// synthesis model from the extraction model.
func (c *Config) Normalize() {
	c.EmbeddingHost = withV1(c.EmbeddingHost)
	c.ExtractionHost = withV1(c.ExtractionHost)
	if c.SynthesisModel == "" {
		c.SynthesisModel = c.ExtractionModel
	}
}

func withV1(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.ExtractionHost == "" {
		return errors.New("ai config: ExtractionHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.ExtractionModel == "" {
		return errors.New("ai config: ExtractionModel is required")
	}
	if c.Timeout <= 0 {
		return errors.New("ai config: Timeout must be positive")
	}
	if c.MaxExtractionAttempts < 1 {
		return errors.New("ai config: MaxExtractionAttempts must be at least 1")
	}
	return nil
}
