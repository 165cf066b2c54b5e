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

package openai

import (
	"log/slog"

	"github.com/poiesic/talentgraph/ai"
)

// Provider implements ai.Provider using OpenAI-compatible services.
type Provider struct {
	config      *ai.Config
	embedder    *Embedder
	extractor   *Extractor
	synthesizer *Synthesizer
	logger      *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
func NewProvider(config *ai.Config) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	extractor, err := newExtractor(config)
	if err != nil {
		return nil, err
	}

	synthesizer, err := newSynthesizer(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:      config,
		embedder:    embedder,
		extractor:   extractor,
		synthesizer: synthesizer,
		logger:      slog.Default().With("component", "openai-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Extractor returns the profile extraction service.
func (p *Provider) Extractor() ai.ProfileExtractor {
	return p.extractor
}

// Synthesizer returns the answer synthesis service.
func (p *Provider) Synthesizer() ai.AnswerSynthesizer {
	return p.synthesizer
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}

var _ ai.Provider = (*Provider)(nil)
