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

package mock

import "github.com/poiesic/talentgraph/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock embedder, extractor and synthesizer instances.
type MockProvider struct {
	embedder    *MockEmbedder
	extractor   *MockExtractor
	synthesizer *MockSynthesizer
	closed      bool
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Use GetMockEmbedder()/GetMockExtractor()/GetMockSynthesizer() to reach the
// concrete types for test assertions.
func NewMockProvider() *MockProvider {
	return NewMockProviderWithServices(NewMockEmbedder(), NewMockExtractor(), NewMockSynthesizer())
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
func NewMockProviderWithServices(embedder *MockEmbedder, extractor *MockExtractor, synthesizer *MockSynthesizer) *MockProvider {
	return &MockProvider{
		embedder:    embedder,
		extractor:   extractor,
		synthesizer: synthesizer,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Extractor returns the mock profile extractor.
func (p *MockProvider) Extractor() ai.ProfileExtractor {
	return p.extractor
}

// Synthesizer returns the mock answer synthesizer.
func (p *MockProvider) Synthesizer() ai.AnswerSynthesizer {
	return p.synthesizer
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *MockProvider) Closed() bool {
	return p.closed
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockExtractor returns the underlying mock extractor for test assertions.
func (p *MockProvider) GetMockExtractor() *MockExtractor {
	return p.extractor
}

// GetMockSynthesizer returns the underlying mock synthesizer for test assertions.
func (p *MockProvider) GetMockSynthesizer() *MockSynthesizer {
	return p.synthesizer
}

var _ ai.Provider = (*MockProvider)(nil)
