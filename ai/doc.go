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

// Package ai provides abstractions for the external capabilities talentgraph relies on.
//
// This package defines interfaces for the three model-backed operations the
// core consumes. The core domain depends on these abstractions rather than
// on any concrete model client.
//
// # Design Principles
//
// The package is designed around four key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - ProfileExtractor: Structures raw résumé text into a Profile
//   - AnswerSynthesizer: Turns a query plus retrieved context into an answer
//   - Provider: Aggregates the three services for convenient initialization
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Deterministic test doubles for unit testing without external services
//
// Circuit breakers from github.com/sony/gobreaker can wrap any implementation
// (see WithCircuitBreaker) so that a failing model endpoint is shed quickly
// instead of stalling every ingestion and query.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434/v1"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "Senior Go engineer")
//	profile, err := provider.Extractor().Extract(ctx, resumeText)
package ai
