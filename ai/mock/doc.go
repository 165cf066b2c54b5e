// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.ProfileExtractor,
// ai.AnswerSynthesizer and ai.Provider for use in unit tests. The mocks allow
// tests to run without external AI service dependencies and enable controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	embeddings, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockEmbedder := mock.NewMockEmbedder()
//	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
//	// Check call counts
//	count := mockEmbedder.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns hashed bag-of-words vectors, so texts sharing words score higher
//   - MockExtractor: Parses "Key: value" résumé lines into a profile
//   - MockSynthesizer: Echoes the query and the amount of context it received
//   - MockProvider: Aggregates the three mocks
package mock
