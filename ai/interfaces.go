package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ProfileExtractor structures raw document text.
// Implementations must be thread-safe for concurrent use.
type ProfileExtractor interface {
	// Extract returns the entities found in a résumé. The returned profile has
	// at least a name; an error is returned when the text cannot be structured.
	Extract(ctx context.Context, text string) (*Profile, error)
}

// AnswerSynthesizer generates a free-text answer from a query and retrieved context.
// Implementations must be thread-safe for concurrent use.
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, query, contextText string) (string, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle management.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Extractor returns the profile extraction service.
	Extractor() ProfileExtractor

	// Synthesizer returns the answer synthesis service.
	Synthesizer() AnswerSynthesizer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
