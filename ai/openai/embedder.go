package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/talentgraph/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// embedBatchSize caps the segments sent in one embeddings request.
const embedBatchSize = 64

// ErrEmptyEmbedding is returned when the endpoint answers without a vector.
var ErrEmptyEmbedding = errors.New("embedding endpoint returned no vector")

// Embedder turns résumé segments and search queries into vectors through an
// OpenAI-compatible embeddings endpoint.
type Embedder struct {
	client embeddings.Embedder
	logger *slog.Logger
}

func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	llm, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.APIKey),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}
	client, err := embeddings.NewEmbedder(llm,
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(embedBatchSize))
	if err != nil {
		return nil, err
	}
	return wrapEmbedder(client, config.EmbeddingModel), nil
}

func wrapEmbedder(client embeddings.Embedder, model string) *Embedder {
	return &Embedder{
		client: client,
		logger: slog.Default().With("component", "openai-embedder", "model", model),
	}
}

// NewEmbedder creates an embedder for config's embedding host and model.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText embeds a search query.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.client.EmbedQuery(ctx, scrubText(text))
	if err != nil {
		e.logger.Error("query embedding failed", "err", err)
		return nil, err
	}
	if len(vector) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return vector, nil
}

// EmbedTexts embeds résumé segments, one vector per text in input order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	scrubbed := make([]string, len(texts))
	for i, t := range texts {
		scrubbed[i] = scrubText(t)
	}

	vectors, err := e.client.EmbedDocuments(ctx, scrubbed)
	if err != nil {
		e.logger.Error("segment embedding failed", "segments", len(texts), "err", err)
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: %d segments, %d vectors", ErrEmptyEmbedding, len(texts), len(vectors))
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: segment %d", ErrEmptyEmbedding, i)
		}
	}
	e.logger.Debug("embedded segments", "segments", len(texts), "dimensions", len(vectors[0]))
	return vectors, nil
}
