package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync/atomic"
	"unicode"
)

// DefaultDimensions is the vector length produced by NewMockEmbedder.
const DefaultDimensions = 384

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, each text goes through EmbedText.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the length of default vectors.
	Dimensions int

	callCount atomic.Int64
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockEmbedder().
func NewMockEmbedder() *MockEmbedder {
	return NewMockEmbedderWithDimensions(DefaultDimensions)
}

// NewMockEmbedderWithDimensions creates a mock embedder producing vectors of dims length.
func NewMockEmbedderWithDimensions(dims int) *MockEmbedder {
	return &MockEmbedder{Dimensions: dims}
}

// EmbedText generates a deterministic embedding from the words of text.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount.Add(1)

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return generateDeterministicVector(text, m.dims()), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if m.EmbedTextsFunc != nil {
		m.callCount.Add(1)
		return m.EmbedTextsFunc(ctx, texts)
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// CallCount returns the number of embedding calls made.
func (m *MockEmbedder) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and any injected behavior.
func (m *MockEmbedder) Reset() {
	m.callCount.Store(0)
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

func (m *MockEmbedder) dims() int {
	if m.Dimensions <= 0 {
		return DefaultDimensions
	}
	return m.Dimensions
}

// generateDeterministicVector hashes each lowercased word of text into a bucket
// and returns the unit-length result. Text without words gets a vector seeded
// from the whole string.
func generateDeterministicVector(text string, dim int) []float32 {
	vector := make([]float32, dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		vector[h.Sum32()%uint32(dim)] += 1
	}
	if len(words) == 0 {
		h := fnv.New32a()
		h.Write([]byte(text))
		seed := h.Sum32()
		for i := range vector {
			seed = seed*1664525 + 1013904223 // LCG constants
			vector[i] = float32(seed%1000)/1000.0 + 0.001
		}
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(1 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}
	return vector
}
