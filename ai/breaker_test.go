package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingEmbedder struct {
	err   error
	calls int
}

func (f *failingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1}, nil
}

func (f *failingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return [][]float32{{1}}, nil
}

func TestBreakerEmbedder_TripsAfterConsecutiveFailures(t *testing.T) {
	inner := &failingEmbedder{err: errors.New("connection refused")}
	e := NewBreakerEmbedder(inner, BreakerConfig{ConsecutiveFailures: 2, OpenTimeout: time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := e.EmbedText(ctx, "x")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCapabilityUnavailable)
	}

	_, err := e.EmbedText(ctx, "x")
	assert.ErrorIs(t, err, ErrCapabilityUnavailable)
	assert.Equal(t, 2, inner.calls)
}

func TestBreakerEmbedder_CanceledContextDoesNotTrip(t *testing.T) {
	inner := &failingEmbedder{err: context.Canceled}
	e := NewBreakerEmbedder(inner, BreakerConfig{ConsecutiveFailures: 1, OpenTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		_, err := e.EmbedTexts(context.Background(), []string{"x"})
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, 3, inner.calls)
}

func TestBreakerEmbedder_PassesResults(t *testing.T) {
	inner := &failingEmbedder{}
	e := NewBreakerEmbedder(inner, DefaultBreakerConfig())

	vec, err := e.EmbedText(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vec)
}
