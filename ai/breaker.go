package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCapabilityUnavailable is returned while a circuit breaker is open.
// Callers should treat it as retryable.
var ErrCapabilityUnavailable = errors.New("ai capability unavailable")

// BreakerConfig controls the circuit breakers placed around model calls.
type BreakerConfig struct {
	// ConsecutiveFailures trips the breaker. Default: 5
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing. Default: 30s
	OpenTimeout time.Duration
	// HalfOpenRequests is how many probes are let through while half-open. Default: 1
	HalfOpenRequests uint32
	// Logger receives state changes. Default: slog.Default()
	Logger *slog.Logger
}

// DefaultBreakerConfig returns the default breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
		HalfOpenRequests:    1,
	}
}

func (c BreakerConfig) settings(name string) gobreaker.Settings {
	def := DefaultBreakerConfig()
	if c.ConsecutiveFailures == 0 {
		c.ConsecutiveFailures = def.ConsecutiveFailures
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = def.OpenTimeout
	}
	if c.HalfOpenRequests == 0 {
		c.HalfOpenRequests = def.HalfOpenRequests
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	threshold := c.ConsecutiveFailures

	return gobreaker.Settings{
		Name:        name,
		MaxRequests: c.HalfOpenRequests,
		Timeout:     c.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Context cancellation is the caller's doing, not the endpoint's.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
}

// execute runs fn through cb and maps breaker rejections to ErrCapabilityUnavailable.
func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	out, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, fmt.Errorf("%w: %s: %w", ErrCapabilityUnavailable, cb.Name(), err)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return out.(T), nil
}

type breakerEmbedder struct {
	next Embedder
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerEmbedder wraps an Embedder with a circuit breaker.
func NewBreakerEmbedder(next Embedder, cfg BreakerConfig) Embedder {
	return &breakerEmbedder{next: next, cb: gobreaker.NewCircuitBreaker(cfg.settings("embedder"))}
}

func (b *breakerEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return execute(b.cb, func() ([]float32, error) {
		return b.next.EmbedText(ctx, text)
	})
}

func (b *breakerEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return execute(b.cb, func() ([][]float32, error) {
		return b.next.EmbedTexts(ctx, texts)
	})
}

type breakerExtractor struct {
	next ProfileExtractor
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerExtractor wraps a ProfileExtractor with a circuit breaker.
func NewBreakerExtractor(next ProfileExtractor, cfg BreakerConfig) ProfileExtractor {
	return &breakerExtractor{next: next, cb: gobreaker.NewCircuitBreaker(cfg.settings("extractor"))}
}

func (b *breakerExtractor) Extract(ctx context.Context, text string) (*Profile, error) {
	return execute(b.cb, func() (*Profile, error) {
		return b.next.Extract(ctx, text)
	})
}

type breakerSynthesizer struct {
	next AnswerSynthesizer
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerSynthesizer wraps an AnswerSynthesizer with a circuit breaker.
func NewBreakerSynthesizer(next AnswerSynthesizer, cfg BreakerConfig) AnswerSynthesizer {
	return &breakerSynthesizer{next: next, cb: gobreaker.NewCircuitBreaker(cfg.settings("synthesizer"))}
}

func (b *breakerSynthesizer) Synthesize(ctx context.Context, query, contextText string) (string, error) {
	return execute(b.cb, func() (string, error) {
		return b.next.Synthesize(ctx, query, contextText)
	})
}

type breakerProvider struct {
	inner       Provider
	embedder    Embedder
	extractor   ProfileExtractor
	synthesizer AnswerSynthesizer
}

// WithCircuitBreaker wraps every service of a provider in its own circuit breaker.
func WithCircuitBreaker(inner Provider, cfg BreakerConfig) Provider {
	return &breakerProvider{
		inner:       inner,
		embedder:    NewBreakerEmbedder(inner.Embedder(), cfg),
		extractor:   NewBreakerExtractor(inner.Extractor(), cfg),
		synthesizer: NewBreakerSynthesizer(inner.Synthesizer(), cfg),
	}
}

func (p *breakerProvider) Embedder() Embedder             { return p.embedder }
func (p *breakerProvider) Extractor() ProfileExtractor    { return p.extractor }
func (p *breakerProvider) Synthesizer() AnswerSynthesizer { return p.synthesizer }
func (p *breakerProvider) Close() error                   { return p.inner.Close() }
