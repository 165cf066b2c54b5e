package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/talentgraph/ai"
	"github.com/poiesic/talentgraph/core"
	"github.com/poiesic/talentgraph/retry"
	"github.com/poiesic/talentgraph/storage"
)

const (
	// DefaultMaxIndexAttempts bounds embed+write attempts per candidate.
	DefaultMaxIndexAttempts = 3
	// DefaultRetryDelay is the wait after the first failed attempt.
	DefaultRetryDelay = 500 * time.Millisecond
	// DefaultEmbedTimeout bounds one embedding call.
	DefaultEmbedTimeout = 30 * time.Second
	// DefaultIndexTimeout bounds one index write.
	DefaultIndexTimeout = 10 * time.Second
)

// SegmentIndexer embeds segment texts and writes them to the index with
// bounded, retried attempts.
type SegmentIndexer struct {
	embedder     ai.Embedder
	index        storage.SegmentIndex
	policy       retry.Policy
	embedTimeout time.Duration
	indexTimeout time.Duration
	logger       *slog.Logger
}

// IndexerOption configures a SegmentIndexer.
type IndexerOption func(*SegmentIndexer)

// WithIndexAttempts sets the number of attempts and the base delay between them.
func WithIndexAttempts(attempts int, baseDelay time.Duration) IndexerOption {
	return func(s *SegmentIndexer) {
		if attempts < 1 {
			attempts = 1
		}
		s.policy.MaxAttempts = attempts
		s.policy.BaseDelay = baseDelay
	}
}

// WithTimeouts sets the per-call embedding and index write timeouts.
func WithTimeouts(embed, index time.Duration) IndexerOption {
	return func(s *SegmentIndexer) {
		if embed > 0 {
			s.embedTimeout = embed
		}
		if index > 0 {
			s.indexTimeout = index
		}
	}
}

// WithIndexerLogger sets a custom logger.
func WithIndexerLogger(logger *slog.Logger) IndexerOption {
	return func(s *SegmentIndexer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSegmentIndexer creates a SegmentIndexer.
func NewSegmentIndexer(embedder ai.Embedder, index storage.SegmentIndex, opts ...IndexerOption) (*SegmentIndexer, error) {
	if embedder == nil {
		return nil, ErrAIProviderRequired
	}
	if index == nil {
		return nil, ErrSegmentIndexRequired
	}
	s := &SegmentIndexer{
		embedder: embedder,
		index:    index,
		policy: retry.Policy{
			MaxAttempts: DefaultMaxIndexAttempts,
			BaseDelay:   DefaultRetryDelay,
		},
		embedTimeout: DefaultEmbedTimeout,
		indexTimeout: DefaultIndexTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "segment-indexer")
	return s, nil
}

// Index embeds texts and stores them as the candidate's segments 0..n-1.
//
// Failures are retried with backoff. A dimension mismatch or an unknown
// candidate is returned at once. The returned error wraps
// core.ErrIndexWriteFailure and a *core.StageError naming the embed or index
// stage.
func (s *SegmentIndexer) Index(ctx context.Context, candidateID core.ID, texts []string) error {
	if len(texts) == 0 {
		return nil
	}

	err := retry.WithBackoff(ctx, s.policy, func(ctx context.Context) error {
		return s.attempt(ctx, candidateID, texts)
	})
	if err != nil {
		s.logger.Warn("segment indexing failed", "candidate", candidateID, "segments", len(texts), "err", err)
		return fmt.Errorf("%w: candidate %d: %w", core.ErrIndexWriteFailure, candidateID, err)
	}
	s.logger.Debug("indexed segments", "candidate", candidateID, "segments", len(texts))
	return nil
}

func (s *SegmentIndexer) attempt(ctx context.Context, candidateID core.ID, texts []string) error {
	embedCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	vectors, err := s.embedder.EmbedTexts(embedCtx, texts)
	cancel()
	if err != nil {
		return &core.StageError{Stage: core.StageEmbed, Err: capabilityError(core.ErrEmbeddingFailure, err)}
	}
	if len(vectors) != len(texts) {
		return &core.StageError{
			Stage: core.StageEmbed,
			Err:   fmt.Errorf("%w: expected %d vectors, received %d", core.ErrEmbeddingFailure, len(texts), len(vectors)),
		}
	}

	segments := make([]core.TextSegment, len(texts))
	for i := range texts {
		segments[i] = core.TextSegment{
			CandidateId: candidateID,
			Index:       i,
			Text:        texts[i],
			Vector:      vectors[i],
		}
	}

	indexCtx, cancel := context.WithTimeout(ctx, s.indexTimeout)
	defer cancel()
	if err := s.index.AddSegments(indexCtx, candidateID, segments); err != nil {
		stageErr := &core.StageError{Stage: core.StageIndex, Err: err}
		if errors.Is(err, core.ErrDimensionMismatch) || errors.Is(err, core.ErrNotFound) {
			return retry.Permanent(stageErr)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			stageErr.Err = fmt.Errorf("%w: %w", core.ErrTimeout, err)
		}
		return stageErr
	}
	return nil
}

// capabilityError wraps a failed external call in kind, adding ErrTimeout
// when the call ran out of time.
func capabilityError(kind, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w: %w", kind, core.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", kind, err)
}
