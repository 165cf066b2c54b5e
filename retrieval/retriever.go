package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/talentgraph/ai"
	"github.com/poiesic/talentgraph/core"
	"github.com/poiesic/talentgraph/storage"
)

const (
	// DefaultTopK is the number of segments retrieved per query.
	DefaultTopK = 5
	// DefaultMaxContextChars caps the merged context sent to synthesis.
	DefaultMaxContextChars = 6000
	// DefaultEmbedTimeout bounds the query embedding call.
	DefaultEmbedTimeout = 30 * time.Second
	// DefaultSearchTimeout bounds the index search.
	DefaultSearchTimeout = 10 * time.Second
	// DefaultSynthesisTimeout bounds the answer synthesis call.
	DefaultSynthesisTimeout = 60 * time.Second
)

// NoRelevantInformationText is the answer text when no segment matches.
const NoRelevantInformationText = "No relevant information was found in the candidate pool for this question."

// Answer is the result of a query.
type Answer struct {
	Text                  string                 // Synthesizer output, verbatim
	Candidates            []core.ID              // Candidates whose segments reached the context, in rank order
	NoRelevantInformation bool                   // Set when nothing matched; synthesis was not called
	Context               string                 // Merged context sent to synthesis
	Matches               []storage.SegmentMatch // Segments retrieved from the index
}

// Retriever answers free-text queries with hybrid graph and vector retrieval.
type Retriever struct {
	graph            storage.GraphStore
	index            storage.SegmentIndex
	embedder         ai.Embedder
	synthesizer      ai.AnswerSynthesizer
	topK             int
	maxContextChars  int
	minScore         float32
	embedTimeout     time.Duration
	searchTimeout    time.Duration
	synthesisTimeout time.Duration
	logger           *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithTopK sets how many segments are retrieved. Default is 5.
func WithTopK(k int) Option {
	return func(r *Retriever) error {
		if k < 1 {
			return fmt.Errorf("top-k must be at least 1, got %d", k)
		}
		r.topK = k
		return nil
	}
}

// WithMaxContextChars caps the merged context. Default is 6000 characters.
func WithMaxContextChars(n int) Option {
	return func(r *Retriever) error {
		if n < 1 {
			return fmt.Errorf("max context must be at least 1, got %d", n)
		}
		r.maxContextChars = n
		return nil
	}
}

// WithMinScore drops segments scoring below threshold. Default is 0, which
// keeps every retrieved segment with a positive score. A segment with a
// cosine score of 0 or less shares no direction with the query and is never
// kept, so negative thresholds are rejected.
func WithMinScore(threshold float32) Option {
	return func(r *Retriever) error {
		if threshold < 0 {
			return fmt.Errorf("min score must be >= 0, got %v", threshold)
		}
		r.minScore = threshold
		return nil
	}
}

// WithTimeouts sets the embedding, search and synthesis timeouts.
// Zero leaves a timeout at its default.
func WithTimeouts(embed, search, synthesis time.Duration) Option {
	return func(r *Retriever) error {
		if embed > 0 {
			r.embedTimeout = embed
		}
		if search > 0 {
			r.searchTimeout = search
		}
		if synthesis > 0 {
			r.synthesisTimeout = synthesis
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(
	graph storage.GraphStore,
	index storage.SegmentIndex,
	provider ai.Provider,
	opts ...Option,
) (*Retriever, error) {
	if graph == nil {
		return nil, ErrGraphStoreRequired
	}
	if index == nil {
		return nil, ErrSegmentIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Retriever{
		graph:            graph,
		index:            index,
		embedder:         provider.Embedder(),
		synthesizer:      provider.Synthesizer(),
		topK:             DefaultTopK,
		maxContextChars:  DefaultMaxContextChars,
		embedTimeout:     DefaultEmbedTimeout,
		searchTimeout:    DefaultSearchTimeout,
		synthesisTimeout: DefaultSynthesisTimeout,
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "retrieval")
	return r, nil
}

// Query answers query.
func (r *Retriever) Query(ctx context.Context, query string) (*Answer, error) {
	return r.QueryWithMonitor(ctx, query, nil)
}

// QueryWithMonitor answers query, reporting each stage to monitor.
//
// When no segment matches, the answer has NoRelevantInformation set and the
// synthesizer is not called. Embedding failures wrap core.ErrEmbeddingFailure
// and synthesis failures wrap core.ErrSynthesisFailure.
func (r *Retriever) QueryWithMonitor(ctx context.Context, query string, monitor Monitor) (*Answer, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	answer, err := r.buildContext(ctx, query, monitor)
	if err != nil {
		return nil, err
	}
	if answer.NoRelevantInformation {
		monitor.Finish(answer)
		return answer, nil
	}

	synthCtx, cancel := context.WithTimeout(ctx, r.synthesisTimeout)
	defer cancel()
	text, err := r.synthesizer.Synthesize(synthCtx, query, answer.Context)
	if err != nil {
		r.logger.Error("answer synthesis failed", "err", err)
		return nil, capabilityError(core.ErrSynthesisFailure, err)
	}
	answer.Text = text

	monitor.Finish(answer)
	return answer, nil
}

// Context builds the merged context for query without calling synthesis.
func (r *Retriever) Context(ctx context.Context, query string) (*Answer, error) {
	return r.buildContext(ctx, query, &noopMonitor{})
}

func (r *Retriever) buildContext(ctx context.Context, query string, monitor Monitor) (*Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	monitor.Start(query)

	embedCtx, cancel := context.WithTimeout(ctx, r.embedTimeout)
	vector, err := r.embedder.EmbedText(embedCtx, query)
	cancel()
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		return nil, capabilityError(core.ErrEmbeddingFailure, err)
	}
	monitor.AfterEmbedding(len(vector))

	searchCtx, cancel := context.WithTimeout(ctx, r.searchTimeout)
	matches, err := r.index.Search(searchCtx, vector, r.topK)
	cancel()
	if err != nil {
		r.logger.Error("error searching segment index", "err", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("segment search: %w: %w", core.ErrTimeout, err)
		}
		return nil, fmt.Errorf("segment search: %w", err)
	}
	matches = r.filter(matches)
	monitor.AfterSegmentSearch(matches)

	if len(matches) == 0 {
		r.logger.Debug("no segments matched", "query_length", len(query))
		return &Answer{Text: NoRelevantInformationText, NoRelevantInformation: true}, nil
	}

	blocks, err := r.segmentBlocks(ctx, matches, monitor)
	if err != nil {
		return nil, err
	}

	mentions, err := r.mentionFacts(ctx, query)
	if err != nil {
		return nil, err
	}
	monitor.AfterMentions(mentions)
	if len(mentions) > 0 {
		blocks = append(blocks, block{text: "Related graph facts:\n" + strings.Join(mentions, "\n")})
	}

	contextText, kept := mergeBlocks(blocks, r.maxContextChars)
	monitor.AfterMerge(contextText, len(blocks)-len(kept))

	answer := &Answer{
		Context: contextText,
		Matches: matches,
	}
	seen := make(map[core.ID]bool)
	for _, b := range kept {
		if b.candidate != 0 && !seen[b.candidate] {
			seen[b.candidate] = true
			answer.Candidates = append(answer.Candidates, b.candidate)
		}
	}

	r.logger.Debug("context built",
		"segments", len(matches),
		"blocks", len(blocks),
		"kept", len(kept),
		"candidates", len(answer.Candidates),
		"chars", len(contextText))
	return answer, nil
}

// filter drops non-positive matches and matches below the score threshold.
func (r *Retriever) filter(matches []storage.SegmentMatch) []storage.SegmentMatch {
	out := matches[:0]
	for _, m := range matches {
		if m.Score <= 0 || m.Score < r.minScore {
			continue
		}
		out = append(out, m)
	}
	return out
}

func capabilityError(kind, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w: %w", kind, core.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", kind, err)
}
