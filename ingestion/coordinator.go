package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/talentgraph/ai"
	"github.com/poiesic/talentgraph/core"
	"github.com/poiesic/talentgraph/storage"
)

// Document is one raw résumé.
type Document struct {
	Content []byte
	Ref     string // Where the document came from, e.g. a file path
}

// Result describes a document's ingestion outcome.
type Result struct {
	CandidateID core.ID
	Checksum    string
	Segments    int
	Status      core.CandidateStatus
	Duplicate   bool
}

// Coordinator runs documents through extraction, the graph write and indexing.
type Coordinator struct {
	graph        storage.GraphStore
	extractor    ai.ProfileExtractor
	indexer      *SegmentIndexer
	chunker      *Chunker
	pool         *ants.Pool
	indexerOpts  []IndexerOption
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithPoolSize sets the worker pool size used by IngestBatch.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(c *Coordinator) error {
		if size < 1 {
			size = 1
		}
		if c.pool != nil {
			c.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		c.pool = pool
		return nil
	}
}

// WithChunking sets the segment size and overlap in characters.
func WithChunking(size, overlap int) Option {
	return func(c *Coordinator) error {
		if _, err := NewChunker(size, overlap); err != nil {
			return err
		}
		c.chunkSize = size
		c.chunkOverlap = overlap
		return nil
	}
}

// WithMaxIndexAttempts sets how many times indexing is attempted and the base
// backoff delay. Default is 3 attempts starting at 500ms.
func WithMaxIndexAttempts(attempts int, baseDelay time.Duration) Option {
	return func(c *Coordinator) error {
		c.indexerOpts = append(c.indexerOpts, WithIndexAttempts(attempts, baseDelay))
		return nil
	}
}

// WithCapabilityTimeouts sets the embedding and index write timeouts.
func WithCapabilityTimeouts(embed, index time.Duration) Option {
	return func(c *Coordinator) error {
		c.indexerOpts = append(c.indexerOpts, WithTimeouts(embed, index))
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCoordinator creates an ingestion coordinator.
func NewCoordinator(
	graph storage.GraphStore,
	index storage.SegmentIndex,
	provider ai.Provider,
	opts ...Option,
) (*Coordinator, error) {
	if graph == nil {
		return nil, ErrGraphStoreRequired
	}
	if index == nil {
		return nil, ErrSegmentIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		graph:        graph,
		extractor:    provider.Extractor(),
		pool:         pool,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(c); optErr != nil {
			c.Release()
			return nil, optErr
		}
	}

	c.chunker, err = NewChunker(c.chunkSize, c.chunkOverlap)
	if err != nil {
		c.Release()
		return nil, err
	}
	c.indexer, err = NewSegmentIndexer(provider.Embedder(), index,
		append([]IndexerOption{WithIndexerLogger(c.logger)}, c.indexerOpts...)...)
	if err != nil {
		c.Release()
		return nil, err
	}
	c.logger = c.logger.With("component", "ingestion")
	return c, nil
}

// Ingest processes one document.
//
// A document whose checksum is already known returns the existing candidate's
// Result (Duplicate set) together with an error wrapping
// core.ErrDuplicateDocument; nothing is written and extraction is not called.
// Extraction and graph failures return a *core.StageError and write nothing.
// An indexing failure after the graph write returns the Result with status
// index_incomplete and an error wrapping core.ErrIndexWriteFailure. When that
// failure is core.ErrDimensionMismatch the embedding model does not match the
// index; it is not retried and needs a full reindex once the model is fixed.
func (c *Coordinator) Ingest(ctx context.Context, doc Document) (*Result, error) {
	checksum := core.Checksum(doc.Content)
	result := &Result{Checksum: checksum}
	log := c.logger.With("ref", doc.Ref, "checksum", checksum[:16])

	existing, found, err := c.graph.HasChecksum(ctx, checksum)
	if err != nil {
		return nil, &core.StageError{Stage: core.StageChecksum, Err: err}
	}
	if found {
		log.Info("duplicate document", "candidate", existing)
		return c.duplicate(result, existing), fmt.Errorf("%w: candidate %d", core.ErrDuplicateDocument, existing)
	}

	text := strings.TrimSpace(strings.ToValidUTF8(string(doc.Content), ""))
	if text == "" {
		return nil, &core.StageError{Stage: core.StageExtract, Err: fmt.Errorf("%w: %w", core.ErrExtractionFailure, ErrEmptyDocument)}
	}

	profile, err := c.extractor.Extract(ctx, text)
	if err != nil {
		log.Warn("extraction failed", "err", err)
		return nil, &core.StageError{Stage: core.StageExtract, Err: fmt.Errorf("%w: %w", core.ErrExtractionFailure, err)}
	}

	segments := c.chunker.Chunk(text)
	draft := buildDraft(profile, doc.Ref, checksum, segments)
	if err := core.ValidateCandidateDraft(draft); err != nil {
		return nil, &core.StageError{Stage: core.StageExtract, Err: fmt.Errorf("%w: %w", core.ErrExtractionFailure, err)}
	}

	id, err := c.graph.UpsertCandidate(ctx, draft)
	if errors.Is(err, core.ErrDuplicateDocument) {
		log.Info("duplicate document detected at commit", "candidate", id)
		return c.duplicate(result, id), err
	}
	if err != nil {
		log.Error("graph write failed", "err", err)
		return nil, &core.StageError{Stage: core.StageGraph, Err: fmt.Errorf("%w: %w", core.ErrGraphWriteFailure, err)}
	}
	result.CandidateID = id
	result.Segments = len(segments)
	result.Status = core.StatusIndexIncomplete
	log = log.With("candidate", id)
	log.Info("candidate stored", "name", draft.Name, "skills", len(draft.Skills), "segments", len(segments))

	if err := c.indexer.Index(ctx, id, segments); err != nil {
		return result, err
	}
	if err := c.graph.SetCandidateStatus(ctx, id, core.StatusIndexed); err != nil {
		log.Warn("failed to mark candidate indexed", "err", err)
		return result, fmt.Errorf("%w: %w", core.ErrIndexWriteFailure, &core.StageError{Stage: core.StageIndex, Err: err})
	}
	result.Status = core.StatusIndexed
	return result, nil
}

func (c *Coordinator) duplicate(result *Result, id core.ID) *Result {
	result.CandidateID = id
	result.Duplicate = true
	return result
}

// Release releases the worker pool.
// The coordinator should not be used after calling Release.
func (c *Coordinator) Release() {
	if c.pool != nil {
		c.pool.Release()
	}
}

// buildDraft converts an extracted profile into a draft, dropping entries the
// graph cannot hold: education without an institution, projects without a
// name, blank or repeated skill and technology names. Years outside the
// accepted range are cleared.
func buildDraft(p *ai.Profile, ref, checksum string, segments []string) *core.CandidateDraft {
	draft := &core.CandidateDraft{
		Name:        strings.TrimSpace(p.Name),
		Title:       strings.TrimSpace(p.Title),
		DocumentRef: ref,
		Checksum:    checksum,
		Skills:      core.DedupeNames(p.Skills),
		Segments:    segments,
	}
	for _, ed := range p.Education {
		entry := core.EducationDraft{
			Degree:      strings.TrimSpace(ed.Degree),
			Institution: strings.TrimSpace(ed.Institution),
			Year:        ed.Year,
		}
		if core.NormalizeName(entry.Institution) == "" {
			continue
		}
		if core.ValidateEducationDraft(entry) != nil {
			entry.Year = 0
		}
		draft.Education = append(draft.Education, entry)
	}
	for _, pr := range p.EffectiveProjects() {
		name := strings.TrimSpace(pr.Name)
		if name == "" {
			continue
		}
		draft.Projects = append(draft.Projects, core.ProjectDraft{
			Name:         name,
			Role:         strings.TrimSpace(pr.Role),
			Description:  strings.TrimSpace(pr.Description),
			Technologies: core.DedupeNames(pr.Technologies),
		})
	}
	return draft
}
