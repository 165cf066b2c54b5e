package reindex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/talentgraph/ai"
	"github.com/poiesic/talentgraph/core"
	"github.com/poiesic/talentgraph/ingestion"
	"github.com/poiesic/talentgraph/storage"
)

// Mode selects which candidates a run re-indexes.
type Mode int

const (
	// ModeIncomplete re-indexes candidates flagged index_incomplete.
	ModeIncomplete Mode = iota
	// ModeFull clears the index and re-indexes every candidate.
	ModeFull
)

func (m Mode) String() string {
	if m == ModeFull {
		return "full"
	}
	return "incomplete"
}

// Config holds configuration for a reindex run.
type Config struct {
	// BatchSize is the number of candidates submitted to the pool at once
	BatchSize int

	// Workers is the number of candidates indexed concurrently
	Workers int

	// ReportInterval is how often to report progress (number of candidates)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per candidate
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      50,
		Workers:        4,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Report summarizes a run.
type Report struct {
	Mode      Mode
	Processed int
	Indexed   int
	Failed    int
}

// Reindexer rebuilds segment index entries from graph segments.
type Reindexer struct {
	graph    storage.GraphStore
	index    storage.SegmentIndex
	indexer  *ingestion.SegmentIndexer
	config   *Config
	progress io.Writer
	logger   *slog.Logger
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(graph storage.GraphStore, index storage.SegmentIndex, embedder ai.Embedder, config *Config, progress io.Writer) (*Reindexer, error) {
	if graph == nil {
		return nil, ingestion.ErrGraphStoreRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.BatchSize < 1 {
		config.BatchSize = 1
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	if progress == nil {
		progress = io.Discard
	}

	logger := slog.Default().With("component", "reindex")
	indexer, err := ingestion.NewSegmentIndexer(embedder, index,
		ingestion.WithIndexAttempts(config.MaxRetries, config.RetryDelay),
		ingestion.WithIndexerLogger(logger))
	if err != nil {
		return nil, err
	}

	return &Reindexer{
		graph:    graph,
		index:    index,
		indexer:  indexer,
		config:   config,
		progress: progress,
		logger:   logger,
	}, nil
}

// Run executes the reindex operation.
// Candidates that fail stay flagged index_incomplete; their errors are joined
// into the returned error alongside a complete Report.
func (r *Reindexer) Run(ctx context.Context, mode Mode) (*Report, error) {
	report := &Report{Mode: mode}

	var targets []core.ID
	err := r.graph.ForEachCandidate(ctx, func(c *core.Candidate) error {
		if mode == ModeFull || c.Status == core.StatusIndexIncomplete {
			targets = append(targets, c.Id)
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("failed to scan candidates: %w", err)
	}

	if mode == ModeFull {
		// Every target is flagged before the index is emptied so an interrupted
		// rebuild can be finished by a later incomplete run.
		for _, id := range targets {
			if err := r.graph.SetCandidateStatus(ctx, id, core.StatusIndexIncomplete); err != nil {
				return report, fmt.Errorf("failed to flag candidate %d: %w", id, err)
			}
		}
		if err := r.index.Clear(ctx); err != nil {
			return report, fmt.Errorf("failed to clear index: %w", err)
		}
		r.logger.Info("index cleared for full rebuild", "candidates", len(targets))
	}

	if len(targets) == 0 {
		fmt.Fprintf(r.progress, "No candidates need reindexing (mode: %s)\n", mode)
		return report, nil
	}

	fmt.Fprintf(r.progress, "Starting %s reindex of %d candidates (batch size: %d)\n",
		mode, len(targets), r.config.BatchSize)

	pool, err := ants.NewPool(r.config.Workers)
	if err != nil {
		return report, err
	}
	defer pool.Release()

	tracker := NewProgressTracker(r.progress, len(targets), r.config.ReportInterval)
	tracker.Start()

	var (
		mu   sync.Mutex
		errs []error
	)
	for start := 0; start < len(targets); start += r.config.BatchSize {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		end := min(start+r.config.BatchSize, len(targets))

		var wg sync.WaitGroup
		for _, id := range targets[start:end] {
			wg.Add(1)
			submitErr := pool.Submit(func() {
				defer wg.Done()
				err := r.reindexCandidate(ctx, id)
				tracker.Record(err != nil)
				if err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			})
			if submitErr != nil {
				wg.Done()
				tracker.Record(true)
				mu.Lock()
				errs = append(errs, fmt.Errorf("candidate %d: %w", id, submitErr))
				mu.Unlock()
			}
		}
		wg.Wait()
	}

	tracker.Finish()
	report.Processed, report.Failed = tracker.Counts()
	report.Indexed = report.Processed - report.Failed

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Indexed %d of %d candidates in %v\n",
		report.Indexed, len(targets), elapsed.Round(time.Millisecond))
	r.logger.Info("reindex finished", "mode", mode.String(), "processed", report.Processed, "failed", report.Failed)

	return report, errors.Join(errs...)
}

func (r *Reindexer) reindexCandidate(ctx context.Context, id core.ID) error {
	segments, err := r.graph.Segments(ctx, id)
	if err != nil {
		return fmt.Errorf("candidate %d: failed to load segments: %w", id, err)
	}
	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}

	if err := r.indexer.Index(ctx, id, texts); err != nil {
		if flagErr := r.graph.SetCandidateStatus(ctx, id, core.StatusIndexIncomplete); flagErr != nil {
			return errors.Join(err, flagErr)
		}
		return err
	}
	return r.graph.SetCandidateStatus(ctx, id, core.StatusIndexed)
}
