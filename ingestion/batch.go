package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/poiesic/talentgraph/core"
)

// Outcome pairs a document's Result with its error.
type Outcome struct {
	Ref    string
	Result *Result
	Err    error
}

// IngestBatch ingests documents concurrently on the coordinator's worker pool.
// Outcomes are returned in input order. Documents are independent: one
// failure does not stop the others, except a dimension mismatch. That is a
// configuration error every later document would hit too, so documents not yet
// started are skipped with ErrBatchAborted.
func (c *Coordinator) IngestBatch(ctx context.Context, docs []Document) []Outcome {
	outcomes := make([]Outcome, len(docs))
	var (
		wg    sync.WaitGroup
		fatal atomic.Pointer[error]
	)
	for i, doc := range docs {
		outcomes[i].Ref = doc.Ref
		wg.Add(1)
		err := c.pool.Submit(func() {
			defer wg.Done()
			if cause := fatal.Load(); cause != nil {
				outcomes[i].Err = fmt.Errorf("%w: %w", ErrBatchAborted, *cause)
				return
			}
			result, err := c.Ingest(ctx, doc)
			outcomes[i].Result, outcomes[i].Err = result, err
			if errors.Is(err, core.ErrDimensionMismatch) {
				fatal.CompareAndSwap(nil, &err)
			}
		})
		if err != nil {
			wg.Done()
			outcomes[i].Err = err
		}
	}
	wg.Wait()
	if cause := fatal.Load(); cause != nil {
		c.logger.Error("batch aborted on configuration error", "documents", len(docs), "err", *cause)
		return outcomes
	}
	c.logger.Info("batch ingested", "documents", len(docs))
	return outcomes
}
