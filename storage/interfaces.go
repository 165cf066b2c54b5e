package storage

import (
	"context"

	"github.com/poiesic/talentgraph/core"
)

// CandidateFilter narrows ListCandidates. Zero values match everything.
type CandidateFilter struct {
	Skill  string               // Only candidates with this skill (normalized match)
	Status core.CandidateStatus // Only candidates in this status
	Limit  int                  // Maximum results, 0 for no limit
}

// SegmentMatch is one search hit from the SegmentIndex.
type SegmentMatch struct {
	CandidateId ID
	Index       int
	Text        string
	Score       float32
	Seq         uint64 // Insertion order, used as the tie-breaker
}

// ID is re-exported for brevity in storage signatures.
type ID = core.ID

// GraphStore persists the knowledge graph.
type GraphStore interface {
	// UpsertCandidate validates the draft and writes the candidate with its full
	// subgraph in one transaction. Shared nodes are resolved with get-or-create.
	// Returns the new candidate ID, or an error wrapping core.ErrDuplicateDocument
	// together with the existing ID when the checksum is already known.
	UpsertCandidate(ctx context.Context, draft *core.CandidateDraft) (ID, error)

	// HasChecksum reports whether a candidate with the checksum exists.
	HasChecksum(ctx context.Context, checksum string) (ID, bool, error)

	// GetCandidate retrieves a candidate with its subgraph resolved.
	// Returns ErrNotFound if the candidate doesn't exist.
	GetCandidate(ctx context.Context, id ID) (*core.CandidateRecord, error)

	// FindCandidatesByName returns every candidate whose normalized name matches,
	// most recently ingested first. Returns an empty slice when none match.
	FindCandidatesByName(ctx context.Context, name string) ([]core.CandidateSummary, error)

	// GetCandidateByName returns the single candidate with the name.
	// Returns ErrNotFound for no match and *AmbiguousNameError for several.
	GetCandidateByName(ctx context.Context, name string) (*core.CandidateRecord, error)

	// ListCandidates returns candidate summaries, most recently ingested first.
	ListCandidates(ctx context.Context, filter CandidateFilter) ([]core.CandidateSummary, error)

	// Neighbors returns the entities exactly one hop away from id across the
	// requested relation kinds, in either direction. No kinds means all kinds.
	Neighbors(ctx context.Context, id ID, kinds ...core.RelationKind) ([]core.Entity, error)

	// FindNode looks up a shared node by kind and name.
	// Returns ErrNotFound if no node has that normalized name.
	FindNode(ctx context.Context, kind core.EntityKind, name string) (*core.Node, error)

	// Segments returns the candidate's text segments in index order, without vectors.
	Segments(ctx context.Context, candidateID ID) ([]core.TextSegment, error)

	// SetCandidateStatus updates the index status of a candidate.
	SetCandidateStatus(ctx context.Context, id ID, status core.CandidateStatus) error

	// DeleteCandidate purges the candidate, its owned subgraph and its index entries.
	// Shared nodes are kept.
	DeleteCandidate(ctx context.Context, id ID) error

	// ForEachCandidate calls fn for every candidate in ID order until fn returns an error.
	ForEachCandidate(ctx context.Context, fn func(c *core.Candidate) error) error

	// Close releases resources held by the store.
	Close() error
}

// SegmentIndex stores segment embeddings and answers nearest-neighbor queries.
type SegmentIndex interface {
	// AddSegments writes segments for a candidate. Segment i of the slice has
	// segment index i. Re-adding an index overwrites it and keeps its original
	// insertion order. Returns core.ErrDimensionMismatch for vectors of the
	// wrong size and ErrNotFound for unknown candidates.
	AddSegments(ctx context.Context, candidateID ID, segments []core.TextSegment) error

	// Search returns the k segments most similar to vector by cosine similarity,
	// highest first, ties broken by insertion order.
	Search(ctx context.Context, vector []float32, k int) ([]SegmentMatch, error)

	// RemoveCandidate deletes every segment of the candidate.
	RemoveCandidate(ctx context.Context, candidateID ID) error

	// Clear deletes every segment. Used by full rebuilds.
	Clear(ctx context.Context) error

	// Count returns the number of indexed segments.
	Count(ctx context.Context) (int, error)

	// Dimensions returns the pinned dimensionality, or 0 before the first write.
	Dimensions() int

	// Close releases resources held by the index.
	Close() error
}
