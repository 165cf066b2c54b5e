package retrieval

import "errors"

var (
	// ErrGraphStoreRequired is returned when a graph store is not provided.
	ErrGraphStoreRequired = errors.New("graph store required")

	// ErrSegmentIndexRequired is returned when a segment index is not provided.
	ErrSegmentIndexRequired = errors.New("segment index required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmptyQuery is returned for blank queries.
	ErrEmptyQuery = errors.New("query cannot be empty")
)
