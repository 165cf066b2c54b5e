package badger

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/talentgraph/core"
	"github.com/poiesic/talentgraph/storage"
)

// SegmentIndex implements storage.SegmentIndex with a brute-force cosine scan over BadgerDB.
// It shares its backend with the GraphStore so entries can be checked against
// candidates in the same transaction.
type SegmentIndex struct {
	backend    *Backend
	seq        *badger.Sequence
	configured int
	logger     *slog.Logger

	mu   sync.RWMutex
	dims int
}

var _ storage.SegmentIndex = (*SegmentIndex)(nil)

// NewSegmentIndex opens the index on backend. dimensions of 0 pins the
// dimensionality on the first write; otherwise it must agree with any
// dimensionality persisted by earlier runs.
func NewSegmentIndex(backend *Backend, dimensions int) (*SegmentIndex, error) {
	if backend == nil {
		return nil, errors.New("segment index: backend is required")
	}
	if dimensions < 0 {
		return nil, fmt.Errorf("segment index: dimensions must be >= 0, got %d", dimensions)
	}

	var persisted int
	err := backend.View(func(tx *badger.Txn) error {
		var err error
		persisted, err = readDimensions(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if persisted != 0 && dimensions != 0 && persisted != dimensions {
		return nil, fmt.Errorf("%w: index holds %d-dimensional vectors, configured for %d",
			core.ErrDimensionMismatch, persisted, dimensions)
	}

	seq, err := backend.GetSequence(indexSeq)
	if err != nil {
		return nil, err
	}

	dims := persisted
	if dims == 0 {
		dims = dimensions
	}

	return &SegmentIndex{
		backend:    backend,
		seq:        seq,
		configured: dimensions,
		dims:       dims,
		logger:     backend.logger.With("store", "segment_index"),
	}, nil
}

func readDimensions(tx *badger.Txn) (int, error) {
	id, err := readID(tx, []byte(indexDimensionKey))
	return int(id), err
}

// Dimensions returns the pinned dimensionality, or 0 before the first write.
func (s *SegmentIndex) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dims
}

// nextSeq returns the next insertion sequence number, skipping 0.
func (s *SegmentIndex) nextSeq() (uint64, error) {
	n, err := s.seq.Next()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return s.seq.Next()
	}
	return n, nil
}

// AddSegments writes the candidate's segments; segment i of the slice is stored
// as segment index i.
func (s *SegmentIndex) AddSegments(ctx context.Context, candidateID core.ID, segments []core.TextSegment) error {
	if len(segments) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dims := s.Dimensions()
	want := dims
	if want == 0 {
		want = len(segments[0].Vector)
	}
	for i, seg := range segments {
		if len(seg.Vector) == 0 {
			return fmt.Errorf("%w: segment %d has no vector", storage.ErrInvalidQuery, i)
		}
		if len(seg.Vector) != want {
			return fmt.Errorf("%w: segment %d has %d dimensions, index expects %d",
				core.ErrDimensionMismatch, i, len(seg.Vector), want)
		}
	}

	err := s.backend.Update(func(tx *badger.Txn) error {
		candidate, err := readCandidate(tx, candidateID)
		if err != nil {
			return err
		}
		if candidate == nil {
			return fmt.Errorf("%w: candidate %d", storage.ErrNotFound, candidateID)
		}

		persisted, err := readDimensions(tx)
		if err != nil {
			return err
		}
		if persisted != 0 && persisted != want {
			return fmt.Errorf("%w: index holds %d-dimensional vectors, got %d",
				core.ErrDimensionMismatch, persisted, want)
		}
		if persisted == 0 {
			if err := tx.Set([]byte(indexDimensionKey), storage.MarshalID(core.ID(want))); err != nil {
				return err
			}
		}

		for i, seg := range segments {
			key := makeIndexKey(candidateID, i)
			existing, err := readValue(tx, key, storage.UnmarshalSegmentEntry)
			if err != nil {
				return err
			}

			entry := &storage.SegmentEntry{
				CandidateId: candidateID,
				Index:       i,
				Text:        seg.Text,
				Vector:      normalizeVector(seg.Vector),
			}
			if existing != nil {
				entry.Seq = existing.Seq
			} else if entry.Seq, err = s.nextSeq(); err != nil {
				return err
			}

			if err := tx.Set(key, storage.MarshalSegmentEntry(entry)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if dims == 0 {
		s.mu.Lock()
		s.dims = want
		s.mu.Unlock()
	}
	s.logger.Debug("segments indexed", "candidate", candidateID, "count", len(segments))
	return nil
}

// Search returns the k segments most similar to vector, highest first.
// Equal scores keep insertion order.
func (s *SegmentIndex) Search(ctx context.Context, vector []float32, k int) ([]storage.SegmentMatch, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be > 0", storage.ErrInvalidQuery)
	}

	dims := s.Dimensions()
	if dims == 0 {
		return []storage.SegmentMatch{}, nil
	}
	if len(vector) != dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index expects %d",
			core.ErrDimensionMismatch, len(vector), dims)
	}
	query := normalizeVector(vector)

	var matches []storage.SegmentMatch
	err := s.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(indexEntryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				entry, err := storage.UnmarshalSegmentEntry(val)
				if err != nil {
					return err
				}
				matches = append(matches, storage.SegmentMatch{
					CandidateId: entry.CandidateId,
					Index:       entry.Index,
					Text:        entry.Text,
					Score:       dotProduct(query, entry.Vector),
					Seq:         entry.Seq,
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(matches, func(a, b storage.SegmentMatch) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	if matches == nil {
		matches = []storage.SegmentMatch{}
	}
	return matches, nil
}

// RemoveCandidate deletes every segment of the candidate.
func (s *SegmentIndex) RemoveCandidate(ctx context.Context, candidateID core.ID) error {
	return s.backend.Update(func(tx *badger.Txn) error {
		return deleteIndexEntries(tx, candidateID)
	})
}

// deleteIndexEntries removes every index entry of a candidate within tx.
func deleteIndexEntries(tx *badger.Txn, candidateID core.ID) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = makePartialIndexKey(candidateID)
	iter := tx.NewIterator(opts)

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	iter.Close()

	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// Clear deletes every entry and unpins the dimensionality so a rebuild may
// switch embedding models.
func (s *SegmentIndex) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.db.DropPrefix([]byte(indexEntryPrefix), []byte(indexDimensionKey)); err != nil {
		return err
	}
	s.dims = s.configured
	s.logger.Info("segment index cleared")
	return nil
}

// Count returns the number of indexed segments.
func (s *SegmentIndex) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(indexEntryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Close releases the insertion sequence.
func (s *SegmentIndex) Close() error {
	return s.seq.Release()
}
