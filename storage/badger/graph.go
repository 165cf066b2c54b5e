package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/talentgraph/core"
	"github.com/poiesic/talentgraph/storage"
)

// GraphStore implements storage.GraphStore using BadgerDB.
type GraphStore struct {
	backend *Backend
	logger  *slog.Logger

	// beforeCommit runs inside the upsert transaction after every write has been
	// staged. Tests use it to abort a transaction midway.
	beforeCommit func(tx *badger.Txn, c *core.Candidate) error
}

var _ storage.GraphStore = (*GraphStore)(nil)

// NewGraphStore creates a new BadgerDB graph store on the backend.
func NewGraphStore(backend *Backend) (*GraphStore, error) {
	if backend == nil {
		return nil, errors.New("graph store: backend is required")
	}
	return &GraphStore{
		backend: backend,
		logger:  backend.logger.With("store", "graph"),
	}, nil
}

// CandidateID returns the ID a candidate with the checksum is stored under.
func CandidateID(checksum string) core.ID {
	return core.IDFromContent("candidate:" + checksum)
}

// duplicateError carries the ID of the candidate that already owns a checksum.
type duplicateError struct {
	id       core.ID
	checksum string
}

func (e *duplicateError) Error() string {
	return fmt.Sprintf("%v: checksum %s belongs to candidate %d", core.ErrDuplicateDocument, e.checksum, e.id)
}

func (e *duplicateError) Unwrap() error {
	return core.ErrDuplicateDocument
}

// UpsertCandidate writes the candidate and its full subgraph in one transaction.
func (r *GraphStore) UpsertCandidate(ctx context.Context, draft *core.CandidateDraft) (core.ID, error) {
	if err := core.ValidateCandidateDraft(draft); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	candidateID := CandidateID(draft.Checksum)

	err := r.backend.Update(func(tx *badger.Txn) error {
		existing, err := readID(tx, makeChecksumKey(draft.Checksum))
		if err != nil {
			return err
		}
		if existing != 0 {
			return &duplicateError{id: existing, checksum: draft.Checksum}
		}

		now := time.Now().UTC()
		candidate := &core.Candidate{
			Id:             candidateID,
			Name:           draft.Name,
			NormalizedName: core.NormalizeName(draft.Name),
			Title:          draft.Title,
			DocumentRef:    draft.DocumentRef,
			Checksum:       draft.Checksum,
			SegmentCount:   len(draft.Segments),
			Status:         core.StatusIndexIncomplete,
			IngestedAt:     now,
		}

		for _, name := range core.DedupeNames(draft.Skills) {
			node, err := getOrCreateNode(tx, core.KindSkill, name, now)
			if err != nil {
				return err
			}
			candidate.Skills = append(candidate.Skills, node.Id)
			if err := setEdge(tx, core.RelHasSkill, candidateID, node.Id); err != nil {
				return err
			}
		}

		for i, draftEdu := range draft.Education {
			institution, err := getOrCreateNode(tx, core.KindInstitution, draftEdu.Institution, now)
			if err != nil {
				return err
			}
			edu := &core.Education{
				Id:            core.OwnedID(candidateID, core.KindEducation, i),
				CandidateId:   candidateID,
				Degree:        draftEdu.Degree,
				InstitutionId: institution.Id,
				Year:          draftEdu.Year,
			}
			if err := tx.Set(makeEducationKey(edu.Id), storage.MarshalEducation(edu)); err != nil {
				return err
			}
			if err := setEdge(tx, core.RelStudied, candidateID, edu.Id); err != nil {
				return err
			}
			if err := setEdge(tx, core.RelAtInstitution, edu.Id, institution.Id); err != nil {
				return err
			}
			candidate.Education = append(candidate.Education, edu.Id)
		}

		for i, draftProj := range draft.Projects {
			proj := &core.Project{
				Id:          core.OwnedID(candidateID, core.KindProject, i),
				CandidateId: candidateID,
				Name:        draftProj.Name,
				Role:        draftProj.Role,
				Description: draftProj.Description,
			}
			for _, name := range core.DedupeNames(draftProj.Technologies) {
				tech, err := getOrCreateNode(tx, core.KindTechnology, name, now)
				if err != nil {
					return err
				}
				proj.Technologies = append(proj.Technologies, tech.Id)
				if err := setEdge(tx, core.RelUses, proj.Id, tech.Id); err != nil {
					return err
				}
			}
			if err := tx.Set(makeProjectKey(proj.Id), storage.MarshalProject(proj)); err != nil {
				return err
			}
			if err := setEdge(tx, core.RelWorkedOn, candidateID, proj.Id); err != nil {
				return err
			}
			candidate.Projects = append(candidate.Projects, proj.Id)
		}

		for i, text := range draft.Segments {
			seg := &core.TextSegment{CandidateId: candidateID, Index: i, Text: text}
			segID := core.OwnedID(candidateID, core.KindTextSegment, i)
			if err := tx.Set(makeSegmentKey(segID), storage.MarshalTextSegment(seg)); err != nil {
				return err
			}
			if err := setEdge(tx, core.RelHasSegment, candidateID, segID); err != nil {
				return err
			}
		}

		if err := tx.Set(makeCandidateKey(candidateID), storage.MarshalCandidate(candidate)); err != nil {
			return err
		}
		idBytes := storage.MarshalID(candidateID)
		if err := tx.Set(makeChecksumKey(candidate.Checksum), idBytes); err != nil {
			return err
		}
		if err := tx.Set(makeNameKey(candidate.NormalizedName, candidateID), idBytes); err != nil {
			return err
		}
		if err := tx.Set(makeTimeKey(candidate.IngestedAt, candidateID), idBytes); err != nil {
			return err
		}

		if r.beforeCommit != nil {
			return r.beforeCommit(tx, candidate)
		}
		return nil
	})

	var dup *duplicateError
	if errors.As(err, &dup) {
		return dup.id, err
	}
	if err != nil {
		return 0, err
	}

	r.logger.Debug("candidate committed", "id", candidateID, "skills", len(draft.Skills), "segments", len(draft.Segments))
	return candidateID, nil
}

// getOrCreateNode returns the shared node with the normalized name, creating it
// inside tx when absent. The read registers the key for conflict detection, so
// a concurrent creator forces this transaction to replay instead of racing.
func getOrCreateNode(tx *badger.Txn, kind core.EntityKind, name string, now time.Time) (*core.Node, error) {
	normalized := core.NormalizeName(name)
	if normalized == "" {
		return nil, fmt.Errorf("%s: %w", kind, core.ErrEmptyName)
	}
	id := core.NodeID(kind, normalized)
	key := makeNodeKey(id)

	node, err := readNode(tx, key)
	if err != nil {
		return nil, err
	}
	if node != nil {
		return node, nil
	}

	node = &core.Node{
		Id:         id,
		Kind:       kind,
		Name:       name,
		Normalized: normalized,
		CreatedAt:  now,
	}
	if err := tx.Set(key, storage.MarshalNode(node)); err != nil {
		return nil, err
	}
	return node, nil
}

// setEdge writes both directions of an edge.
func setEdge(tx *badger.Txn, rel core.RelationKind, from, to core.ID) error {
	if err := tx.Set(makeEdgeKey(adjacencyPrefix, rel, from, to), []byte{}); err != nil {
		return err
	}
	return tx.Set(makeEdgeKey(reverseAdjacencyPrefix, rel, to, from), []byte{})
}

// deleteEdge removes both directions of an edge.
func deleteEdge(tx *badger.Txn, rel core.RelationKind, from, to core.ID) error {
	if err := tx.Delete(makeEdgeKey(adjacencyPrefix, rel, from, to)); err != nil {
		return err
	}
	return tx.Delete(makeEdgeKey(reverseAdjacencyPrefix, rel, to, from))
}

// HasChecksum reports whether a candidate with the checksum exists.
func (r *GraphStore) HasChecksum(ctx context.Context, checksum string) (core.ID, bool, error) {
	var id core.ID
	err := r.backend.View(func(tx *badger.Txn) error {
		var err error
		id, err = readID(tx, makeChecksumKey(checksum))
		return err
	})
	if err != nil {
		return 0, false, err
	}
	return id, id != 0, nil
}

// SetCandidateStatus updates the index status of a candidate.
func (r *GraphStore) SetCandidateStatus(ctx context.Context, id core.ID, status core.CandidateStatus) error {
	return r.backend.Update(func(tx *badger.Txn) error {
		candidate, err := readCandidate(tx, id)
		if err != nil {
			return err
		}
		if candidate == nil {
			return fmt.Errorf("%w: candidate %d", storage.ErrNotFound, id)
		}
		if candidate.Status == status {
			return nil
		}
		candidate.Status = status
		return tx.Set(makeCandidateKey(id), storage.MarshalCandidate(candidate))
	})
}

// DeleteCandidate purges the candidate, its owned subgraph, adjacency entries and index entries.
func (r *GraphStore) DeleteCandidate(ctx context.Context, id core.ID) error {
	err := r.backend.Update(func(tx *badger.Txn) error {
		candidate, err := readCandidate(tx, id)
		if err != nil {
			return err
		}
		if candidate == nil {
			return fmt.Errorf("%w: candidate %d", storage.ErrNotFound, id)
		}

		for _, skillID := range candidate.Skills {
			if err := deleteEdge(tx, core.RelHasSkill, id, skillID); err != nil {
				return err
			}
		}

		for _, eduID := range candidate.Education {
			edu, err := readEducation(tx, eduID)
			if err != nil {
				return err
			}
			if edu != nil {
				if err := deleteEdge(tx, core.RelAtInstitution, eduID, edu.InstitutionId); err != nil {
					return err
				}
			}
			if err := deleteEdge(tx, core.RelStudied, id, eduID); err != nil {
				return err
			}
			if err := tx.Delete(makeEducationKey(eduID)); err != nil {
				return err
			}
		}

		for _, projID := range candidate.Projects {
			proj, err := readProject(tx, projID)
			if err != nil {
				return err
			}
			if proj != nil {
				for _, techID := range proj.Technologies {
					if err := deleteEdge(tx, core.RelUses, projID, techID); err != nil {
						return err
					}
				}
			}
			if err := deleteEdge(tx, core.RelWorkedOn, id, projID); err != nil {
				return err
			}
			if err := tx.Delete(makeProjectKey(projID)); err != nil {
				return err
			}
		}

		for i := 0; i < candidate.SegmentCount; i++ {
			segID := core.OwnedID(id, core.KindTextSegment, i)
			if err := deleteEdge(tx, core.RelHasSegment, id, segID); err != nil {
				return err
			}
			if err := tx.Delete(makeSegmentKey(segID)); err != nil {
				return err
			}
		}

		if err := deleteIndexEntries(tx, id); err != nil {
			return err
		}

		for _, key := range [][]byte{
			makeCandidateKey(id),
			makeChecksumKey(candidate.Checksum),
			makeNameKey(candidate.NormalizedName, id),
			makeTimeKey(candidate.IngestedAt, id),
		} {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.logger.Info("candidate purged", "id", id)
	return nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *GraphStore) Close() error {
	return nil
}
