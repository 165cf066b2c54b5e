package badger

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/talentgraph/core"
	"github.com/poiesic/talentgraph/storage"
)

// readValue decodes the value stored at key, returning nil when the key is absent.
func readValue[T any](tx *badger.Txn, key []byte, decode func([]byte) (*T, error)) (*T, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var out *T
	err = item.Value(func(val []byte) error {
		var err error
		out, err = decode(val)
		return err
	})
	return out, err
}

// readID reads an ID value, returning 0 when the key is absent.
func readID(tx *badger.Txn, key []byte) (core.ID, error) {
	id, err := readValue(tx, key, func(val []byte) (*core.ID, error) {
		id, err := storage.UnmarshalID(val)
		return &id, err
	})
	if err != nil || id == nil {
		return 0, err
	}
	return *id, nil
}

func readCandidate(tx *badger.Txn, id core.ID) (*core.Candidate, error) {
	return readValue(tx, makeCandidateKey(id), storage.UnmarshalCandidate)
}

func readNode(tx *badger.Txn, key []byte) (*core.Node, error) {
	return readValue(tx, key, storage.UnmarshalNode)
}

func readEducation(tx *badger.Txn, id core.ID) (*core.Education, error) {
	return readValue(tx, makeEducationKey(id), storage.UnmarshalEducation)
}

func readProject(tx *badger.Txn, id core.ID) (*core.Project, error) {
	return readValue(tx, makeProjectKey(id), storage.UnmarshalProject)
}

func readSegment(tx *badger.Txn, id core.ID) (*core.TextSegment, error) {
	return readValue(tx, makeSegmentKey(id), storage.UnmarshalTextSegment)
}

// nodeName returns the display name of a shared node, or "" when missing.
func nodeName(tx *badger.Txn, id core.ID) (string, error) {
	node, err := readNode(tx, makeNodeKey(id))
	if err != nil || node == nil {
		return "", err
	}
	return node.Name, nil
}

// resolveCandidate expands a candidate into a record with names resolved.
func resolveCandidate(tx *badger.Txn, c *core.Candidate) (*core.CandidateRecord, error) {
	record := &core.CandidateRecord{Candidate: *c}

	for _, skillID := range c.Skills {
		name, err := nodeName(tx, skillID)
		if err != nil {
			return nil, err
		}
		if name != "" {
			record.SkillNames = append(record.SkillNames, name)
		}
	}

	for _, eduID := range c.Education {
		edu, err := readEducation(tx, eduID)
		if err != nil {
			return nil, err
		}
		if edu == nil {
			continue
		}
		institution, err := nodeName(tx, edu.InstitutionId)
		if err != nil {
			return nil, err
		}
		record.EducationDetails = append(record.EducationDetails, core.ResolvedEducation{
			Education:   *edu,
			Institution: institution,
		})
	}

	for _, projID := range c.Projects {
		proj, err := readProject(tx, projID)
		if err != nil {
			return nil, err
		}
		if proj == nil {
			continue
		}
		resolved := core.ResolvedProject{Project: *proj}
		for _, techID := range proj.Technologies {
			name, err := nodeName(tx, techID)
			if err != nil {
				return nil, err
			}
			if name != "" {
				resolved.TechnologyNames = append(resolved.TechnologyNames, name)
			}
		}
		record.ProjectDetails = append(record.ProjectDetails, resolved)
	}

	return record, nil
}

// GetCandidate retrieves a candidate with its subgraph resolved.
func (r *GraphStore) GetCandidate(ctx context.Context, id core.ID) (*core.CandidateRecord, error) {
	var record *core.CandidateRecord
	err := r.backend.View(func(tx *badger.Txn) error {
		candidate, err := readCandidate(tx, id)
		if err != nil {
			return err
		}
		if candidate == nil {
			return fmt.Errorf("%w: candidate %d", storage.ErrNotFound, id)
		}
		record, err = resolveCandidate(tx, candidate)
		return err
	})
	return record, err
}

// FindCandidatesByName returns every candidate with the normalized name, most recent first.
func (r *GraphStore) FindCandidatesByName(ctx context.Context, name string) ([]core.CandidateSummary, error) {
	normalized := core.NormalizeName(name)
	if normalized == "" {
		return nil, fmt.Errorf("%w: name is empty", storage.ErrInvalidQuery)
	}

	var matches []core.CandidateSummary
	err := r.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makePartialNameKey(normalized)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			candidate, err := readCandidate(tx, edgeTarget(iter.Item().Key()))
			if err != nil {
				return err
			}
			if candidate != nil {
				matches = append(matches, candidate.Summary())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(matches, func(a, b core.CandidateSummary) int {
		if c := b.IngestedAt.Compare(a.IngestedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.Id, a.Id)
	})
	if matches == nil {
		matches = []core.CandidateSummary{}
	}
	return matches, nil
}

// GetCandidateByName returns the only candidate with the name.
// Several matches produce *storage.AmbiguousNameError; callers pick one of
// its Matches and fetch it by ID.
func (r *GraphStore) GetCandidateByName(ctx context.Context, name string) (*core.CandidateRecord, error) {
	matches, err := r.FindCandidatesByName(ctx, name)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: candidate named %q", storage.ErrNotFound, name)
	case 1:
		return r.GetCandidate(ctx, matches[0].Id)
	default:
		return nil, &storage.AmbiguousNameError{Name: name, Matches: matches}
	}
}

// ListCandidates returns summaries, most recently ingested first.
func (r *GraphStore) ListCandidates(ctx context.Context, filter storage.CandidateFilter) ([]core.CandidateSummary, error) {
	if filter.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must be >= 0", storage.ErrInvalidQuery)
	}

	var skillID core.ID
	if filter.Skill != "" {
		skillID = core.NodeID(core.KindSkill, core.NormalizeName(filter.Skill))
	}

	summaries := []core.CandidateSummary{}
	err := r.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(candidateTimePrefix)
		for iter.Seek(makeTimeSeekEnd()); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, prefix) {
				break
			}

			id := edgeTarget(key)
			if skillID != 0 {
				_, err := tx.Get(makeEdgeKey(adjacencyPrefix, core.RelHasSkill, id, skillID))
				if err == badger.ErrKeyNotFound {
					continue
				}
				if err != nil {
					return err
				}
			}

			candidate, err := readCandidate(tx, id)
			if err != nil {
				return err
			}
			if candidate == nil {
				continue
			}
			if filter.Status != 0 && candidate.Status != filter.Status {
				continue
			}

			summaries = append(summaries, candidate.Summary())
			if filter.Limit > 0 && len(summaries) >= filter.Limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// Neighbors returns entities one hop from id across the relation kinds, in either direction.
func (r *GraphStore) Neighbors(ctx context.Context, id core.ID, kinds ...core.RelationKind) ([]core.Entity, error) {
	if len(kinds) == 0 {
		kinds = []core.RelationKind{
			core.RelHasSkill, core.RelStudied, core.RelAtInstitution,
			core.RelWorkedOn, core.RelUses, core.RelHasSegment,
		}
	}

	type edge struct {
		rel  core.RelationKind
		kind core.EntityKind
		id   core.ID
	}

	var entities []core.Entity
	err := r.backend.View(func(tx *badger.Txn) error {
		seen := make(map[edge]bool)
		var edges []edge

		for _, rel := range kinds {
			from, to := rel.Ends()
			if from == 0 {
				return fmt.Errorf("%w: unknown relation kind %d", storage.ErrInvalidQuery, rel)
			}
			for _, dir := range []struct {
				prefix string
				far    core.EntityKind
			}{
				{adjacencyPrefix, to},
				{reverseAdjacencyPrefix, from},
			} {
				opts := badger.DefaultIteratorOptions
				opts.PrefetchValues = false
				opts.Prefix = makePartialEdgeKey(dir.prefix, rel, id)
				iter := tx.NewIterator(opts)
				for iter.Rewind(); iter.Valid(); iter.Next() {
					e := edge{rel: rel, kind: dir.far, id: edgeTarget(iter.Item().Key())}
					if !seen[e] {
						seen[e] = true
						edges = append(edges, e)
					}
				}
				iter.Close()
			}
		}

		for _, e := range edges {
			entity, err := loadEntity(tx, e.kind, e.id)
			if err != nil {
				return err
			}
			if entity == nil {
				continue
			}
			entity.Relation = e.rel
			entities = append(entities, *entity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(entities, func(a, b core.Entity) int {
		if c := cmp.Compare(a.Relation, b.Relation); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Id, b.Id)
	})
	return entities, nil
}

// loadEntity builds the uniform view of an entity, or nil when it no longer exists.
func loadEntity(tx *badger.Txn, kind core.EntityKind, id core.ID) (*core.Entity, error) {
	switch kind {
	case core.KindCandidate:
		c, err := readCandidate(tx, id)
		if err != nil || c == nil {
			return nil, err
		}
		return &core.Entity{Id: id, Kind: kind, Name: c.Name, Attrs: map[string]string{
			"title":  c.Title,
			"status": c.Status.String(),
		}}, nil

	case core.KindSkill, core.KindInstitution, core.KindTechnology:
		n, err := readNode(tx, makeNodeKey(id))
		if err != nil || n == nil {
			return nil, err
		}
		return &core.Entity{Id: id, Kind: kind, Name: n.Name, Attrs: map[string]string{
			"normalized": n.Normalized,
		}}, nil

	case core.KindEducation:
		e, err := readEducation(tx, id)
		if err != nil || e == nil {
			return nil, err
		}
		attrs := map[string]string{"degree": e.Degree}
		if e.Year != 0 {
			attrs["year"] = strconv.Itoa(e.Year)
		}
		return &core.Entity{Id: id, Kind: kind, Name: e.Degree, Attrs: attrs}, nil

	case core.KindProject:
		p, err := readProject(tx, id)
		if err != nil || p == nil {
			return nil, err
		}
		return &core.Entity{Id: id, Kind: kind, Name: p.Name, Attrs: map[string]string{
			"role":        p.Role,
			"description": p.Description,
		}}, nil

	case core.KindTextSegment:
		s, err := readSegment(tx, id)
		if err != nil || s == nil {
			return nil, err
		}
		return &core.Entity{Id: id, Kind: kind, Name: "segment " + strconv.Itoa(s.Index), Attrs: map[string]string{
			"index": strconv.Itoa(s.Index),
			"text":  s.Text,
		}}, nil
	}
	return nil, fmt.Errorf("%w: unknown entity kind %d", storage.ErrInvalidQuery, kind)
}

// FindNode looks up a shared node by kind and normalized name.
func (r *GraphStore) FindNode(ctx context.Context, kind core.EntityKind, name string) (*core.Node, error) {
	if !kind.IsShared() {
		return nil, fmt.Errorf("%w: %s is not a shared kind", storage.ErrInvalidQuery, kind)
	}
	normalized := core.NormalizeName(name)

	var node *core.Node
	err := r.backend.View(func(tx *badger.Txn) error {
		var err error
		node, err = readNode(tx, makeNodeKey(core.NodeID(kind, normalized)))
		return err
	})
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("%w: %s %q", storage.ErrNotFound, kind, name)
	}
	return node, nil
}

// Segments returns the candidate's text segments in index order.
func (r *GraphStore) Segments(ctx context.Context, candidateID core.ID) ([]core.TextSegment, error) {
	var segments []core.TextSegment
	err := r.backend.View(func(tx *badger.Txn) error {
		candidate, err := readCandidate(tx, candidateID)
		if err != nil {
			return err
		}
		if candidate == nil {
			return fmt.Errorf("%w: candidate %d", storage.ErrNotFound, candidateID)
		}
		segments = make([]core.TextSegment, 0, candidate.SegmentCount)
		for i := 0; i < candidate.SegmentCount; i++ {
			seg, err := readSegment(tx, core.OwnedID(candidateID, core.KindTextSegment, i))
			if err != nil {
				return err
			}
			if seg == nil {
				return fmt.Errorf("%w: segment %d of candidate %d", storage.ErrNotFound, i, candidateID)
			}
			segments = append(segments, *seg)
		}
		return nil
	})
	return segments, err
}

// ForEachCandidate calls fn for every candidate in key order.
// Candidates are read in one snapshot and fn runs outside the transaction.
func (r *GraphStore) ForEachCandidate(ctx context.Context, fn func(c *core.Candidate) error) error {
	var candidates []*core.Candidate
	err := r.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(candidatePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var candidate *core.Candidate
			err := iter.Item().Value(func(val []byte) error {
				var err error
				candidate, err = storage.UnmarshalCandidate(val)
				return err
			})
			if err != nil {
				return err
			}
			candidates = append(candidates, candidate)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}
