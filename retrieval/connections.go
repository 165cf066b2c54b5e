package retrieval

import (
	"context"
	"fmt"
	"sort"

	"github.com/poiesic/talentgraph/core"
)

// ConnectionKind names how two candidates are related.
type ConnectionKind string

const (
	// StudiedWith links candidates educated at the same institution.
	StudiedWith ConnectionKind = "STUDIED_WITH"
	// WorkedWith links candidates who worked on projects with the same normalized name.
	WorkedWith ConnectionKind = "WORKED_WITH"
	// SharesTechnology links candidates whose projects used the same technology.
	SharesTechnology ConnectionKind = "SHARES_TECHNOLOGY"
	// SharesSkills links candidates with at least MinSharedSkills skills in common.
	SharesSkills ConnectionKind = "SHARES_SKILLS"
)

// MinSharedSkills is the overlap needed for a SharesSkills connection.
const MinSharedSkills = 3

// Connection is a derived relationship between two candidates.
type Connection struct {
	Kind          ConnectionKind
	CandidateId   core.ID
	CandidateName string
	Via           []string // Shared institutions, projects, technologies or skills, sorted
}

// Connections derives the candidates related to id through shared
// institutions, project names, technologies and skills. Results are ordered by kind, then
// candidate name. Returns core.ErrNotFound for an unknown candidate.
func (r *Retriever) Connections(ctx context.Context, id core.ID) ([]Connection, error) {
	if _, err := r.graph.GetCandidate(ctx, id); err != nil {
		return nil, err
	}

	studied, err := r.sharedThrough(ctx, id, core.RelStudied, core.RelAtInstitution)
	if err != nil {
		return nil, fmt.Errorf("institutions: %w", err)
	}
	projects, err := r.sameProjects(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("projects: %w", err)
	}
	techs, err := r.sharedThrough(ctx, id, core.RelWorkedOn, core.RelUses)
	if err != nil {
		return nil, fmt.Errorf("technologies: %w", err)
	}
	skills, err := r.sharedThrough(ctx, id, core.RelHasSkill)
	if err != nil {
		return nil, fmt.Errorf("skills: %w", err)
	}

	var out []Connection
	out = appendConnections(out, StudiedWith, studied, 1)
	out = appendConnections(out, WorkedWith, projects, 1)
	out = appendConnections(out, SharesTechnology, techs, 1)
	out = appendConnections(out, SharesSkills, skills, MinSharedSkills)
	return out, nil
}

// peer accumulates the shared nodes leading to one other candidate.
type peer struct {
	name string
	via  map[string]bool
}

// sharedThrough walks from the candidate along path to shared nodes, then
// back along the reversed path to other candidates.
func (r *Retriever) sharedThrough(ctx context.Context, id core.ID, path ...core.RelationKind) (map[core.ID]*peer, error) {
	frontier := []core.Entity{{Id: id, Kind: core.KindCandidate}}
	for _, rel := range path {
		next, err := r.hop(ctx, frontier, rel)
		if err != nil {
			return nil, err
		}
		frontier = next
	}

	peers := make(map[core.ID]*peer)
	for _, shared := range frontier {
		back := []core.Entity{shared}
		for i := len(path) - 1; i >= 0; i-- {
			next, err := r.hop(ctx, back, path[i])
			if err != nil {
				return nil, err
			}
			back = next
		}
		for _, c := range back {
			if c.Kind != core.KindCandidate || c.Id == id {
				continue
			}
			p, ok := peers[c.Id]
			if !ok {
				p = &peer{name: c.Name, via: make(map[string]bool)}
				peers[c.Id] = p
			}
			p.via[shared.Name] = true
		}
	}
	return peers, nil
}

// sameProjects finds candidates with a project whose normalized name matches
// one of id's projects. Projects are owned entities, so the match is by name
// rather than by a shared node.
func (r *Retriever) sameProjects(ctx context.Context, id core.ID) (map[core.ID]*peer, error) {
	own, err := r.graph.Neighbors(ctx, id, core.RelWorkedOn)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(own))
	for _, p := range own {
		if key := core.NormalizeName(p.Name); key != "" {
			names[key] = p.Name
		}
	}
	if len(names) == 0 {
		return nil, nil
	}

	var others []*core.Candidate
	err = r.graph.ForEachCandidate(ctx, func(c *core.Candidate) error {
		if c.Id != id {
			others = append(others, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	peers := make(map[core.ID]*peer)
	for _, c := range others {
		projects, err := r.graph.Neighbors(ctx, c.Id, core.RelWorkedOn)
		if err != nil {
			return nil, err
		}
		for _, p := range projects {
			name, ok := names[core.NormalizeName(p.Name)]
			if !ok {
				continue
			}
			pr, ok := peers[c.Id]
			if !ok {
				pr = &peer{name: c.Name, via: make(map[string]bool)}
				peers[c.Id] = pr
			}
			pr.via[name] = true
		}
	}
	return peers, nil
}

// hop returns the distinct neighbors of entities across rel.
func (r *Retriever) hop(ctx context.Context, entities []core.Entity, rel core.RelationKind) ([]core.Entity, error) {
	seen := make(map[core.ID]bool)
	var out []core.Entity
	for _, e := range entities {
		neighbors, err := r.graph.Neighbors(ctx, e.Id, rel)
		if err != nil {
			return nil, err
		}
		for _, n := range neighbors {
			if !seen[n.Id] {
				seen[n.Id] = true
				out = append(out, n)
			}
		}
	}
	return out, nil
}

func appendConnections(out []Connection, kind ConnectionKind, peers map[core.ID]*peer, minShared int) []Connection {
	start := len(out)
	for pid, p := range peers {
		if len(p.via) < minShared {
			continue
		}
		via := make([]string, 0, len(p.via))
		for v := range p.via {
			via = append(via, v)
		}
		sort.Strings(via)
		out = append(out, Connection{Kind: kind, CandidateId: pid, CandidateName: p.name, Via: via})
	}
	added := out[start:]
	sort.Slice(added, func(i, j int) bool {
		if added[i].CandidateName != added[j].CandidateName {
			return added[i].CandidateName < added[j].CandidateName
		}
		return added[i].CandidateId < added[j].CandidateId
	})
	return out
}
