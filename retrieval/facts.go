package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/talentgraph/core"
	"github.com/poiesic/talentgraph/storage"
)

// candidateFacts is the enrichment for one candidate.
type candidateFacts struct {
	name  string
	facts []string
}

// segmentBlocks turns ranked matches into context blocks. Each block holds
// the segment text followed by the candidate's graph facts not already placed
// in a higher-ranked block.
func (r *Retriever) segmentBlocks(ctx context.Context, matches []storage.SegmentMatch, monitor Monitor) ([]block, error) {
	cache := make(map[core.ID]*candidateFacts)
	emitted := make(map[string]bool)
	blocks := make([]block, 0, len(matches))

	for _, m := range matches {
		cf, ok := cache[m.CandidateId]
		if !ok {
			var err error
			cf, err = r.candidateFacts(ctx, m.CandidateId)
			if err != nil {
				return nil, err
			}
			cache[m.CandidateId] = cf
			monitor.AfterEnrichment(m.CandidateId, cf.facts)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "[Candidate: %s | segment %d | score %.3f]\n", cf.name, m.Index, m.Score)
		b.WriteString(m.Text)
		for _, fact := range cf.facts {
			if emitted[fact] {
				continue
			}
			emitted[fact] = true
			b.WriteString("\n- ")
			b.WriteString(fact)
		}
		blocks = append(blocks, block{candidate: m.CandidateId, text: b.String()})
	}
	return blocks, nil
}

// candidateFacts collects structured facts about a candidate: one hop for
// skills, education and projects, and a second hop from education to
// institution and from projects to technologies.
func (r *Retriever) candidateFacts(ctx context.Context, id core.ID) (*candidateFacts, error) {
	record, err := r.graph.GetCandidate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("candidate %d: %w", id, err)
	}
	name := record.Name
	out := &candidateFacts{name: name}

	neighbors, err := r.graph.Neighbors(ctx, id, core.RelHasSkill, core.RelStudied, core.RelWorkedOn)
	if err != nil {
		return nil, fmt.Errorf("candidate %d neighbors: %w", id, err)
	}

	var skills, details []string
	for _, n := range neighbors {
		switch n.Kind {
		case core.KindSkill:
			skills = append(skills, n.Name)

		case core.KindEducation:
			institutions, err := r.graph.Neighbors(ctx, n.Id, core.RelAtInstitution)
			if err != nil {
				return nil, err
			}
			fact := fmt.Sprintf("%s studied %s", name, orUnknown(n.Attrs["degree"], "a degree"))
			if len(institutions) > 0 {
				fact += " at " + institutions[0].Name
			}
			if year := n.Attrs["year"]; year != "" {
				fact += " (" + year + ")"
			}
			details = append(details, fact+".")

		case core.KindProject:
			techs, err := r.graph.Neighbors(ctx, n.Id, core.RelUses)
			if err != nil {
				return nil, err
			}
			fact := fmt.Sprintf("%s worked on project '%s'", name, n.Name)
			if role := n.Attrs["role"]; role != "" {
				fact += " as " + role
			}
			fact += "."
			if desc := n.Attrs["description"]; desc != "" {
				fact += " Description: " + desc + "."
			}
			if len(techs) > 0 {
				fact += " Technologies: " + joinNames(techs) + "."
			}
			details = append(details, fact)
		}
	}
	if record.Title != "" {
		out.facts = append(out.facts, fmt.Sprintf("%s's current title is %s.", name, record.Title))
	}
	if len(skills) > 0 {
		out.facts = append(out.facts, fmt.Sprintf("%s has skills: %s.", name, strings.Join(skills, ", ")))
	}
	out.facts = append(out.facts, details...)
	return out, nil
}

func joinNames(entities []core.Entity) string {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Name
	}
	return strings.Join(names, ", ")
}

func orUnknown(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
