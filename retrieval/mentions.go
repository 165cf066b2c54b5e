package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/poiesic/talentgraph/core"
)

// maxMentionCandidates caps the names listed per mentioned entity.
const maxMentionCandidates = 5

// maxTermWords is the longest word sequence looked up as an entity name.
const maxTermWords = 3

// queryTerms returns the words and word sequences of query that could name a
// skill, technology or institution, with abbreviations expanded.
func queryTerms(query string) []string {
	tokens := core.Tokenize(query)
	seen := make(map[string]bool)
	var terms []string
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}
	for n := 1; n <= maxTermWords; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			term := strings.Join(tokens[i:i+n], " ")
			add(term)
			if syn, ok := core.Synonym(term); ok {
				add(syn)
			}
		}
	}
	return terms
}

// mentionFacts lists the candidates linked to each skill, technology or
// institution the query names.
func (r *Retriever) mentionFacts(ctx context.Context, query string) ([]string, error) {
	var facts []string
	visited := make(map[core.ID]bool)
	for _, term := range queryTerms(query) {
		for _, kind := range []core.EntityKind{core.KindSkill, core.KindTechnology, core.KindInstitution} {
			node, err := r.graph.FindNode(ctx, kind, term)
			if errors.Is(err, core.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			if visited[node.Id] {
				continue
			}
			visited[node.Id] = true
			fact, err := r.mentionFact(ctx, node)
			if err != nil {
				return nil, err
			}
			if fact != "" {
				facts = append(facts, fact)
			}
		}
	}
	return facts, nil
}

func (r *Retriever) mentionFact(ctx context.Context, node *core.Node) (string, error) {
	var (
		names  []string
		prefix string
	)
	switch node.Kind {
	case core.KindSkill:
		holders, err := r.graph.Neighbors(ctx, node.Id, core.RelHasSkill)
		if err != nil {
			return "", err
		}
		names = entityNames(holders)
		prefix = fmt.Sprintf("Candidates with the skill %s", node.Name)

	case core.KindTechnology:
		projects, err := r.graph.Neighbors(ctx, node.Id, core.RelUses)
		if err != nil {
			return "", err
		}
		names, err = r.ownersOf(ctx, projects, core.RelWorkedOn)
		if err != nil {
			return "", err
		}
		prefix = fmt.Sprintf("Candidates who used %s on a project", node.Name)

	case core.KindInstitution:
		degrees, err := r.graph.Neighbors(ctx, node.Id, core.RelAtInstitution)
		if err != nil {
			return "", err
		}
		names, err = r.ownersOf(ctx, degrees, core.RelStudied)
		if err != nil {
			return "", err
		}
		prefix = fmt.Sprintf("Candidates who studied at %s", node.Name)
	}

	if len(names) == 0 {
		return "", nil
	}
	sort.Strings(names)
	if len(names) > maxMentionCandidates {
		names = names[:maxMentionCandidates]
	}
	return prefix + ": " + strings.Join(names, ", ") + ".", nil
}

// ownersOf returns the distinct names of the candidates owning entities
// through rel.
func (r *Retriever) ownersOf(ctx context.Context, owned []core.Entity, rel core.RelationKind) ([]string, error) {
	var owners []core.Entity
	for _, e := range owned {
		found, err := r.graph.Neighbors(ctx, e.Id, rel)
		if err != nil {
			return nil, err
		}
		owners = append(owners, found...)
	}
	return entityNames(owners), nil
}

// entityNames returns the candidate names among entities, deduplicated by ID.
func entityNames(entities []core.Entity) []string {
	seen := make(map[core.ID]bool)
	var names []string
	for _, e := range entities {
		if e.Kind != core.KindCandidate || seen[e.Id] {
			continue
		}
		seen[e.Id] = true
		names = append(names, e.Name)
	}
	return names
}
