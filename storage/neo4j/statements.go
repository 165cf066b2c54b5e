package neo4j

import (
	"fmt"

	"github.com/poiesic/talentgraph/core"
)

// statement is one parameterized Cypher query.
type statement struct {
	query  string
	params map[string]any
}

const mergeCandidate = `
MERGE (c:Candidate {id: $id})
SET c.name = $name,
    c.normalized_name = $normalized_name,
    c.title = $title,
    c.document_ref = $document_ref,
    c.checksum = $checksum,
    c.status = $status,
    c.segment_count = $segment_count,
    c.ingested_at = $ingested_at`

const mergeSkills = `
MATCH (c:Candidate {id: $id})
UNWIND $skills AS skill
MERGE (s:Skill {normalized: skill.normalized})
ON CREATE SET s.name = skill.name
MERGE (c)-[:HAS_SKILL]->(s)`

const mergeEducation = `
MATCH (c:Candidate {id: $id})
MERGE (e:Education {id: $education_id})
SET e.degree = $degree, e.year = $year
MERGE (i:Institution {normalized: $institution_normalized})
ON CREATE SET i.name = $institution
MERGE (c)-[:STUDIED]->(e)
MERGE (e)-[:AT_INSTITUTION]->(i)`

const mergeProject = `
MATCH (c:Candidate {id: $id})
MERGE (p:Project {id: $project_id})
SET p.name = $name, p.role = $role, p.description = $description
MERGE (c)-[:WORKED_ON]->(p)
WITH p
UNWIND $technologies AS tech
MERGE (t:Technology {normalized: tech.normalized})
ON CREATE SET t.name = tech.name
MERGE (p)-[:USES]->(t)`

// nodeID renders an ID as fixed-width hex. Neo4j integers are signed, so the
// full uint64 range does not fit.
func nodeID(id core.ID) string {
	return fmt.Sprintf("%016x", uint64(id))
}

func namedNodes(names []string) []map[string]any {
	out := make([]map[string]any, 0, len(names))
	for _, name := range names {
		out = append(out, map[string]any{"name": name, "normalized": core.NormalizeName(name)})
	}
	return out
}

// candidateStatements returns the statements that write record and its
// subgraph, in dependency order.
func candidateStatements(record *core.CandidateRecord) []statement {
	id := nodeID(record.Id)
	stmts := []statement{{
		query: mergeCandidate,
		params: map[string]any{
			"id":              id,
			"name":            record.Name,
			"normalized_name": record.NormalizedName,
			"title":           record.Title,
			"document_ref":    record.DocumentRef,
			"checksum":        record.Checksum,
			"status":          record.Status.String(),
			"segment_count":   int64(record.SegmentCount),
			"ingested_at":     record.IngestedAt.UTC(),
		},
	}}

	if len(record.SkillNames) > 0 {
		stmts = append(stmts, statement{
			query:  mergeSkills,
			params: map[string]any{"id": id, "skills": namedNodes(record.SkillNames)},
		})
	}

	for _, edu := range record.EducationDetails {
		var year any
		if edu.Year > 0 {
			year = int64(edu.Year)
		}
		stmts = append(stmts, statement{
			query: mergeEducation,
			params: map[string]any{
				"id":                     id,
				"education_id":           nodeID(edu.Id),
				"degree":                 edu.Degree,
				"year":                   year,
				"institution":            edu.Institution,
				"institution_normalized": core.NormalizeName(edu.Institution),
			},
		})
	}

	for _, proj := range record.ProjectDetails {
		stmts = append(stmts, statement{
			query: mergeProject,
			params: map[string]any{
				"id":           id,
				"project_id":   nodeID(proj.Id),
				"name":         proj.Name,
				"role":         proj.Role,
				"description":  proj.Description,
				"technologies": namedNodes(proj.TechnologyNames),
			},
		})
	}
	return stmts
}
