package talentgraph

import (
	"cmp"
	"context"
	"slices"

	"github.com/poiesic/talentgraph/ats"
	"github.com/poiesic/talentgraph/core"
	"github.com/poiesic/talentgraph/storage"
)

// CandidateScore pairs a candidate with its ATS result.
type CandidateScore struct {
	Candidate core.CandidateSummary
	Result    *ats.Result
}

// ScoreCandidate scores the candidate named by ref, an ID or a name, against
// jobDescription. The candidate's segment text is matched against the
// keywords and its graph skills feed the skill overlap.
func (db *Database) ScoreCandidate(ctx context.Context, jobDescription, ref string) (*CandidateScore, error) {
	record, err := db.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return db.score(ctx, jobDescription, record)
}

// ScoreText scores free text that is not stored in the graph.
func (db *Database) ScoreText(jobDescription, text string) *ats.Result {
	return db.scorer.Score(jobDescription, ats.Candidate{Text: text})
}

// RankCandidates scores every candidate against jobDescription and returns
// the best limit results, highest score first and then by name. A limit of 0
// returns all of them.
func (db *Database) RankCandidates(ctx context.Context, jobDescription string, limit int) ([]CandidateScore, error) {
	summaries, err := db.graph.ListCandidates(ctx, storage.CandidateFilter{})
	if err != nil {
		return nil, err
	}

	scores := make([]CandidateScore, 0, len(summaries))
	for _, summary := range summaries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := db.graph.GetCandidate(ctx, summary.Id)
		if err != nil {
			return nil, err
		}
		score, err := db.score(ctx, jobDescription, record)
		if err != nil {
			return nil, err
		}
		scores = append(scores, *score)
	}

	slices.SortFunc(scores, func(a, b CandidateScore) int {
		if c := cmp.Compare(b.Result.Score, a.Result.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Candidate.Name, b.Candidate.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Candidate.Id, b.Candidate.Id)
	})
	if limit > 0 && len(scores) > limit {
		scores = scores[:limit]
	}
	return scores, nil
}

func (db *Database) score(ctx context.Context, jobDescription string, record *core.CandidateRecord) (*CandidateScore, error) {
	text, err := db.CandidateText(ctx, record.Id)
	if err != nil {
		return nil, err
	}
	result := db.scorer.Score(jobDescription, ats.Candidate{Text: text, Skills: record.SkillNames})
	return &CandidateScore{Candidate: record.Summary(), Result: result}, nil
}
