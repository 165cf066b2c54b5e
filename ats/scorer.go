package ats

import (
	"fmt"
	"math"
)

const (
	// DefaultMatchWeight weights the keyword match rate.
	DefaultMatchWeight = 0.7
	// DefaultSkillWeight weights the structured-skill overlap.
	DefaultSkillWeight = 0.3
	// DefaultMaxRecommendations caps the missing-keyword recommendations.
	DefaultMaxRecommendations = 10
)

// Config holds the scoring weights and keyword filter.
type Config struct {
	MatchWeight        float64  `yaml:"match_weight"`
	SkillWeight        float64  `yaml:"skill_weight"`
	StopWords          []string `yaml:"stop_words,omitempty"` // nil selects DefaultStopWords
	MaxRecommendations int      `yaml:"max_recommendations"`
}

// DefaultConfig returns the default scoring configuration.
func DefaultConfig() Config {
	return Config{
		MatchWeight:        DefaultMatchWeight,
		SkillWeight:        DefaultSkillWeight,
		MaxRecommendations: DefaultMaxRecommendations,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MatchWeight < 0 || c.SkillWeight < 0 || c.MatchWeight+c.SkillWeight == 0 {
		return ErrInvalidWeights
	}
	if c.MaxRecommendations < 0 {
		return ErrInvalidRecommendationLimit
	}
	return nil
}

// Candidate is the candidate side of a comparison.
type Candidate struct {
	Text   string   // Résumé text, typically the concatenated segments
	Skills []string // Structured skills from the graph; nil when unknown
}

// Result is the outcome of scoring one candidate.
type Result struct {
	Score            float64  `json:"ats_score"`
	KeywordMatchRate float64  `json:"keyword_match_rate"`
	SkillOverlap     float64  `json:"skill_overlap"`
	MatchingKeywords []string `json:"matching_keywords"`
	MissingKeywords  []string `json:"missing_keywords"`
	Recommendations  []string `json:"recommendations"`
}

// Band returns the presentation band of the score.
func (r *Result) Band() Band {
	return BandFor(r.Score)
}

// Scorer compares job descriptions with candidates. A Scorer is immutable and
// safe for concurrent use.
type Scorer struct {
	config Config
	stop   map[string]bool
}

// NewScorer creates a scorer from config.
func NewScorer(config Config) (*Scorer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	words := config.StopWords
	if words == nil {
		words = DefaultStopWords
	}
	return &Scorer{config: config, stop: stopSet(words)}, nil
}

// Keywords returns the keywords extracted from a job description.
func (s *Scorer) Keywords(jobDescription string) []string {
	return extractKeywords(jobDescription, s.stop)
}

// Score compares jobDescription against candidate.
//
// The keyword match rate is the percentage of keywords found in the
// candidate text. When candidate.Skills is non-empty the score is
// MatchWeight*matchRate + SkillWeight*skillOverlap, normalized by the weight
// sum, where skillOverlap is the percentage of keywords covered by a skill.
// Otherwise the score is the match rate. All percentages are rounded to one
// decimal.
func (s *Scorer) Score(jobDescription string, candidate Candidate) *Result {
	keywords := s.Keywords(jobDescription)
	result := &Result{
		MatchingKeywords: []string{},
		MissingKeywords:  []string{},
	}
	if len(keywords) == 0 {
		result.Recommendations = []string{"The job description contains no keywords to match against."}
		return result
	}

	text := termSet(candidate.Text)
	for _, kw := range keywords {
		if containsAny(text, kw) {
			result.MatchingKeywords = append(result.MatchingKeywords, kw)
		} else {
			result.MissingKeywords = append(result.MissingKeywords, kw)
		}
	}
	matchRate := percent(len(result.MatchingKeywords), len(keywords))
	result.KeywordMatchRate = round1(matchRate)

	score := matchRate
	if len(candidate.Skills) > 0 {
		skills := make(map[string]bool)
		for _, skill := range candidate.Skills {
			for term := range termSet(skill) {
				skills[term] = true
			}
		}
		covered := 0
		for _, kw := range keywords {
			if containsAny(skills, kw) {
				covered++
			}
		}
		overlap := percent(covered, len(keywords))
		result.SkillOverlap = round1(overlap)
		score = (s.config.MatchWeight*matchRate + s.config.SkillWeight*overlap) /
			(s.config.MatchWeight + s.config.SkillWeight)
	}
	result.Score = round1(score)
	result.Recommendations = recommend(result, s.config.MaxRecommendations)
	return result
}

func percent(n, total int) float64 {
	return float64(n) / float64(total) * 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// String formats the result on one line.
func (r *Result) String() string {
	return fmt.Sprintf("score %.1f (%s), %d matching, %d missing",
		r.Score, r.Band(), len(r.MatchingKeywords), len(r.MissingKeywords))
}
