package ats

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(DefaultConfig())
	require.NoError(t, err)
	return s
}

func TestNewScorer_Validation(t *testing.T) {
	_, err := NewScorer(Config{MatchWeight: 0, SkillWeight: 0})
	assert.ErrorIs(t, err, ErrInvalidWeights)
	_, err = NewScorer(Config{MatchWeight: -1, SkillWeight: 2})
	assert.ErrorIs(t, err, ErrInvalidWeights)
	_, err = NewScorer(Config{MatchWeight: 1, MaxRecommendations: -1})
	assert.ErrorIs(t, err, ErrInvalidRecommendationLimit)
}

func TestScore_PythonAndKubernetes(t *testing.T) {
	s := newScorer(t)

	result := s.Score("Looking for Python and Kubernetes experience",
		Candidate{Text: "Five years writing Python data pipelines."})

	assert.Equal(t, 50.0, result.KeywordMatchRate)
	assert.Equal(t, []string{"python"}, result.MatchingKeywords)
	assert.Equal(t, []string{"kubernetes"}, result.MissingKeywords)
	assert.Equal(t, 50.0, result.Score)
	assert.Equal(t, BandMedium, result.Band())
	assert.Equal(t, []string{
		"Add experience with kubernetes to the résumé if you have it.",
		bandSummaries[BandMedium],
	}, result.Recommendations)
}

func TestScore_WithSkills(t *testing.T) {
	s := newScorer(t)

	result := s.Score("Looking for Python and Kubernetes experience",
		Candidate{Text: "Python and Kubernetes in production.", Skills: []string{"Python"}})

	assert.Equal(t, 100.0, result.KeywordMatchRate)
	assert.Equal(t, 50.0, result.SkillOverlap)
	assert.Equal(t, 85.0, result.Score)
	assert.Equal(t, BandHigh, result.Band())
	assert.Equal(t, []string{bandSummaries[BandHigh]}, result.Recommendations)
}

func TestScore_Variants(t *testing.T) {
	s := newScorer(t)

	tests := []struct {
		name    string
		jd      string
		text    string
		matches []string
	}{
		{"plural", "Microservices", "Built a microservice mesh", []string{"microservices"}},
		{"punctuation", "Node.js backend", "nodejs and back-end services", []string{"node.js", "backend"}},
		{"synonym in job", "Strong JS", "JavaScript everywhere", []string{"js"}},
		{"synonym in text", "PostgreSQL", "tuned Postgres clusters", []string{"postgresql"}},
		{"multi-word synonym", "ML engineer", "Machine learning research, engineer", []string{"ml", "engineer"}},
		{"symbols", "C++ and C#", "c++ and c# daily", []string{"c++", "c#"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := s.Score(tt.jd, Candidate{Text: tt.text})
			assert.Equal(t, tt.matches, result.MatchingKeywords)
			assert.Empty(t, result.MissingKeywords)
		})
	}
}

func TestScore_NoKeywords(t *testing.T) {
	s := newScorer(t)

	result := s.Score("Looking for experience", Candidate{Text: "anything"})
	assert.Zero(t, result.Score)
	assert.Zero(t, result.KeywordMatchRate)
	assert.Empty(t, result.MatchingKeywords)
	assert.Empty(t, result.MissingKeywords)
	assert.Len(t, result.Recommendations, 1)
}

func TestScore_RecommendationLimit(t *testing.T) {
	s := newScorer(t)

	jd := ""
	for i := range 15 {
		jd += fmt.Sprintf("tool%c ", 'a'+i)
	}
	result := s.Score(jd, Candidate{Text: "nothing relevant"})
	assert.Len(t, result.MissingKeywords, 15)
	require.Len(t, result.Recommendations, DefaultMaxRecommendations+1)
	assert.Equal(t, bandSummaries[BandLow], result.Recommendations[DefaultMaxRecommendations])
}

func TestScore_CustomStopWords(t *testing.T) {
	s, err := NewScorer(Config{MatchWeight: 1, StopWords: []string{"Python"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"looking", "for", "and", "kubernetes", "experience"},
		s.Keywords("Looking for Python and Kubernetes experience"))
}

func TestScore_Deterministic(t *testing.T) {
	s := newScorer(t)
	jd := "Senior Go engineer with Kubernetes, AWS, Terraform and PostgreSQL. Go and gRPC required."
	candidate := Candidate{Text: "Go services on AWS with Terraform; some gRPC.", Skills: []string{"Go", "Terraform"}}

	first := s.Score(jd, candidate)
	for range 20 {
		assert.Equal(t, first, s.Score(jd, candidate))
	}
	assert.Equal(t, []string{"senior", "go", "engineer", "kubernetes", "aws", "terraform", "postgresql", "grpc"},
		s.Keywords(jd))
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Band
	}{
		{100, BandHigh},
		{70, BandHigh},
		{69.9, BandMedium},
		{40, BandMedium},
		{39.9, BandLow},
		{0, BandLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BandFor(tt.score), "score %.1f", tt.score)
	}
}
