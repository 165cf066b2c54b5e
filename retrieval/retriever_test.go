package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/talentgraph/ai/mock"
	"github.com/poiesic/talentgraph/core"
	"github.com/poiesic/talentgraph/ingestion"
	"github.com/poiesic/talentgraph/storage"
	"github.com/poiesic/talentgraph/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	graph    *badger.GraphStore
	index    *badger.SegmentIndex
	provider *mock.MockProvider
	coord    *ingestion.Coordinator
}

func setup(t *testing.T) *fixture {
	t.Helper()
	graph, index, backend, err := badger.NewMemoryStores(0)
	require.NoError(t, err)

	provider := mock.NewMockProviderWithServices(
		mock.NewMockEmbedderWithDimensions(64),
		mock.NewMockExtractor(),
		mock.NewMockSynthesizer(),
	)
	coord, err := ingestion.NewCoordinator(graph, index, provider,
		ingestion.WithMaxIndexAttempts(1, time.Millisecond))
	require.NoError(t, err)

	t.Cleanup(func() {
		coord.Release()
		index.Close()
		graph.Close()
		backend.Close()
	})
	return &fixture{graph: graph, index: index, provider: provider, coord: coord}
}

type profile struct {
	name        string
	skills      []string
	institution string
	techs       []string
	project     string
	body        string
}

func (f *fixture) ingest(t *testing.T, p profile) core.ID {
	t.Helper()
	project := p.project
	if project == "" {
		project = p.name + " Platform"
	}
	text := fmt.Sprintf(`Name: %s
Title: Engineer
Skills: %s
Education: B.Sc. | %s | 2015
Project: %s | Developer | Internal platform | %s

%s`, p.name, strings.Join(p.skills, ", "), p.institution, project, strings.Join(p.techs, ", "), p.body)
	result, err := f.coord.Ingest(context.Background(), ingestion.Document{Content: []byte(text), Ref: p.name})
	require.NoError(t, err)
	return result.CandidateID
}

func (f *fixture) retriever(t *testing.T, opts ...Option) *Retriever {
	t.Helper()
	r, err := NewRetriever(f.graph, f.index, f.provider, opts...)
	require.NoError(t, err)
	return r
}

func TestNewRetriever_RequiresCollaborators(t *testing.T) {
	f := setup(t)

	_, err := NewRetriever(nil, f.index, f.provider)
	assert.ErrorIs(t, err, ErrGraphStoreRequired)
	_, err = NewRetriever(f.graph, nil, f.provider)
	assert.ErrorIs(t, err, ErrSegmentIndexRequired)
	_, err = NewRetriever(f.graph, f.index, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
	_, err = NewRetriever(f.graph, f.index, f.provider, WithTopK(0))
	assert.Error(t, err)
	_, err = NewRetriever(f.graph, f.index, f.provider, WithMaxContextChars(0))
	assert.Error(t, err)
	_, err = NewRetriever(f.graph, f.index, f.provider, WithMinScore(-0.5))
	assert.Error(t, err)
}

func TestQuery_EmptyQuery(t *testing.T) {
	f := setup(t)
	_, err := f.retriever(t).Query(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestQuery_NoMatchesSkipsSynthesis(t *testing.T) {
	f := setup(t)

	answer, err := f.retriever(t).Query(context.Background(), "Who knows Kubernetes?")
	require.NoError(t, err)
	assert.True(t, answer.NoRelevantInformation)
	assert.Equal(t, NoRelevantInformationText, answer.Text)
	assert.Empty(t, answer.Candidates)
	assert.Equal(t, 0, f.provider.GetMockSynthesizer().CallCount())
}

func TestQuery_MinScoreFiltersEverything(t *testing.T) {
	f := setup(t)
	f.ingest(t, profile{name: "Jane Doe", skills: []string{"Go"}, institution: "MIT", techs: []string{"Go"}, body: "Go services."})

	answer, err := f.retriever(t, WithMinScore(1.5)).Query(context.Background(), "Go services")
	require.NoError(t, err)
	assert.True(t, answer.NoRelevantInformation)
	assert.Equal(t, 0, f.provider.GetMockSynthesizer().CallCount())
}

func TestQuery_Success(t *testing.T) {
	f := setup(t)
	jane := f.ingest(t, profile{
		name:        "Jane Doe",
		skills:      []string{"Kubernetes", "Go"},
		institution: "MIT",
		techs:       []string{"Kubernetes"},
		body:        "Jane operated Kubernetes clusters for five years.",
	})

	answer, err := f.retriever(t).Query(context.Background(), "Who has operated Kubernetes clusters?")
	require.NoError(t, err)
	assert.False(t, answer.NoRelevantInformation)
	assert.Equal(t, []core.ID{jane}, answer.Candidates)
	require.NotEmpty(t, answer.Matches)

	synth := f.provider.GetMockSynthesizer()
	assert.Equal(t, 1, synth.CallCount())
	assert.Equal(t, "Who has operated Kubernetes clusters?", synth.LastQuery())
	assert.Equal(t, answer.Context, synth.LastContext())
	assert.Contains(t, answer.Text, "Answer to")

	assert.Contains(t, answer.Context, "[Candidate: Jane Doe | segment 0 |")
	assert.Contains(t, answer.Context, "Jane Doe has skills: Go, Kubernetes.")
	assert.Contains(t, answer.Context, "Jane Doe studied B.Sc. at MIT (2015).")
	assert.Contains(t, answer.Context, "Jane Doe worked on project 'Jane Doe Platform' as Developer.")
	assert.Contains(t, answer.Context, "Technologies: Kubernetes.")
	assert.Contains(t, answer.Context, "Related graph facts:")
	assert.Contains(t, answer.Context, "Candidates with the skill Kubernetes: Jane Doe.")
	assert.Contains(t, answer.Context, "Candidates who used Kubernetes on a project: Jane Doe.")
}

func TestQuery_FactsAreNotRepeated(t *testing.T) {
	f := setup(t)
	long := strings.Repeat("Kubernetes operator work on production clusters. ", 40)
	f.ingest(t, profile{name: "Jane Doe", skills: []string{"Kubernetes"}, institution: "MIT", techs: []string{"Go"}, body: long})

	r := f.retriever(t, WithTopK(10))
	answer, err := r.Context(context.Background(), "Kubernetes operator clusters")
	require.NoError(t, err)
	require.Greater(t, len(answer.Matches), 1, "document should span several segments")

	assert.Equal(t, 1, strings.Count(answer.Context, "Jane Doe has skills: Kubernetes."))
	assert.Equal(t, len(answer.Matches), strings.Count(answer.Context, "[Candidate: Jane Doe |"))
	assert.Equal(t, 0, f.provider.GetMockSynthesizer().CallCount(), "Context does not synthesize")
}

func TestQuery_TruncationDropsTrailingBlocks(t *testing.T) {
	f := setup(t)
	f.ingest(t, profile{name: "Jane Doe", skills: []string{"Rust"}, institution: "MIT", techs: []string{"Rust"}, body: "Rust compilers and Rust tooling."})

	full, err := f.retriever(t).Context(context.Background(), "Rust compilers tooling")
	require.NoError(t, err)
	require.Contains(t, full.Context, "Related graph facts:")

	monitor := &recordingMonitor{}
	r := f.retriever(t, WithMaxContextChars(len(full.Context)-1))
	answer, err := r.QueryWithMonitor(context.Background(), "Rust compilers tooling", monitor)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(full.Context, answer.Context))
	assert.NotContains(t, answer.Context, "Related graph facts:", "mention facts rank last")
	assert.Equal(t, full.Candidates, answer.Candidates)
	assert.Equal(t, 1, monitor.dropped)
}

func TestQuery_EmbeddingFailure(t *testing.T) {
	f := setup(t)
	f.provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("model offline")
	}

	_, err := f.retriever(t).Query(context.Background(), "anything")
	assert.ErrorIs(t, err, core.ErrEmbeddingFailure)
	assert.Equal(t, 0, f.provider.GetMockSynthesizer().CallCount())
}

func TestQuery_SynthesisFailure(t *testing.T) {
	f := setup(t)
	f.ingest(t, profile{name: "Jane Doe", skills: []string{"Go"}, institution: "MIT", techs: []string{"Go"}, body: "Go services."})
	f.provider.GetMockSynthesizer().SynthesizeFunc = func(ctx context.Context, query, contextText string) (string, error) {
		return "", errors.New("rate limited")
	}

	_, err := f.retriever(t).Query(context.Background(), "Go services")
	assert.ErrorIs(t, err, core.ErrSynthesisFailure)
}

func TestQuery_SynthesisTimeout(t *testing.T) {
	f := setup(t)
	f.ingest(t, profile{name: "Jane Doe", skills: []string{"Go"}, institution: "MIT", techs: []string{"Go"}, body: "Go services."})
	f.provider.GetMockSynthesizer().SynthesizeFunc = func(ctx context.Context, query, contextText string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}

	r := f.retriever(t, WithTimeouts(0, 0, 10*time.Millisecond))
	_, err := r.Query(context.Background(), "Go services")
	assert.ErrorIs(t, err, core.ErrSynthesisFailure)
	assert.ErrorIs(t, err, core.ErrTimeout)
}

type recordingMonitor struct {
	stages  []string
	dropped int
	answer  *Answer
}

func (m *recordingMonitor) Start(string) {
	m.stages = append(m.stages, "start")
}
func (m *recordingMonitor) AfterEmbedding(int) {
	m.stages = append(m.stages, "embed")
}
func (m *recordingMonitor) AfterMentions([]string) {
	m.stages = append(m.stages, "mentions")
}
func (m *recordingMonitor) AfterSegmentSearch([]storage.SegmentMatch) {
	m.stages = append(m.stages, "search")
}
func (m *recordingMonitor) AfterEnrichment(core.ID, []string) {
	m.stages = append(m.stages, "enrich")
}
func (m *recordingMonitor) AfterMerge(_ string, dropped int) {
	m.stages = append(m.stages, "merge")
	m.dropped = dropped
}
func (m *recordingMonitor) Finish(answer *Answer) {
	m.stages = append(m.stages, "finish")
	m.answer = answer
}

func TestQueryWithMonitor_Stages(t *testing.T) {
	f := setup(t)
	f.ingest(t, profile{name: "Jane Doe", skills: []string{"Go"}, institution: "MIT", techs: []string{"Go"}, body: "Go services."})

	monitor := &recordingMonitor{}
	answer, err := f.retriever(t).QueryWithMonitor(context.Background(), "Go services", monitor)
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "embed", "search", "enrich", "mentions", "merge", "finish"}, monitor.stages)
	assert.Same(t, answer, monitor.answer)
}
