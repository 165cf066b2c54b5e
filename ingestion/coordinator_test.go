package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/talentgraph/ai"
	"github.com/poiesic/talentgraph/ai/mock"
	"github.com/poiesic/talentgraph/core"
	"github.com/poiesic/talentgraph/storage"
	"github.com/poiesic/talentgraph/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	graph    *badger.GraphStore
	index    *badger.SegmentIndex
	provider *mock.MockProvider
	coord    *Coordinator
}

func setup(t *testing.T, indexDims, embedDims int, opts ...Option) *fixture {
	t.Helper()
	graph, index, backend, err := badger.NewMemoryStores(indexDims)
	require.NoError(t, err)

	provider := mock.NewMockProviderWithServices(
		mock.NewMockEmbedderWithDimensions(embedDims),
		mock.NewMockExtractor(),
		mock.NewMockSynthesizer(),
	)
	opts = append([]Option{WithMaxIndexAttempts(3, time.Millisecond), WithPoolSize(4)}, opts...)
	coord, err := NewCoordinator(graph, index, provider, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		coord.Release()
		index.Close()
		graph.Close()
		backend.Close()
	})
	return &fixture{graph: graph, index: index, provider: provider, coord: coord}
}

func resume(name string, skills ...string) Document {
	text := fmt.Sprintf(`Name: %s
Title: Software Engineer
Skills: %s
Education: B.Sc. Computer Science | MIT | 2018
Project: Ledger | Lead | Double-entry ledger service | Go, PostgreSQL

%s has shipped production systems using %s.`, name, strings.Join(skills, ", "), name, strings.Join(skills, " and "))
	return Document{Content: []byte(text), Ref: strings.ToLower(strings.ReplaceAll(name, " ", "-")) + ".txt"}
}

func TestNewCoordinator_RequiresCollaborators(t *testing.T) {
	graph, index, backend, err := badger.NewMemoryStores(0)
	require.NoError(t, err)
	defer backend.Close()
	provider := mock.NewMockProvider()

	_, err = NewCoordinator(nil, index, provider)
	assert.ErrorIs(t, err, ErrGraphStoreRequired)
	_, err = NewCoordinator(graph, nil, provider)
	assert.ErrorIs(t, err, ErrSegmentIndexRequired)
	_, err = NewCoordinator(graph, index, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
	_, err = NewCoordinator(graph, index, provider, WithChunking(0, 0))
	assert.ErrorIs(t, err, ErrInvalidChunkSize)
}

func TestIngest_Success(t *testing.T) {
	f := setup(t, 0, 32)
	ctx := context.Background()

	result, err := f.coord.Ingest(ctx, resume("Jane Doe", "Go", "Kubernetes"))
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.Equal(t, core.StatusIndexed, result.Status)
	assert.Equal(t, badger.CandidateID(result.Checksum), result.CandidateID)

	record, err := f.graph.GetCandidate(ctx, result.CandidateID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", record.Name)
	assert.Equal(t, "Software Engineer", record.Title)
	assert.Equal(t, "jane-doe.txt", record.DocumentRef)
	assert.Equal(t, core.StatusIndexed, record.Status)
	assert.ElementsMatch(t, []string{"Go", "Kubernetes"}, record.SkillNames)
	require.Len(t, record.EducationDetails, 1)
	assert.Equal(t, "MIT", record.EducationDetails[0].Institution)
	require.Len(t, record.ProjectDetails, 1)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, record.ProjectDetails[0].TechnologyNames)

	count, err := f.index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.Segments, count)
	assert.Equal(t, 32, f.index.Dimensions())
}

func TestIngest_DuplicateIsIdempotent(t *testing.T) {
	f := setup(t, 0, 16)
	ctx := context.Background()
	doc := resume("Jane Doe", "Go")

	first, err := f.coord.Ingest(ctx, doc)
	require.NoError(t, err)

	second, err := f.coord.Ingest(ctx, doc)
	assert.ErrorIs(t, err, core.ErrDuplicateDocument)
	require.NotNil(t, second)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.CandidateID, second.CandidateID)
	assert.Equal(t, 1, f.provider.GetMockExtractor().CallCount(), "duplicates skip extraction")

	all, err := f.graph.ListCandidates(ctx, storage.CandidateFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestIngest_ConcurrentDuplicatesHaveOneWinner(t *testing.T) {
	f := setup(t, 0, 16)
	ctx := context.Background()
	doc := resume("Jane Doe", "Go")
	const writers = 4

	// Every writer passes the checksum check before any of them commits, so
	// the losers are rejected by the transaction itself.
	var arrived sync.WaitGroup
	arrived.Add(writers)
	f.provider.GetMockExtractor().ExtractFunc = func(ctx context.Context, text string) (*ai.Profile, error) {
		arrived.Done()
		arrived.Wait()
		return mock.ParseProfile(text)
	}

	results := make([]*Result, writers)
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = f.coord.Ingest(ctx, doc)
		}()
	}
	wg.Wait()

	assert.Equal(t, writers, f.provider.GetMockExtractor().CallCount())

	var winner *Result
	for i := range writers {
		if errs[i] == nil {
			require.Nil(t, winner, "only one writer may win")
			winner = results[i]
		}
	}
	require.NotNil(t, winner)
	assert.False(t, winner.Duplicate)

	for i := range writers {
		if errs[i] == nil {
			continue
		}
		assert.ErrorIs(t, errs[i], core.ErrDuplicateDocument)
		require.NotNil(t, results[i])
		assert.True(t, results[i].Duplicate)
		assert.Equal(t, winner.CandidateID, results[i].CandidateID)
	}

	all, err := f.graph.ListCandidates(ctx, storage.CandidateFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestIngest_SharedSkillNodes(t *testing.T) {
	f := setup(t, 0, 16)
	ctx := context.Background()

	a, err := f.coord.Ingest(ctx, resume("Jane Doe", "Python"))
	require.NoError(t, err)
	b, err := f.coord.Ingest(ctx, resume("John Roe", "python "))
	require.NoError(t, err)

	node, err := f.graph.FindNode(ctx, core.KindSkill, "PYTHON")
	require.NoError(t, err)

	holders, err := f.graph.Neighbors(ctx, node.Id, core.RelHasSkill)
	require.NoError(t, err)
	ids := []core.ID{}
	for _, e := range holders {
		ids = append(ids, e.Id)
	}
	assert.ElementsMatch(t, []core.ID{a.CandidateID, b.CandidateID}, ids)
}

func TestIngest_ExtractionFailureWritesNothing(t *testing.T) {
	f := setup(t, 0, 16)
	ctx := context.Background()
	f.provider.GetMockExtractor().ExtractFunc = func(ctx context.Context, text string) (*ai.Profile, error) {
		return nil, errors.New("model unavailable")
	}

	result, err := f.coord.Ingest(ctx, resume("Jane Doe", "Go"))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, core.ErrExtractionFailure)
	stage, ok := core.FailedStage(err)
	require.True(t, ok)
	assert.Equal(t, core.StageExtract, stage)

	all, err := f.graph.ListCandidates(ctx, storage.CandidateFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
	_, err = f.graph.FindNode(ctx, core.KindSkill, "go")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestIngest_EmptyDocument(t *testing.T) {
	f := setup(t, 0, 16)

	_, err := f.coord.Ingest(context.Background(), Document{Content: []byte("  \n\t ")})
	assert.ErrorIs(t, err, core.ErrExtractionFailure)
	assert.ErrorIs(t, err, ErrEmptyDocument)
	assert.Equal(t, 0, f.provider.GetMockExtractor().CallCount())
}

func TestIngest_IndexFailureFlagsCandidate(t *testing.T) {
	f := setup(t, 0, 16)
	ctx := context.Background()
	embedder := f.provider.GetMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("connection refused")
	}

	result, err := f.coord.Ingest(ctx, resume("Jane Doe", "Go"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrIndexWriteFailure)
	assert.ErrorIs(t, err, core.ErrEmbeddingFailure)
	stage, ok := core.FailedStage(err)
	require.True(t, ok)
	assert.Equal(t, core.StageEmbed, stage)
	assert.Equal(t, DefaultMaxIndexAttempts, embedder.CallCount())

	require.NotNil(t, result)
	assert.Equal(t, core.StatusIndexIncomplete, result.Status)
	record, err := f.graph.GetCandidate(ctx, result.CandidateID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusIndexIncomplete, record.Status)

	incomplete, err := f.graph.ListCandidates(ctx, storage.CandidateFilter{Status: core.StatusIndexIncomplete})
	require.NoError(t, err)
	assert.Len(t, incomplete, 1)
}

func TestIngest_TransientIndexFailureRecovers(t *testing.T) {
	f := setup(t, 0, 16)
	embedder := f.provider.GetMockEmbedder()
	fallback := mock.NewMockEmbedderWithDimensions(16)
	calls := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 1 {
			return nil, context.DeadlineExceeded
		}
		return fallback.EmbedTexts(ctx, texts)
	}

	result, err := f.coord.Ingest(context.Background(), resume("Jane Doe", "Go"))
	require.NoError(t, err)
	assert.Equal(t, core.StatusIndexed, result.Status)
	assert.Equal(t, 2, calls)
}

func TestIngest_DimensionMismatchNotRetried(t *testing.T) {
	f := setup(t, 8, 16)

	result, err := f.coord.Ingest(context.Background(), resume("Jane Doe", "Go"))
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	assert.ErrorIs(t, err, core.ErrIndexWriteFailure)
	stage, _ := core.FailedStage(err)
	assert.Equal(t, core.StageIndex, stage)
	assert.Equal(t, core.StatusIndexIncomplete, result.Status)

	segments := result.Segments
	assert.Equal(t, segments, f.provider.GetMockEmbedder().CallCount(), "one embedding pass only")
}

func TestIngestBatch_DimensionMismatchAbortsRemaining(t *testing.T) {
	f := setup(t, 8, 16, WithPoolSize(1))

	docs := []Document{resume("Jane Doe", "Go"), resume("John Roe", "Python"), resume("Ann Lee", "Rust")}
	outcomes := f.coord.IngestBatch(context.Background(), docs)
	require.Len(t, outcomes, 3)

	assert.ErrorIs(t, outcomes[0].Err, core.ErrDimensionMismatch)
	require.NotNil(t, outcomes[0].Result)
	assert.Equal(t, core.StatusIndexIncomplete, outcomes[0].Result.Status)
	for _, o := range outcomes[1:] {
		assert.ErrorIs(t, o.Err, ErrBatchAborted)
		assert.ErrorIs(t, o.Err, core.ErrDimensionMismatch)
		assert.Nil(t, o.Result)
	}
	assert.Equal(t, 1, f.provider.GetMockExtractor().CallCount(), "skipped documents are never extracted")
}

func TestIngest_ExperienceBecomesProjects(t *testing.T) {
	f := setup(t, 0, 16)
	ctx := context.Background()
	doc := Document{Content: []byte("Name: Ada Byron\nSkills: Math\nExperience: Analytical Engines Ltd | Programmer | Wrote note G | Difference Engine")}

	result, err := f.coord.Ingest(ctx, doc)
	require.NoError(t, err)

	record, err := f.graph.GetCandidate(ctx, result.CandidateID)
	require.NoError(t, err)
	require.Len(t, record.ProjectDetails, 1)
	assert.Equal(t, "Analytical Engines Ltd", record.ProjectDetails[0].Name)
	assert.Equal(t, "Programmer", record.ProjectDetails[0].Role)
	assert.Equal(t, []string{"Difference Engine"}, record.ProjectDetails[0].TechnologyNames)
}

func TestBuildDraft_DropsUnstorableEntries(t *testing.T) {
	p := &ai.Profile{
		Name:   " Jane ",
		Skills: []string{"Go", "go", " ", "Rust"},
		Education: []ai.EducationEntry{
			{Degree: "BSc", Institution: "", Year: 2010},
			{Degree: "MSc", Institution: "ETH", Year: 12},
		},
		Projects: []ai.ProjectEntry{
			{Name: "", Technologies: []string{"Go"}},
			{Name: "Compiler", Technologies: []string{"LLVM", "", "llvm"}},
		},
	}

	draft := buildDraft(p, "ref", "sum", []string{"seg"})
	require.NoError(t, core.ValidateCandidateDraft(draft))
	assert.Equal(t, "Jane", draft.Name)
	assert.Equal(t, []string{"Go", "Rust"}, draft.Skills)
	require.Len(t, draft.Education, 1)
	assert.Equal(t, 0, draft.Education[0].Year)
	require.Len(t, draft.Projects, 1)
	assert.Equal(t, []string{"LLVM"}, draft.Projects[0].Technologies)
}

func TestIngestBatch(t *testing.T) {
	f := setup(t, 0, 16)
	ctx := context.Background()

	dup := resume("Jane Doe", "Go")
	docs := []Document{
		dup,
		resume("John Roe", "Python"),
		dup,
		{Content: []byte(""), Ref: "empty.txt"},
		resume("Ann Lee", "Go", "Rust"),
	}

	outcomes := f.coord.IngestBatch(ctx, docs)
	require.Len(t, outcomes, len(docs))
	for i, o := range outcomes {
		assert.Equal(t, docs[i].Ref, o.Ref)
	}

	duplicates := 0
	for _, i := range []int{0, 2} {
		if errors.Is(outcomes[i].Err, core.ErrDuplicateDocument) {
			duplicates++
		} else {
			assert.NoError(t, outcomes[i].Err)
		}
	}
	assert.Equal(t, 1, duplicates, "exactly one of two identical documents wins")
	assert.Equal(t, outcomes[0].Result.CandidateID, outcomes[2].Result.CandidateID)
	assert.NoError(t, outcomes[1].Err)
	assert.ErrorIs(t, outcomes[3].Err, core.ErrExtractionFailure)
	assert.NoError(t, outcomes[4].Err)

	all, err := f.graph.ListCandidates(ctx, storage.CandidateFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
