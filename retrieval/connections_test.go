package retrieval

import (
	"context"
	"testing"

	"github.com/poiesic/talentgraph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnections(t *testing.T) {
	f := setup(t)
	ada := f.ingest(t, profile{name: "Ada Byron", skills: []string{"Go", "Python", "SQL", "Docker"}, institution: "MIT", techs: []string{"Go", "PostgreSQL"}, body: "Backend work."})
	bob := f.ingest(t, profile{name: "Bob Stone", skills: []string{"Go", "Python", "SQL"}, institution: "Stanford", techs: []string{"Rust"}, body: "Systems work."})
	cat := f.ingest(t, profile{name: "Cat Vance", skills: []string{"Go"}, institution: "MIT", techs: []string{"Go"}, body: "Tooling work."})

	r := f.retriever(t)
	connections, err := r.Connections(context.Background(), ada)
	require.NoError(t, err)

	assert.Equal(t, []Connection{
		{Kind: StudiedWith, CandidateId: cat, CandidateName: "Cat Vance", Via: []string{"MIT"}},
		{Kind: SharesTechnology, CandidateId: cat, CandidateName: "Cat Vance", Via: []string{"Go"}},
		{Kind: SharesSkills, CandidateId: bob, CandidateName: "Bob Stone", Via: []string{"Go", "Python", "SQL"}},
	}, connections)

	connections, err = r.Connections(context.Background(), bob)
	require.NoError(t, err)
	assert.Equal(t, []Connection{
		{Kind: SharesSkills, CandidateId: ada, CandidateName: "Ada Byron", Via: []string{"Go", "Python", "SQL"}},
	}, connections)
}

func TestConnections_SameProjectName(t *testing.T) {
	f := setup(t)
	ada := f.ingest(t, profile{name: "Ada Byron", skills: []string{"Go"}, institution: "MIT", techs: []string{"Go"}, project: "Payments Gateway", body: "Backend work."})
	bob := f.ingest(t, profile{name: "Bob Stone", skills: []string{"Rust"}, institution: "Stanford", techs: []string{"Rust"}, project: "  payments   GATEWAY ", body: "Systems work."})
	f.ingest(t, profile{name: "Cat Vance", skills: []string{"Java"}, institution: "Oxford", techs: []string{"Java"}, project: "Payments Portal", body: "Tooling work."})

	r := f.retriever(t)
	connections, err := r.Connections(context.Background(), ada)
	require.NoError(t, err)
	assert.Equal(t, []Connection{
		{Kind: WorkedWith, CandidateId: bob, CandidateName: "Bob Stone", Via: []string{"Payments Gateway"}},
	}, connections)

	connections, err = r.Connections(context.Background(), bob)
	require.NoError(t, err)
	require.Len(t, connections, 1)
	assert.Equal(t, WorkedWith, connections[0].Kind)
	assert.Equal(t, ada, connections[0].CandidateId)
}

func TestConnections_UnknownCandidate(t *testing.T) {
	f := setup(t)
	_, err := f.retriever(t).Connections(context.Background(), core.ID(42))
	assert.ErrorIs(t, err, core.ErrNotFound)
}
