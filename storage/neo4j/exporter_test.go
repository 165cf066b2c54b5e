package neo4j

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/poiesic/talentgraph/core"
	"github.com/poiesic/talentgraph/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestExporter connects to the server named by NEO4J_URI, skipping the
// test when it is unset.
func newTestExporter(t *testing.T) *Exporter {
	t.Helper()
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("NEO4J_URI not set")
	}
	e, err := NewExporter(uri, os.Getenv("NEO4J_USER"), os.Getenv("NEO4J_PASSWORD"),
		WithDatabase(os.Getenv("NEO4J_DATABASE")))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, e.VerifyConnectivity(ctx))
	t.Cleanup(func() { e.Close(context.Background()) })
	return e
}

func TestExportAll_Integration(t *testing.T) {
	e := newTestExporter(t)
	ctx := context.Background()

	graph, index, backend, err := badger.NewMemoryStores(0)
	require.NoError(t, err)
	defer backend.Close()
	defer index.Close()
	defer graph.Close()

	_, err = graph.UpsertCandidate(ctx, &core.CandidateDraft{
		Name:     "Export Test",
		Checksum: "neo4j-export-test",
		Skills:   []string{"Go"},
	})
	require.NoError(t, err)

	n, err := e.ExportAll(ctx, graph)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Exports are idempotent.
	n, err = e.ExportAll(ctx, graph)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
