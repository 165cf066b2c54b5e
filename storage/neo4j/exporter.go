package neo4j

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/poiesic/talentgraph/core"
	"github.com/poiesic/talentgraph/storage"
)

// Exporter writes candidates into a Neo4j database.
type Exporter struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithDatabase selects the target database. Default is "neo4j".
func WithDatabase(name string) Option {
	return func(e *Exporter) {
		if name != "" {
			e.database = name
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExporter connects to the Neo4j server at uri with basic authentication.
func NewExporter(uri, username, password string, opts ...Option) (*Exporter, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	e := &Exporter{driver: driver, database: "neo4j", logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "neo4j-export")
	return e, nil
}

// VerifyConnectivity checks that the server is reachable.
func (e *Exporter) VerifyConnectivity(ctx context.Context) error {
	return e.driver.VerifyConnectivity(ctx)
}

// Close closes the driver.
func (e *Exporter) Close(ctx context.Context) error {
	return e.driver.Close(ctx)
}

// ExportCandidate writes record and its subgraph in one transaction.
func (e *Exporter) ExportCandidate(ctx context.Context, record *core.CandidateRecord) error {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: e.database})
	defer session.Close(ctx)

	stmts := candidateStatements(record)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, stmt := range stmts {
			if _, err := tx.Run(ctx, stmt.query, stmt.params); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("export candidate %d: %w", record.Id, err)
	}
	return nil
}

// ExportAll exports every candidate in graph and returns how many were written.
func (e *Exporter) ExportAll(ctx context.Context, graph storage.GraphStore) (int, error) {
	var ids []core.ID
	err := graph.ForEachCandidate(ctx, func(c *core.Candidate) error {
		ids = append(ids, c.Id)
		return nil
	})
	if err != nil {
		return 0, err
	}

	exported := 0
	for _, id := range ids {
		record, err := graph.GetCandidate(ctx, id)
		if err != nil {
			return exported, err
		}
		if err := e.ExportCandidate(ctx, record); err != nil {
			return exported, err
		}
		exported++
		e.logger.Debug("exported candidate", "id", id, "name", record.Name)
	}
	e.logger.Info("export complete", "candidates", exported)
	return exported, nil
}
