// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package talentgraph opens a résumé knowledge graph and hands out the
// components that work on it: the ingestion coordinator, the retriever, the
// reindexer and the ATS scorer.
package talentgraph

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/poiesic/talentgraph/ai"
	"github.com/poiesic/talentgraph/ai/openai"
	"github.com/poiesic/talentgraph/ats"
	"github.com/poiesic/talentgraph/core"
	"github.com/poiesic/talentgraph/ingestion"
	"github.com/poiesic/talentgraph/reindex"
	"github.com/poiesic/talentgraph/retrieval"
	"github.com/poiesic/talentgraph/storage"
	"github.com/poiesic/talentgraph/storage/badger"
)

type Database struct {
	backend  *badger.Backend
	graph    *badger.GraphStore
	index    *badger.SegmentIndex
	provider ai.Provider
	scorer   *ats.Scorer
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig   *ai.Config
	provider   ai.Provider
	breaker    *ai.BreakerConfig
	atsConfig  ats.Config
	inMemory   bool
	dimensions int
	logger     *slog.Logger
}

// WithAIConfig sets the configuration of the OpenAI-compatible provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses provider instead of creating one from the AI config.
// The database closes it on Close.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithCircuitBreaker wraps every capability of the provider in a circuit breaker.
func WithCircuitBreaker(config ai.BreakerConfig) DatabaseOption {
	return func(o *databaseOptions) {
		o.breaker = &config
	}
}

// WithATSConfig sets the scoring weights and stop words.
func WithATSConfig(config ats.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.atsConfig = config
	}
}

// WithInMemory keeps all data in memory. The path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithDimensions fixes the embedding dimensionality. 0, the default, pins it
// on the first index write.
func WithDimensions(dimensions int) DatabaseOption {
	return func(o *databaseOptions) {
		o.dimensions = dimensions
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig:  ai.DefaultConfig(),
		atsConfig: ats.DefaultConfig(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	scorer, err := ats.NewScorer(options.atsConfig)
	if err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackendWithLogger(filePath, options.inMemory, options.logger)
	if err != nil {
		return nil, err
	}

	graph, err := badger.NewGraphStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	index, err := badger.NewSegmentIndex(backend, options.dimensions)
	if err != nil {
		graph.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		p, err := openai.NewProvider(options.aiConfig)
		if err != nil {
			index.Close()
			graph.Close()
			backend.Close()
			return nil, err
		}
		provider = p
	}
	if options.breaker != nil {
		provider = ai.WithCircuitBreaker(provider, *options.breaker)
	}

	return &Database{
		backend:  backend,
		graph:    graph,
		index:    index,
		provider: provider,
		scorer:   scorer,
		logger:   options.logger,
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.index.Close(); err != nil {
		db.logger.Error("error closing segment index", "err", err)
		return err
	}
	if err := db.graph.Close(); err != nil {
		db.logger.Error("error closing graph store", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) GraphStore() storage.GraphStore {
	return db.graph
}

func (db *Database) SegmentIndex() storage.SegmentIndex {
	return db.index
}

func (db *Database) Provider() ai.Provider {
	return db.provider
}

func (db *Database) Scorer() *ats.Scorer {
	return db.scorer
}

func (db *Database) NewCoordinator(opts ...ingestion.Option) (*ingestion.Coordinator, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(db.logger)}, opts...)
	return ingestion.NewCoordinator(db.graph, db.index, db.provider, opts...)
}

func (db *Database) NewRetriever(opts ...retrieval.Option) (*retrieval.Retriever, error) {
	opts = append([]retrieval.Option{retrieval.WithLogger(db.logger)}, opts...)
	return retrieval.NewRetriever(db.graph, db.index, db.provider, opts...)
}

// NewReindexer creates a reconciliation job. A nil config selects
// reindex.DefaultConfig and a nil progress writer disables progress output.
func (db *Database) NewReindexer(config *reindex.Config, progress io.Writer) (*reindex.Reindexer, error) {
	if config == nil {
		config = reindex.DefaultConfig()
	}
	return reindex.NewReindexer(db.graph, db.index, db.provider.Embedder(), config, progress)
}

// Resolve finds a candidate by decimal ID or by name. A numeric reference
// that is not a known ID is tried as a name. Name lookups that match several
// candidates return a *storage.AmbiguousNameError.
func (db *Database) Resolve(ctx context.Context, ref string) (*core.CandidateRecord, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, core.ErrNotFound
	}
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		record, err := db.graph.GetCandidate(ctx, core.ID(id))
		if err == nil || !errors.Is(err, core.ErrNotFound) {
			return record, err
		}
	}
	return db.graph.GetCandidateByName(ctx, ref)
}

// CandidateText returns the candidate's segment texts joined by blank lines.
func (db *Database) CandidateText(ctx context.Context, id core.ID) (string, error) {
	segments, err := db.graph.Segments(ctx, id)
	if err != nil {
		return "", err
	}
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	return strings.Join(texts, "\n\n"), nil
}
