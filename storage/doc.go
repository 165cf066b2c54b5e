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

// Package storage provides the storage abstraction layer for talentgraph.
//
// Two stores make up the persistent state:
//
//   - GraphStore holds the knowledge graph: candidates, their owned subgraph
//     (education, projects, text segments) and the globally shared skill,
//     institution and technology nodes, linked through adjacency indices per
//     relation kind.
//   - SegmentIndex holds embedding vectors for text segments and answers
//     nearest-neighbor queries. It is a derived projection of the graph and can
//     be rebuilt from it at any time.
//
// # Consistency
//
// All graph writes for one document happen in a single transaction. Readers
// observe a candidate either not at all or with its complete subgraph.
// Shared nodes are created with get-or-create inside that same transaction,
// keyed by normalized name, so concurrent ingestion never duplicates them.
//
// # Implementations
//
// The badger subpackage implements both stores on one BadgerDB instance. The
// neo4j subpackage exports an existing graph to Neo4j for visual exploration.
package storage
