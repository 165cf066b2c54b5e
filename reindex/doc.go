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

// Package reindex rebuilds the segment index from the graph store.
//
// The graph is the source of truth and the index is a projection of it, so
// the index can be rebuilt at any time. Two modes are supported:
//
//   - ModeIncomplete re-indexes candidates flagged index_incomplete, the
//     candidates whose ingestion could not write their segments.
//   - ModeFull clears the index and re-indexes every candidate, for example
//     after switching embedding models.
//
// Usage:
//
//	r, err := reindex.NewReindexer(graph, index, provider.Embedder(), reindex.DefaultConfig(), os.Stderr)
//	report, err := r.Run(ctx, reindex.ModeIncomplete)
package reindex
