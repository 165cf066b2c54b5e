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

package ingestion

import "errors"

var (
	// ErrGraphStoreRequired is returned when a graph store is not provided.
	ErrGraphStoreRequired = errors.New("graph store required")

	// ErrSegmentIndexRequired is returned when a segment index is not provided.
	ErrSegmentIndexRequired = errors.New("segment index required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmptyDocument is returned for documents with no text.
	ErrEmptyDocument = errors.New("document has no text")

	// ErrInvalidChunkSize is returned for non-positive chunk sizes or overlaps
	// not smaller than the chunk size.
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrBatchAborted is returned for batch documents skipped after a fatal
	// configuration error, such as an embedding dimension mismatch.
	ErrBatchAborted = errors.New("batch aborted")
)
