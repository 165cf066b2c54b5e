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

package core

import (
	"errors"
	"fmt"
)

// Ingestion and lookup outcomes
var (
	// ErrDuplicateDocument signals that a document with the same checksum was already ingested.
	// It is an idempotent no-op outcome rather than a failure.
	ErrDuplicateDocument = errors.New("duplicate document")

	// ErrExtractionFailure indicates the extraction capability could not structure the document.
	ErrExtractionFailure = errors.New("extraction failed")

	// ErrGraphWriteFailure indicates the graph transaction aborted; nothing was written.
	ErrGraphWriteFailure = errors.New("graph write failed")

	// ErrIndexWriteFailure indicates the candidate was persisted but its segments are not indexed.
	ErrIndexWriteFailure = errors.New("index write failed")

	// ErrNotFound indicates a lookup of an unknown entity.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguousName indicates a name lookup matched multiple candidates.
	ErrAmbiguousName = errors.New("ambiguous candidate name")

	// ErrDimensionMismatch indicates a vector does not match the index dimensionality.
	// This is a configuration error and is never retried.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmbeddingFailure indicates the embedding capability failed.
	ErrEmbeddingFailure = errors.New("embedding failed")

	// ErrSynthesisFailure indicates the answer synthesis capability failed.
	ErrSynthesisFailure = errors.New("answer synthesis failed")

	// ErrTimeout indicates an embedding or index operation exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")
)

// Domain validation errors
var (
	// ErrInvalidDraft indicates a CandidateDraft failed validation.
	ErrInvalidDraft = errors.New("invalid candidate draft")

	// ErrEmptyName indicates a required name is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrEmptyChecksum indicates the draft has no checksum.
	ErrEmptyChecksum = errors.New("checksum cannot be empty")

	// ErrMissingInstitution indicates an education entry without an institution.
	ErrMissingInstitution = errors.New("education requires an institution")

	// ErrInvalidYear indicates an education year outside the accepted range.
	ErrInvalidYear = errors.New("invalid year")
)

// Stage names an ingestion step.
type Stage string

const (
	StageChecksum Stage = "checksum"
	StageExtract  Stage = "extract"
	StageChunk    Stage = "chunk"
	StageGraph    Stage = "graph"
	StageEmbed    Stage = "embed"
	StageIndex    Stage = "index"
)

// StageError reports which ingestion stage failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded in err, if any.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
