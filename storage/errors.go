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

package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/poiesic/talentgraph/core"
)

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = core.ErrNotFound

	// ErrAmbiguousName indicates a name lookup matched more than one candidate.
	ErrAmbiguousName = core.ErrAmbiguousName

	// ErrTransactionFailed indicates that a transaction failed.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrInvalidQuery indicates invalid query parameters.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrTruncatedData indicates that data was truncated during reading.
	ErrTruncatedData = errors.New("truncated data")
)

// AmbiguousNameError is returned by exact name lookups that match several candidates.
// Matches are ordered most recently ingested first.
type AmbiguousNameError struct {
	Name    string
	Matches []core.CandidateSummary
}

func (e *AmbiguousNameError) Error() string {
	ids := make([]string, len(e.Matches))
	for i, m := range e.Matches {
		ids[i] = fmt.Sprintf("%d", m.Id)
	}
	return fmt.Sprintf("%v: %q matches %d candidates (%s)",
		ErrAmbiguousName, e.Name, len(e.Matches), strings.Join(ids, ", "))
}

func (e *AmbiguousNameError) Unwrap() error {
	return ErrAmbiguousName
}
