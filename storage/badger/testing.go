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

package badger

// NewMemoryStores creates an in-memory graph store and segment index sharing one backend.
// dimensions is passed to NewSegmentIndex; 0 pins on first write.
// Caller must close the index and the backend when done.
func NewMemoryStores(dimensions int) (*GraphStore, *SegmentIndex, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	graph, err := NewGraphStore(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	index, err := NewSegmentIndex(backend, dimensions)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	return graph, index, backend, nil
}
