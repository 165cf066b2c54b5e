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

package retrieval

import (
	"github.com/poiesic/talentgraph/core"
	"github.com/poiesic/talentgraph/storage"
)

// Monitor receives callbacks at each stage of a query.
type Monitor interface {
	Start(query string)
	AfterEmbedding(dimensions int)
	AfterSegmentSearch(matches []storage.SegmentMatch)
	AfterEnrichment(candidate core.ID, facts []string)
	AfterMentions(facts []string)
	AfterMerge(contextText string, droppedBlocks int)
	Finish(answer *Answer)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                              {}
func (n *noopMonitor) AfterEmbedding(_ int)                        {}
func (n *noopMonitor) AfterSegmentSearch(_ []storage.SegmentMatch) {}
func (n *noopMonitor) AfterEnrichment(_ core.ID, _ []string)       {}
func (n *noopMonitor) AfterMentions(_ []string)                    {}
func (n *noopMonitor) AfterMerge(_ string, _ int)                  {}
func (n *noopMonitor) Finish(_ *Answer)                            {}
