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

// Package retrieval answers free-text questions over the candidate pool.
//
// A query is embedded and matched against the segment index. Each matching
// segment's candidate is enriched with facts from the graph (skills,
// education, projects and their technologies), which are deduplicated and
// placed after the candidate's first segment. Skills, technologies and
// institutions named in the query add a final, lowest-priority block. The
// merged context is truncated from the lowest-ranked end and handed to the
// answer synthesizer.
//
// # Usage
//
//	r, err := retrieval.NewRetriever(graph, index, provider, retrieval.WithTopK(8))
//	answer, err := r.Query(ctx, "Who has worked with Kubernetes?")
//	if answer.NoRelevantInformation {
//	    ...
//	}
package retrieval
