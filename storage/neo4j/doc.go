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

// Package neo4j mirrors the knowledge graph into a Neo4j database.
//
// The export is one-way and idempotent: shared nodes are merged on their
// normalized name and owned nodes on their ID, so exporting the same
// candidate twice leaves a single copy of every node and relationship.
// Labels and relationship types follow the graph model:
//
//	(:Candidate)-[:HAS_SKILL]->(:Skill)
//	(:Candidate)-[:STUDIED]->(:Education)-[:AT_INSTITUTION]->(:Institution)
//	(:Candidate)-[:WORKED_ON]->(:Project)-[:USES]->(:Technology)
package neo4j
