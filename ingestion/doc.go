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

// Package ingestion turns résumé documents into graph and index writes.
//
// The Coordinator runs one document at a time through checksum, extraction,
// chunking, the graph transaction and segment indexing. The graph write is the
// durable outcome; indexing failures leave the candidate flagged
// index_incomplete for the reindex job instead of failing the document.
package ingestion
