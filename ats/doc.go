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

// Package ats scores how well a candidate's résumé covers the keywords of a
// job description.
//
// Scoring is a pure function of its inputs:
//   - keywords are the significant terms of the job description, case-folded,
//     deduplicated and stripped of stop words
//   - a keyword matches when it, or a plural-stripped, punctuation-free or
//     synonym variant of it, appears in the candidate text
//   - when the candidate's structured skills are known, the score blends the
//     match rate with the share of keywords the skills cover
//
// Recommendations come from a fixed template over the missing keywords, so the
// same inputs always produce the same Result.
package ats
