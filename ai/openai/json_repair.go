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

package openai

import (
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// stripCodeFences removes a surrounding markdown code block if present.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// repairJSON fixes the usual model mistakes (unquoted keys, single quotes,
// trailing commas, truncated objects). Input that cannot be repaired is
// returned unchanged so the decoder reports the original problem.
func repairJSON(s string) string {
	repaired, err := jsonrepair.JSONRepair(s)
	if err != nil {
		return s
	}
	return repaired
}
