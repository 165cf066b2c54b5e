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

import "fmt"

const extractionResponseSchema = `{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "title": {"type": "string"},
    "email": {"type": "string"},
    "phone": {"type": "string"},
    "skills": {"type": "array", "items": {"type": "string"}},
    "education": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "degree": {"type": "string"},
          "institution": {"type": "string"},
          "year": {"type": "integer"}
        },
        "required": ["degree", "institution"]
      }
    },
    "projects": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "role": {"type": "string"},
          "description": {"type": "string"},
          "technologies": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["name"]
      }
    },
    "experience": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "company": {"type": "string"},
          "position": {"type": "string"},
          "description": {"type": "string"},
          "technologies": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  },
  "required": ["name", "skills", "education", "projects"]
}`

const extractionPromptTemplate = `Extract the structured profile of the candidate from the résumé text and return it as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- "name" is the candidate's full name as written.
- "title" is the current or most recent job title, or "" if none is stated.
- "skills" lists every technical and professional skill named in the text, one per entry, without duplicates.
- "education" has one entry per degree; "year" is the graduation year, or 0 when unknown.
- "projects" has one entry per project; "technologies" lists the tools, languages and frameworks used on it.
- "experience" has one entry per position held.
- Include only information explicitly present in the text. Do not hallucinate.
- Use [] for lists with no entries.
- The JSON must parse without errors; no trailing commas and no extraneous text outside the object.

Example:
Input: "Jane Doe - Backend Engineer. Skills: Go, PostgreSQL. B.Sc. Computer Science, MIT 2018. Built a payments ledger in Go with Kafka."
Output:
{
  "name": "Jane Doe",
  "title": "Backend Engineer",
  "email": "",
  "phone": "",
  "skills": ["Go", "PostgreSQL"],
  "education": [{"degree": "B.Sc. Computer Science", "institution": "MIT", "year": 2018}],
  "projects": [{"name": "Payments ledger", "role": "", "description": "Built a payments ledger", "technologies": ["Go", "Kafka"]}],
  "experience": []
}`

const synthesisSystemPrompt = `You are an HR assistant helping a recruiter search a pool of candidate résumés.

Answer the recruiter's question using ONLY the candidate context provided. The context lists candidates,
the facts known about each of them, and relevant excerpts from their résumés.

Rules:
- Name the candidates your answer is based on.
- If the context does not contain the answer, say so plainly instead of guessing.
- Keep the answer concise and factual.`

const synthesisUserTemplate = `Candidate context:
%s

Question: %s`

// buildExtractionPrompt creates the system prompt with the response schema embedded.
func buildExtractionPrompt() string {
	return fmt.Sprintf(extractionPromptTemplate, extractionResponseSchema)
}

func buildSynthesisPrompt(query, contextText string) string {
	return fmt.Sprintf(synthesisUserTemplate, contextText, query)
}
