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
	"fmt"
	"strings"
)

// ValidateCandidateDraft validates a CandidateDraft according to domain rules.
//
// Validation rules:
//   - Name must not be blank
//   - Checksum must not be empty
//   - Skill names must not be blank
//   - Education entries need an institution and a year of 0 or between 1900 and 2200
//   - Projects need a name; technology names must not be blank
//
// NOT validated:
//   - Title and DocumentRef (optional)
//   - Segments (a document may produce none)
func ValidateCandidateDraft(draft *CandidateDraft) error {
	if draft == nil {
		return fmt.Errorf("%w: draft is nil", ErrInvalidDraft)
	}

	if strings.TrimSpace(draft.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDraft, ErrEmptyName)
	}

	if draft.Checksum == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDraft, ErrEmptyChecksum)
	}

	for i, skill := range draft.Skills {
		if NormalizeName(skill) == "" {
			return fmt.Errorf("%w: skill %d: %w", ErrInvalidDraft, i, ErrEmptyName)
		}
	}

	for i, edu := range draft.Education {
		if err := ValidateEducationDraft(edu); err != nil {
			return fmt.Errorf("%w: education %d: %w", ErrInvalidDraft, i, err)
		}
	}

	for i, proj := range draft.Projects {
		if err := ValidateProjectDraft(proj); err != nil {
			return fmt.Errorf("%w: project %d: %w", ErrInvalidDraft, i, err)
		}
	}

	return nil
}

// ValidateEducationDraft validates a single education entry.
func ValidateEducationDraft(edu EducationDraft) error {
	if NormalizeName(edu.Institution) == "" {
		return ErrMissingInstitution
	}
	if edu.Year != 0 && (edu.Year < 1900 || edu.Year > 2200) {
		return fmt.Errorf("%w: %d", ErrInvalidYear, edu.Year)
	}
	return nil
}

// ValidateProjectDraft validates a single project entry.
func ValidateProjectDraft(proj ProjectDraft) error {
	if strings.TrimSpace(proj.Name) == "" {
		return ErrEmptyName
	}
	for _, tech := range proj.Technologies {
		if NormalizeName(tech) == "" {
			return fmt.Errorf("technology: %w", ErrEmptyName)
		}
	}
	return nil
}
