package core

import (
	"errors"
	"testing"
)

func TestValidateCandidateDraft(t *testing.T) {
	valid := func() *CandidateDraft {
		return &CandidateDraft{
			Name:     "Jane Doe",
			Checksum: "abc",
			Skills:   []string{"Go"},
			Education: []EducationDraft{
				{Degree: "BSc", Institution: "MIT", Year: 2015},
			},
			Projects: []ProjectDraft{
				{Name: "Search", Technologies: []string{"Go", "Badger"}},
			},
		}
	}

	tests := []struct {
		name     string
		mutate   func(d *CandidateDraft)
		nilDraft bool
		wantErr  error
	}{
		{name: "valid draft", mutate: func(d *CandidateDraft) {}},
		{name: "nil draft", nilDraft: true, wantErr: ErrInvalidDraft},
		{name: "blank name", mutate: func(d *CandidateDraft) { d.Name = "  " }, wantErr: ErrEmptyName},
		{name: "missing checksum", mutate: func(d *CandidateDraft) { d.Checksum = "" }, wantErr: ErrEmptyChecksum},
		{name: "blank skill", mutate: func(d *CandidateDraft) { d.Skills = append(d.Skills, "\t") }, wantErr: ErrEmptyName},
		{
			name:    "education without institution",
			mutate:  func(d *CandidateDraft) { d.Education[0].Institution = "" },
			wantErr: ErrMissingInstitution,
		},
		{
			name:    "education year out of range",
			mutate:  func(d *CandidateDraft) { d.Education[0].Year = 15 },
			wantErr: ErrInvalidYear,
		},
		{name: "education year unknown", mutate: func(d *CandidateDraft) { d.Education[0].Year = 0 }},
		{name: "project without name", mutate: func(d *CandidateDraft) { d.Projects[0].Name = "" }, wantErr: ErrEmptyName},
		{
			name:    "blank technology",
			mutate:  func(d *CandidateDraft) { d.Projects[0].Technologies = []string{""} },
			wantErr: ErrEmptyName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var draft *CandidateDraft
			if !tt.nilDraft {
				draft = valid()
				tt.mutate(draft)
			}

			err := ValidateCandidateDraft(draft)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateCandidateDraft() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCandidateDraft() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidDraft) {
				t.Errorf("ValidateCandidateDraft() error = %v, should wrap ErrInvalidDraft", err)
			}
		})
	}
}

func TestStageError(t *testing.T) {
	err := error(&StageError{Stage: StageExtract, Err: ErrExtractionFailure})

	if !errors.Is(err, ErrExtractionFailure) {
		t.Errorf("StageError should unwrap to its cause")
	}
	stage, ok := FailedStage(err)
	if !ok || stage != StageExtract {
		t.Errorf("FailedStage() = %v, %v", stage, ok)
	}
	if _, ok := FailedStage(errors.New("plain")); ok {
		t.Errorf("FailedStage() found a stage in a plain error")
	}
}
