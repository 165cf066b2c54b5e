package ai

import (
	"errors"
	"strings"
)

// ErrEmptyProfile is returned by extractors when no candidate name can be found.
var ErrEmptyProfile = errors.New("no candidate name found in document")

// Profile is the structured form of a résumé returned by a ProfileExtractor.
type Profile struct {
	Name       string
	Title      string
	Email      string
	Phone      string
	Skills     []string
	Education  []EducationEntry
	Projects   []ProjectEntry
	Experience []ExperienceEntry
}

// EducationEntry is one degree.
type EducationEntry struct {
	Degree      string
	Institution string
	Year        int
}

// ProjectEntry is one project with the technologies it used.
type ProjectEntry struct {
	Name         string
	Role         string
	Description  string
	Technologies []string
}

// ExperienceEntry is one position held.
type ExperienceEntry struct {
	Company      string
	Position     string
	Description  string
	Technologies []string
}

// EffectiveProjects returns the profile's projects, or its work experience
// recast as projects when no projects were listed.
func (p *Profile) EffectiveProjects() []ProjectEntry {
	if len(p.Projects) > 0 {
		return p.Projects
	}
	projects := make([]ProjectEntry, 0, len(p.Experience))
	for _, exp := range p.Experience {
		name := strings.TrimSpace(exp.Company)
		if name == "" {
			name = strings.TrimSpace(exp.Position)
		}
		if name == "" {
			continue
		}
		projects = append(projects, ProjectEntry{
			Name:         name,
			Role:         exp.Position,
			Description:  exp.Description,
			Technologies: exp.Technologies,
		})
	}
	return projects
}
