package mock

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/poiesic/talentgraph/ai"
)

// MockExtractor is a test double for ai.ProfileExtractor.
// It allows custom behavior injection via function fields.
type MockExtractor struct {
	// ExtractFunc is called by Extract if set.
	// If nil, uses the default line parser.
	ExtractFunc func(ctx context.Context, text string) (*ai.Profile, error)

	callCount atomic.Int64
}

// NewMockExtractor creates a mock extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExtractor().
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// Extract builds a profile from "Key: value" lines.
//
// Recognized keys are Name, Title, Email, Phone, Skills (comma separated),
// Education ("degree | institution | year"), Project ("name | role |
// description | tech, tech") and Experience ("company | position |
// description | tech, tech"). Without a Name line the first non-empty line
// is used as the name.
func (m *MockExtractor) Extract(ctx context.Context, text string) (*ai.Profile, error) {
	m.callCount.Add(1)

	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, text)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParseProfile(text)
}

// CallCount returns the number of times Extract was called.
func (m *MockExtractor) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockExtractor) Reset() {
	m.callCount.Store(0)
	m.ExtractFunc = nil
}

// ParseProfile is the default MockExtractor behavior.
func ParseProfile(text string) (*ai.Profile, error) {
	p := &ai.Profile{}
	firstLine := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if firstLine == "" {
			firstLine = line
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "name":
			p.Name = value
		case "title":
			p.Title = value
		case "email":
			p.Email = value
		case "phone":
			p.Phone = value
		case "skills":
			p.Skills = append(p.Skills, splitList(value, ",")...)
		case "education":
			parts := fields(value, 3)
			year, _ := strconv.Atoi(parts[2])
			p.Education = append(p.Education, ai.EducationEntry{
				Degree:      parts[0],
				Institution: parts[1],
				Year:        year,
			})
		case "project":
			parts := fields(value, 4)
			p.Projects = append(p.Projects, ai.ProjectEntry{
				Name:         parts[0],
				Role:         parts[1],
				Description:  parts[2],
				Technologies: splitList(parts[3], ","),
			})
		case "experience":
			parts := fields(value, 4)
			p.Experience = append(p.Experience, ai.ExperienceEntry{
				Company:      parts[0],
				Position:     parts[1],
				Description:  parts[2],
				Technologies: splitList(parts[3], ","),
			})
		}
	}
	if p.Name == "" && firstLine != "" && !strings.Contains(firstLine, ":") {
		p.Name = firstLine
	}
	if p.Name == "" {
		return nil, ai.ErrEmptyProfile
	}
	return p, nil
}

// fields splits a "|" separated value into exactly n trimmed parts.
func fields(value string, n int) []string {
	parts := strings.SplitN(value, "|", n)
	for len(parts) < n {
		parts = append(parts, "")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func splitList(value, sep string) []string {
	var out []string
	for _, item := range strings.Split(value, sep) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
