package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/poiesic/talentgraph/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrNoChoices is returned when the model produces no output.
var ErrNoChoices = errors.New("model returned no choices")

// Extractor implements ai.ProfileExtractor using OpenAI-compatible chat APIs.
type Extractor struct {
	client      llms.Model
	maxAttempts int
	logger      *slog.Logger
}

// resumeJSON matches the structure requested from the model.
type resumeJSON struct {
	Name       string           `json:"name"`
	Title      string           `json:"title"`
	Email      string           `json:"email"`
	Phone      string           `json:"phone"`
	Skills     []string         `json:"skills"`
	Education  []educationJSON  `json:"education"`
	Projects   []projectJSON    `json:"projects"`
	Experience []experienceJSON `json:"experience"`
}

type educationJSON struct {
	Degree      string   `json:"degree"`
	Institution string   `json:"institution"`
	Year        yearJSON `json:"year"`
}

type projectJSON struct {
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

type experienceJSON struct {
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

// yearJSON accepts 2018, "2018", "2014 - 2018" or null. The last four-digit
// number wins; anything else decodes to zero.
type yearJSON int

func (y *yearJSON) UnmarshalJSON(data []byte) error {
	*y = 0
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*y = yearJSON(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r < '0' || r > '9' }) {
		if len(f) != 4 {
			continue
		}
		if v, err := strconv.Atoi(f); err == nil {
			*y = yearJSON(v)
		}
	}
	return nil
}

func newExtractor(config *ai.Config) (*Extractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ExtractionHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.ExtractionModel),
	)
	if err != nil {
		return nil, err
	}
	return newExtractorWithModel(client, config.MaxExtractionAttempts), nil
}

func newExtractorWithModel(client llms.Model, maxAttempts int) *Extractor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Extractor{
		client:      client,
		maxAttempts: maxAttempts,
		logger:      slog.Default().With("component", "openai-extractor"),
	}
}

// NewExtractor creates a new profile extractor using the provided configuration.
func NewExtractor(config *ai.Config) (ai.ProfileExtractor, error) {
	return newExtractor(config)
}

// Extract asks the model for a JSON profile of the résumé text. Malformed
// JSON is repaired; responses that still fail to parse are retried.
func (e *Extractor) Extract(ctx context.Context, text string) (*ai.Profile, error) {
	text = scrubText(text)
	if text == "" {
		return nil, ai.ErrEmptyProfile
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, buildExtractionPrompt()),
		llms.TextParts(llms.ChatMessageTypeHuman, text),
	}

	var lastErr error
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}
		if len(response.Choices) < 1 {
			lastErr = ErrNoChoices
			e.logger.Warn("no choices returned from model", "attempt", attempt+1)
			continue
		}

		profile, err := parseProfile(response.Choices[0].Content)
		if err != nil {
			lastErr = err
			e.logger.Warn("error parsing extraction response",
				"attempt", attempt+1,
				"err", err)
			continue
		}

		e.logger.Debug("extracted profile",
			"name", profile.Name,
			"skills", len(profile.Skills),
			"education", len(profile.Education),
			"projects", len(profile.Projects))
		return profile, nil
	}

	e.logger.Error("failed to parse extraction response after retries", "attempts", e.maxAttempts, "err", lastErr)
	return nil, fmt.Errorf("extraction failed after %d attempts: %w", e.maxAttempts, lastErr)
}

// parseProfile decodes a model response into a profile.
func parseProfile(raw string) (*ai.Profile, error) {
	var doc resumeJSON
	if err := json.Unmarshal([]byte(repairJSON(stripCodeFences(raw))), &doc); err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Name) == "" {
		return nil, ai.ErrEmptyProfile
	}

	p := &ai.Profile{
		Name:   strings.TrimSpace(doc.Name),
		Title:  strings.TrimSpace(doc.Title),
		Email:  strings.TrimSpace(doc.Email),
		Phone:  strings.TrimSpace(doc.Phone),
		Skills: trimAll(doc.Skills),
	}
	for _, ed := range doc.Education {
		if strings.TrimSpace(ed.Institution) == "" && strings.TrimSpace(ed.Degree) == "" {
			continue
		}
		p.Education = append(p.Education, ai.EducationEntry{
			Degree:      strings.TrimSpace(ed.Degree),
			Institution: strings.TrimSpace(ed.Institution),
			Year:        int(ed.Year),
		})
	}
	for _, pr := range doc.Projects {
		if strings.TrimSpace(pr.Name) == "" {
			continue
		}
		p.Projects = append(p.Projects, ai.ProjectEntry{
			Name:         strings.TrimSpace(pr.Name),
			Role:         strings.TrimSpace(pr.Role),
			Description:  strings.TrimSpace(pr.Description),
			Technologies: trimAll(pr.Technologies),
		})
	}
	for _, ex := range doc.Experience {
		p.Experience = append(p.Experience, ai.ExperienceEntry{
			Company:      strings.TrimSpace(ex.Company),
			Position:     strings.TrimSpace(ex.Position),
			Description:  strings.TrimSpace(ex.Description),
			Technologies: trimAll(ex.Technologies),
		})
	}
	return p, nil
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
