package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/talentgraph/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Synthesizer implements ai.AnswerSynthesizer using OpenAI-compatible chat APIs.
type Synthesizer struct {
	client llms.Model
	logger *slog.Logger
}

func newSynthesizer(config *ai.Config) (*Synthesizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ExtractionHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.SynthesisModel),
	)
	if err != nil {
		return nil, err
	}
	return newSynthesizerWithModel(client), nil
}

func newSynthesizerWithModel(client llms.Model) *Synthesizer {
	return &Synthesizer{
		client: client,
		logger: slog.Default().With("component", "openai-synthesizer"),
	}
}

// NewSynthesizer creates a new answer synthesizer using the provided configuration.
func NewSynthesizer(config *ai.Config) (ai.AnswerSynthesizer, error) {
	return newSynthesizer(config)
}

// Synthesize answers query from contextText.
func (s *Synthesizer) Synthesize(ctx context.Context, query, contextText string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, synthesisSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, buildSynthesisPrompt(query, contextText)),
	}

	response, err := s.client.GenerateContent(ctx, content, llms.WithTemperature(0.2))
	if err != nil {
		s.logger.Error("failed to generate answer", "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", ErrNoChoices
	}

	answer := strings.TrimSpace(response.Choices[0].Content)
	s.logger.Debug("synthesized answer", "query_length", len(query), "context_length", len(contextText), "answer_length", len(answer))
	return answer, nil
}
