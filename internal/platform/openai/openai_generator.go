package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/phrazzld/drill-api/internal/config"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/generation"
)

// OpenAIGenerator implements the generation.Generator interface using the
// OpenAI chat completions API.
type OpenAIGenerator struct {
	logger *slog.Logger
	cfg    config.LLMConfig
	client *goopenai.Client
	model  string
}

// Ensure OpenAIGenerator implements generation.Generator
var _ generation.Generator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator creates a new OpenAIGenerator from the LLM
// configuration. A non-empty OpenAIBaseURL points the client at a
// compatible self-hosted server instead of api.openai.com.
func NewOpenAIGenerator(logger *slog.Logger, cfg config.LLMConfig) (*OpenAIGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	clientConfig := goopenai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIBaseURL
	}

	return &OpenAIGenerator{
		logger: logger.With("component", "openai_generator"),
		cfg:    cfg,
		client: goopenai.NewClientWithConfig(clientConfig),
		model:  cfg.ModelName,
	}, nil
}

// GenerateSyllabus renders the syllabus prompt, performs one model call and
// returns the sanitized concept list.
func (g *OpenAIGenerator) GenerateSyllabus(
	ctx context.Context,
	req generation.SyllabusRequest,
) (domain.Syllabus, error) {
	prompt, err := generation.BuildSyllabusPrompt(req)
	if err != nil {
		return nil, err
	}

	raw, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	syllabus, err := generation.ParseSyllabusResponse(raw)
	if err != nil {
		return nil, err
	}

	g.logger.InfoContext(ctx, "syllabus generated",
		"project_name", req.ProjectName,
		"concept_count", len(syllabus))
	return syllabus, nil
}

// GenerateQuiz renders the quiz prompt, performs one model call and returns
// the sanitized item batch.
func (g *OpenAIGenerator) GenerateQuiz(
	ctx context.Context,
	req generation.QuizRequest,
) ([]domain.QuizItem, error) {
	prompt, err := generation.BuildQuizPrompt(req)
	if err != nil {
		return nil, err
	}

	raw, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	items, err := generation.ParseQuizResponse(raw)
	if err != nil {
		return nil, err
	}

	g.logger.InfoContext(ctx, "quiz generated",
		"project_name", req.ProjectName,
		"item_count", len(items),
		"focused", len(req.FocusConcepts) > 0)
	return items, nil
}

// GenerateAnalogy renders the analogy prompt, performs one model call and
// returns the sanitized explanation text.
func (g *OpenAIGenerator) GenerateAnalogy(
	ctx context.Context,
	req generation.AnalogyRequest,
) (string, error) {
	prompt, err := generation.BuildAnalogyPrompt(req)
	if err != nil {
		return "", err
	}

	raw, err := g.generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	analogy, err := generation.ParseAnalogyResponse(raw)
	if err != nil {
		return "", err
	}

	g.logger.InfoContext(ctx, "analogy generated",
		"project_name", req.ProjectName,
		"concept", req.Concept)
	return analogy, nil
}

// generate performs a single chat completion with the configured timeout
// and returns the response text.
func (g *OpenAIGenerator) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(g.cfg.RequestTimeoutSeconds)*time.Second)
	defer cancel()

	req := goopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.cfg.Temperature,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	if g.cfg.MaxOutputTokens > 0 {
		req.MaxTokens = int(g.cfg.MaxOutputTokens)
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyCallError(err)
	}

	return extractText(resp)
}

// classifyCallError maps transport-level failures onto the generation error
// taxonomy. Rate limits and server errors are transient; everything else,
// including timeouts, is a plain generation failure.
func classifyCallError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			apiErr.HTTPStatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}
	}
	return fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
}

// extractText pulls the text out of a chat completion, translating content
// filter stops into ErrContentBlocked and empty responses into
// ErrGenerationFailed.
func extractText(resp goopenai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", generation.ErrGenerationFailed)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == goopenai.FinishReasonContentFilter {
		return "", fmt.Errorf("%w: generation stopped (%s)", generation.ErrContentBlocked, choice.FinishReason)
	}
	if choice.Message.Content == "" {
		return "", fmt.Errorf("%w: response contains no text", generation.ErrGenerationFailed)
	}

	return choice.Message.Content, nil
}
