package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/drill-api/internal/config"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/generation"
	"google.golang.org/genai"
)

// GeminiGenerator implements the generation.Generator interface using
// Google's Gemini API.
type GeminiGenerator struct {
	logger *slog.Logger
	cfg    config.LLMConfig
	client *genai.Client
	model  string
}

// Ensure GeminiGenerator implements generation.Generator
var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a new GeminiGenerator from the LLM
// configuration. The client is constructed eagerly so a bad API key surfaces
// at startup, not on the first generation request.
func NewGeminiGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &GeminiGenerator{
		logger: logger.With("component", "gemini_generator"),
		cfg:    cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// GenerateSyllabus renders the syllabus prompt, performs one model call and
// returns the sanitized concept list.
func (g *GeminiGenerator) GenerateSyllabus(
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
// the sanitized item batch. Whether the round is focused is decided entirely
// by req.FocusConcepts; there is no retry here.
func (g *GeminiGenerator) GenerateQuiz(
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
func (g *GeminiGenerator) GenerateAnalogy(
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

// generate performs a single Gemini call with the configured timeout and
// returns the concatenated response text.
func (g *GeminiGenerator) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(g.cfg.RequestTimeoutSeconds)*time.Second)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	genCfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(g.cfg.Temperature),
		ResponseMIMEType: "application/json",
	}
	if g.cfg.MaxOutputTokens > 0 {
		genCfg.MaxOutputTokens = g.cfg.MaxOutputTokens
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, genCfg)
	if err != nil {
		return "", classifyCallError(err)
	}

	return extractText(resp)
}

// classifyCallError maps transport-level failures onto the generation error
// taxonomy. Rate limits and server errors are transient; everything else,
// including timeouts, is a plain generation failure.
func classifyCallError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}
	}
	return fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
}

// extractText pulls the text out of a Gemini response, translating safety
// blocks into ErrContentBlocked and structural absences into
// ErrGenerationFailed.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrGenerationFailed)
	}

	if fb := resp.PromptFeedback; fb != nil &&
		fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return "", fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, fb.BlockReason)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", generation.ErrGenerationFailed)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety ||
		candidate.FinishReason == genai.FinishReasonProhibitedContent {
		return "", fmt.Errorf("%w: generation stopped (%s)", generation.ErrContentBlocked, candidate.FinishReason)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: candidate has no content", generation.ErrGenerationFailed)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: response contains no text", generation.ErrGenerationFailed)
	}

	return sb.String(), nil
}
