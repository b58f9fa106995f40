package openai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/drill-api/internal/config"
	"github.com/phrazzld/drill-api/internal/generation"
)

func testLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		Provider:              "openai",
		OpenAIAPIKey:          "test-api-key",
		ModelName:             "gpt-4o-mini",
		RequestTimeoutSeconds: 30,
		Temperature:           0.7,
	}
}

func TestNewOpenAIGenerator(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("creates a generator with a valid configuration", func(t *testing.T) {
		t.Parallel()

		gen, err := NewOpenAIGenerator(log, testLLMConfig())
		require.NoError(t, err)
		assert.NotNil(t, gen)
		assert.Equal(t, "gpt-4o-mini", gen.model)
	})

	t.Run("accepts a custom base URL", func(t *testing.T) {
		t.Parallel()

		cfg := testLLMConfig()
		cfg.OpenAIBaseURL = "http://localhost:11434/v1"

		gen, err := NewOpenAIGenerator(log, cfg)
		require.NoError(t, err)
		assert.NotNil(t, gen)
	})

	t.Run("rejects a nil logger", func(t *testing.T) {
		t.Parallel()

		gen, err := NewOpenAIGenerator(nil, testLLMConfig())
		assert.Error(t, err)
		assert.Nil(t, gen)
	})

	t.Run("rejects an empty API key", func(t *testing.T) {
		t.Parallel()

		cfg := testLLMConfig()
		cfg.OpenAIAPIKey = ""

		gen, err := NewOpenAIGenerator(log, cfg)
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
		assert.Nil(t, gen)
	})

	t.Run("rejects an empty model name", func(t *testing.T) {
		t.Parallel()

		cfg := testLLMConfig()
		cfg.ModelName = ""

		gen, err := NewOpenAIGenerator(log, cfg)
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
		assert.Nil(t, gen)
	})
}

func TestExtractText(t *testing.T) {
	t.Parallel()

	t.Run("returns the first choice's message content", func(t *testing.T) {
		t.Parallel()

		resp := goopenai.ChatCompletionResponse{
			Choices: []goopenai.ChatCompletionChoice{
				{
					Message:      goopenai.ChatCompletionMessage{Content: `{"concepts": []}`},
					FinishReason: goopenai.FinishReasonStop,
				},
			},
		}

		text, err := extractText(resp)
		require.NoError(t, err)
		assert.Equal(t, `{"concepts": []}`, text)
	})

	t.Run("rejects a response without choices", func(t *testing.T) {
		t.Parallel()

		_, err := extractText(goopenai.ChatCompletionResponse{})
		assert.ErrorIs(t, err, generation.ErrGenerationFailed)
	})

	t.Run("flags a content filter stop as blocked", func(t *testing.T) {
		t.Parallel()

		resp := goopenai.ChatCompletionResponse{
			Choices: []goopenai.ChatCompletionChoice{
				{
					Message:      goopenai.ChatCompletionMessage{Content: "partial"},
					FinishReason: goopenai.FinishReasonContentFilter,
				},
			},
		}

		_, err := extractText(resp)
		assert.ErrorIs(t, err, generation.ErrContentBlocked)
	})

	t.Run("rejects a choice without text", func(t *testing.T) {
		t.Parallel()

		resp := goopenai.ChatCompletionResponse{
			Choices: []goopenai.ChatCompletionChoice{
				{FinishReason: goopenai.FinishReasonStop},
			},
		}

		_, err := extractText(resp)
		assert.ErrorIs(t, err, generation.ErrGenerationFailed)
	})
}

func TestClassifyCallError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name:    "rate limit is transient",
			err:     &goopenai.APIError{HTTPStatusCode: 429, Message: "rate limit exceeded"},
			wantErr: generation.ErrTransientFailure,
		},
		{
			name:    "server error is transient",
			err:     &goopenai.APIError{HTTPStatusCode: 503, Message: "service unavailable"},
			wantErr: generation.ErrTransientFailure,
		},
		{
			name:    "client error is a generation failure",
			err:     &goopenai.APIError{HTTPStatusCode: 400, Message: "invalid request"},
			wantErr: generation.ErrGenerationFailed,
		},
		{
			name:    "timeout is a generation failure",
			err:     context.DeadlineExceeded,
			wantErr: generation.ErrGenerationFailed,
		},
		{
			name:    "plain error is a generation failure",
			err:     errors.New("connection refused"),
			wantErr: generation.ErrGenerationFailed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := classifyCallError(tc.err)
			assert.ErrorIs(t, got, tc.wantErr)
		})
	}
}
