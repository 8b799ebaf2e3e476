package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"lyricflow/internal/shared"
)

// OpenAITranslator implements [Translator] using a chat completion model.
// Useful for lyrics where a literal word-for-word translation reads poorly.
type OpenAITranslator struct {
	client *openai.Client
	model  string
}

// NewOpenAITranslator creates a translator backed by the OpenAI API.
func NewOpenAITranslator(apiKey, model string) (*OpenAITranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai api key not set", shared.ErrMissingCredentials)
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAITranslator{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

func (o *OpenAITranslator) Name() string { return "openai" }

// Translate asks the model for a translation of a single lyric line.
func (o *OpenAITranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the following song lyric line to %s. Preserve the tone and keep it concise. Respond with only the translation, no explanations:\n\n%s",
		targetLang, text,
	)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no completion choices returned", shared.ErrAPIRequest)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
