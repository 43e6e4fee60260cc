// Package llm wraps the generative-text service behind a one-method
// interface. Callers treat the service as a black box that may fail or
// return malformed text; recovery is their responsibility.
package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// TextGenerator sends an opaque prompt and returns the raw completion.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeminiClient is the concrete TextGenerator backed by Gemini.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed text generator. Credentials come
// from the environment (GEMINI_API_KEY or Application Default Credentials).
func NewGeminiClient(ctx context.Context, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiClient: create genai client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// GenerateText sends the prompt to the model and returns the completion
// text. An empty completion is reported as an error.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("GenerateText: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("GenerateText: empty response from model")
	}
	return text, nil
}

var _ TextGenerator = (*GeminiClient)(nil)
