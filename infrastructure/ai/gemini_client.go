package ai

import (
	"context"
	"fmt"

	"ui_resolver/domain/interfaces"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiClient asks a Gemini model for selectors through the genai SDK
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *logrus.Logger
}

// NewGeminiClient - creates a Gemini API client
func NewGeminiClient(ctx context.Context, apiKey, model string, logger *logrus.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}

	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{client: client, model: model, logger: logger}, nil
}

func (c *GeminiClient) SuggestSelector(ctx context.Context, description string, snapshot string) (string, error) {
	prompt := buildSelectorPrompt(description, snapshot)

	c.logger.WithFields(logrus.Fields{
		"model":        c.model,
		"prompt_bytes": len(prompt),
	}).Debug("requesting selector from Gemini")

	temperature := float32(0)
	resp, err := c.client.Models.GenerateContent(ctx,
		c.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(selectorSystemPrompt, genai.RoleUser),
			Temperature:       &temperature,
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	return resp.Text(), nil
}

var _ interfaces.SelectorModel = (*GeminiClient)(nil)
