package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ui_resolver/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const (
	defaultOpenAIModel   = "gpt-4o"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
)

type OpenAIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
	model   string
}

// NewOpenAIClient - creates a chat completions client. timeout bounds each
// request; it is the only limit on how long a self-healing call can take.
func NewOpenAIClient(apiKey, model string, timeout time.Duration, logger *logrus.Logger) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}

	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: defaultOpenAIBaseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		model:   model,
	}, nil
}

// WithBaseURL - points the client at a compatible endpoint
func (c *OpenAIClient) WithBaseURL(baseURL string) *OpenAIClient {
	c.baseURL = baseURL
	return c
}

func (c *OpenAIClient) SuggestSelector(ctx context.Context, description string, snapshot string) (string, error) {
	prompt := buildSelectorPrompt(description, snapshot)

	c.logger.WithFields(logrus.Fields{
		"model":          c.model,
		"prompt_bytes":   len(prompt),
		"snapshot_bytes": len(snapshot),
	}).Debug("requesting selector from OpenAI")

	response, err := c.callAPI(ctx, prompt)
	if err != nil {
		return "", err
	}

	return response, nil
}

func (c *OpenAIClient) callAPI(ctx context.Context, prompt string) (string, error) {
	messages := []Message{
		{
			Role:    "system",
			Content: selectorSystemPrompt,
		},
		{
			Role:    "user",
			Content: prompt,
		},
	}

	requestBody := map[string]interface{}{
		"model":       c.model,
		"messages":    messages,
		"temperature": 0,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}

	var apiResponse APIResponse
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return "", err
	}

	if len(apiResponse.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}

	return apiResponse.Choices[0].Message.Content, nil
}

// API structures

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type APIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Ensure OpenAIClient implements SelectorModel interface
var _ interfaces.SelectorModel = (*OpenAIClient)(nil)
