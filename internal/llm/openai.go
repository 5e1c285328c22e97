package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const chatTimeout = 60 * time.Second

// OpenAIAssistant calls an OpenAI-compatible chat completions endpoint.
type OpenAIAssistant struct {
	client *resty.Client
	model  string
}

type Options struct {
	APIKey  string
	BaseURL string
	Model   string
}

func NewOpenAIAssistant(opts Options) (*OpenAIAssistant, error) {
	if opts.APIKey == "" {
		return nil, errors.New("api key is required")
	}
	if opts.Model == "" {
		return nil, errors.New("chat model is required")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	client.SetTimeout(chatTimeout)
	client.SetAuthToken(opts.APIKey)

	return &OpenAIAssistant{client: client, model: opts.Model}, nil
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (a *OpenAIAssistant) Chat(ctx context.Context, messages []Message) (string, error) {
	conversation := sanitizeMessages(messages)
	if len(conversation) == 0 {
		return "", errors.New("conversation contains no usable messages")
	}

	payload := chatRequest{
		Model:    a.model,
		Messages: append([]Message{{Role: "system", Content: systemPrompt}}, conversation...),
	}

	var result chatResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(&result).
		SetError(&result).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	if resp.IsError() {
		if result.Error != nil && result.Error.Message != "" {
			return "", fmt.Errorf("chat completion failed: %s", result.Error.Message)
		}
		return "", fmt.Errorf("chat completion failed with status %d", resp.StatusCode())
	}
	if len(result.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
