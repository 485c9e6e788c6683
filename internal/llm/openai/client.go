package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/boam79/ai-interview/internal/llm"
	"github.com/boam79/ai-interview/internal/models"
)

// OpenAI chat completions API structures
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

const systemPrompt = "당신은 전문적인 AI 면접관입니다. 간단하고 명확한 면접 질문과 건설적인 피드백을 제공합니다."

// Client calls the OpenAI chat completions API over plain HTTP.
type Client struct {
	config *Config
	client *http.Client
}

func NewClient(config *Config) *Client {
	return &Client{
		config: config,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *Client) GenerateText(ctx context.Context, prompt string, requestID string) (*models.GenerationResult, error) {
	startTime := time.Now()

	request := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "openai",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Failed to encode request",
			Err:      err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "openai",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Failed to create request",
			Err:      err,
		}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "openai",
			Code:     llm.ErrCodeServiceDown,
			Message:  "Failed to reach OpenAI API",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "openai",
			Code:     llm.ErrCodeServiceDown,
			Message:  "Failed to read response body",
			Err:      err,
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &llm.ProviderError{
			Provider: "openai",
			Code:     llm.ErrCodeRateLimit,
			Message:  "Rate limit exceeded",
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &llm.ProviderError{
			Provider: "openai",
			Code:     llm.ErrCodeServiceDown,
			Message:  fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)),
		}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, &llm.ProviderError{
			Provider: "openai",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Failed to parse response",
			Err:      err,
		}
	}

	if chatResp.Error != nil {
		return nil, &llm.ProviderError{
			Provider: "openai",
			Code:     llm.ErrCodeServiceDown,
			Message:  chatResp.Error.Message,
		}
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return nil, &llm.ProviderError{
			Provider: "openai",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
		}
	}

	processingTime := time.Since(startTime).Milliseconds()

	return &models.GenerationResult{
		Text: chatResp.Choices[0].Message.Content,
		Metadata: models.GenerationMetadata{
			ProcessingTime: int(processingTime),
			Provider:       "openai",
			Model:          c.config.Model,
		},
	}, nil
}

func (c *Client) GetProviderName() string {
	return "openai"
}
