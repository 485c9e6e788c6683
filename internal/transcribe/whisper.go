package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
)

// SpeechClient is one speech-to-text call.
type SpeechClient interface {
	Transcribe(ctx context.Context, clip Clip) (string, error)
}

// WhisperConfig holds the speech backend settings.
type WhisperConfig struct {
	APIKey   string
	Model    string
	Language string
	BaseURL  string
}

func NewWhisperConfig() (*WhisperConfig, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable is required")
	}

	model := os.Getenv("WHISPER_MODEL")
	if model == "" {
		model = "whisper-1"
	}

	language := os.Getenv("WHISPER_LANGUAGE")
	if language == "" {
		language = "ko"
	}

	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &WhisperConfig{
		APIKey:   apiKey,
		Model:    model,
		Language: language,
		BaseURL:  baseURL,
	}, nil
}

// WhisperClient calls the OpenAI transcription endpoint with a
// multipart upload.
type WhisperClient struct {
	config *WhisperConfig
	client *http.Client
}

func NewWhisperClient(config *WhisperConfig) *WhisperClient {
	return &WhisperClient{
		config: config,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

type transcriptionResponse struct {
	Text  string `json:"text"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (wc *WhisperClient) Transcribe(ctx context.Context, clip Clip) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", clip.Filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(clip.Data); err != nil {
		return "", fmt.Errorf("failed to write audio data: %w", err)
	}

	if err := writer.WriteField("model", wc.config.Model); err != nil {
		return "", fmt.Errorf("failed to write model field: %w", err)
	}
	if err := writer.WriteField("language", wc.config.Language); err != nil {
		return "", fmt.Errorf("failed to write language field: %w", err)
	}
	if err := writer.WriteField("response_format", "json"); err != nil {
		return "", fmt.Errorf("failed to write format field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wc.config.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+wc.config.APIKey)

	resp, err := wc.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach transcription API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var result transcriptionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse transcription response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if result.Error != nil {
			return "", fmt.Errorf("transcription API error (%d): %s", resp.StatusCode, result.Error.Message)
		}
		return "", fmt.Errorf("transcription API error (%d): %s", resp.StatusCode, string(respBody))
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return "", errors.New("empty recognition result")
	}

	return text, nil
}
