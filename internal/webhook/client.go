package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/boam79/ai-interview/internal/session"
)

// TurnPayload is one Q&A pair in the delivery payload, numbered 1-based.
type TurnPayload struct {
	Number    int       `json:"number"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// InterviewPayload is the completion record delivered to the external
// endpoint. Field names match the consumer's existing contract.
type InterviewPayload struct {
	SessionID      string        `json:"sessionId"`
	PhoneNumber    string        `json:"phoneNumber"`
	InterviewDate  time.Time     `json:"interviewDate"`
	Duration       int           `json:"duration"`
	QuestionCount  int           `json:"questionCount"`
	TotalQuestions int           `json:"totalQuestions"`
	Questions      []TurnPayload `json:"questions"`
	Summary        string        `json:"summary"`
	Status         string        `json:"status"`
	CompletedAt    time.Time     `json:"completedAt"`
}

// NewInterviewPayload converts a finished session for delivery.
func NewInterviewPayload(s *session.Session) *InterviewPayload {
	questions := make([]TurnPayload, len(s.Turns))
	for i, turn := range s.Turns {
		questions[i] = TurnPayload{
			Number:    i + 1,
			Question:  turn.Question,
			Answer:    turn.Answer,
			Timestamp: turn.AnsweredAt,
		}
	}

	completedAt := time.Now().UTC()
	if s.EndedAt != nil {
		completedAt = *s.EndedAt
	}

	return &InterviewPayload{
		SessionID:      s.ID,
		PhoneNumber:    s.PhoneNumber,
		InterviewDate:  s.StartedAt,
		Duration:       s.Duration(),
		QuestionCount:  len(s.Turns),
		TotalQuestions: s.QuestionBudget,
		Questions:      questions,
		Summary:        s.Summary,
		Status:         string(s.Status),
		CompletedAt:    completedAt,
	}
}

// Client posts interview results to an externally configured endpoint.
type Client struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

func NewClient(webhookURL string, logger *zap.Logger) *Client {
	return &Client{
		url:    webhookURL,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Deliver posts the payload once, returning any transport error.
func (c *Client) Deliver(ctx context.Context, payload *InterviewPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// SendAsync delivers the session result in the background. Delivery
// failure never blocks or fails the completion flow.
func (c *Client) SendAsync(s *session.Session) {
	payload := NewInterviewPayload(s)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := c.Deliver(ctx, payload); err != nil {
			c.logger.Warn("Webhook delivery failed",
				zap.String("session_id", payload.SessionID),
				zap.Error(err))
			return
		}
		c.logger.Info("Webhook delivered", zap.String("session_id", payload.SessionID))
	}()
}

// IsValidURL accepts only HTTPS endpoints.
func IsValidURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return parsed.Scheme == "https" && parsed.Host != ""
}
