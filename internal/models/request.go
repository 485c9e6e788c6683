package models

import (
	"strings"
)

type StartInterviewRequest struct {
	PhoneNumber    string `json:"phoneNumber"`
	InitialMessage string `json:"initialMessage,omitempty"`
}

// implements the Validator interface
func (r *StartInterviewRequest) Validate() error {
	if strings.TrimSpace(r.PhoneNumber) == "" {
		return NewError("missing_phone_number", "phoneNumber field is required")
	}

	// Korean mobile format: 11 digits starting with 010, separators allowed
	digits := digitsOnly(r.PhoneNumber)
	if len(digits) != 11 || !strings.HasPrefix(digits, "010") {
		return NewError("invalid_phone_number", "phoneNumber must be an 11-digit number starting with 010")
	}

	return nil
}

type AnswerRequest struct {
	SessionID string `json:"sessionId"`
	Answer    string `json:"answer"`
}

func (r *AnswerRequest) Validate() error {
	if strings.TrimSpace(r.SessionID) == "" {
		return NewError("missing_session_id", "sessionId field is required")
	}
	// empty answers are rejected by the orchestrator so the caller can re-prompt
	return nil
}

type InterruptRequest struct {
	SessionID string `json:"sessionId"`
}

func (r *InterruptRequest) Validate() error {
	if strings.TrimSpace(r.SessionID) == "" {
		return NewError("missing_session_id", "sessionId field is required")
	}
	return nil
}

type SummaryRequest struct {
	SessionID string `json:"sessionId"`
}

func (r *SummaryRequest) Validate() error {
	if strings.TrimSpace(r.SessionID) == "" {
		return NewError("missing_session_id", "sessionId field is required")
	}
	return nil
}

type TTSRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

func (r *TTSRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return NewError("missing_text", "text field is required")
	}
	if r.Voice != "" && !ValidVoices[r.Voice] {
		return NewError("invalid_voice", "Voice must be one of: alloy, echo, fable, onyx, nova, shimmer")
	}
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
