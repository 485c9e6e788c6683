package models

// uniform error responses; every non-2xx body carries success=false
// and a human-readable error string alongside the machine code
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"error"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// NewError builds an error response with success pinned to false.
func NewError(code, message string) *ErrorResponse {
	return &ErrorResponse{Success: false, Code: code, Message: message}
}

type StartInterviewResponse struct {
	Success       bool   `json:"success"`
	SessionID     string `json:"sessionId"`
	FirstQuestion string `json:"firstQuestion"`
}

type AnswerResponse struct {
	Success      bool   `json:"success"`
	NextQuestion string `json:"nextQuestion,omitempty"`
	IsComplete   bool   `json:"isComplete"`
}

type InterruptResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

type SummaryResponse struct {
	Success bool   `json:"success"`
	Summary string `json:"summary"`
}

type TranscribeResponse struct {
	Success  bool   `json:"success"`
	Text     string `json:"text"`
	Duration int64  `json:"duration"`
}
