package session

import (
	"fmt"
	"strings"
	"time"
)

// Status tracks where an interview is in its lifecycle.
type Status string

const (
	StatusStarting    Status = "starting"
	StatusAsking      Status = "asking"
	StatusAnswering   Status = "answering"
	StatusProcessing  Status = "processing"
	StatusCompleted   Status = "completed"
	StatusInterrupted Status = "interrupted"
	StatusError       Status = "error"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusInterrupted || s == StatusError
}

// Turn is one committed question/answer pair.
type Turn struct {
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	AnsweredAt time.Time `json:"answered_at"`
}

// Session holds the full state of one interview attempt.
// The orchestrator is the only writer; stores move it by value.
type Session struct {
	ID              string     `json:"id"`
	PhoneNumber     string     `json:"phone_number"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	Status          Status     `json:"status"`
	QuestionIndex   int        `json:"question_index"`
	QuestionBudget  int        `json:"question_budget"`
	CurrentQuestion string     `json:"current_question,omitempty"`
	Turns           []Turn     `json:"turns"`
	Summary         string     `json:"summary,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
}

// Valid is the best-effort check applied when loading a stored session.
// Records failing it are treated as absent.
func (s *Session) Valid() bool {
	if s == nil {
		return false
	}
	if s.ID == "" || s.PhoneNumber == "" {
		return false
	}
	if s.StartedAt.IsZero() {
		return false
	}
	if s.QuestionIndex < 0 || s.QuestionBudget <= 0 {
		return false
	}
	return true
}

// Duration returns elapsed interview time in seconds. Running sessions
// are measured up to now.
func (s *Session) Duration() int {
	end := time.Now()
	if s.EndedAt != nil {
		end = *s.EndedAt
	}
	d := end.Sub(s.StartedAt)
	if d < 0 {
		return 0
	}
	return int(d.Seconds())
}

// Progress returns completion percent in [0,100].
func (s *Session) Progress() int {
	if s.QuestionBudget == 0 {
		return 0
	}
	progress := s.QuestionIndex * 100 / s.QuestionBudget
	if progress > 100 {
		return 100
	}
	return progress
}

// Clone returns a deep copy so callers cannot alias stored state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	copied := *s
	if s.EndedAt != nil {
		ended := *s.EndedAt
		copied.EndedAt = &ended
	}
	copied.Turns = make([]Turn, len(s.Turns))
	copy(copied.Turns, s.Turns)
	return &copied
}

// FormatText renders the session as a human-readable interview record.
func (s *Session) FormatText() string {
	duration := s.Duration()
	minutes := duration / 60
	seconds := duration % 60

	var b strings.Builder
	b.WriteString("=== AI 면접 기록 ===\n\n")
	b.WriteString(fmt.Sprintf("면접 ID: %s\n", s.ID))
	b.WriteString(fmt.Sprintf("전화번호: %s\n", s.PhoneNumber))
	b.WriteString(fmt.Sprintf("시작 시간: %s\n", s.StartedAt.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("소요 시간: %d분 %d초\n", minutes, seconds))
	b.WriteString(fmt.Sprintf("질문 수: %d / %d\n", len(s.Turns), s.QuestionBudget))
	b.WriteString(fmt.Sprintf("상태: %s\n\n", s.Status))

	b.WriteString("=== 질문 및 답변 ===\n\n")
	for i, turn := range s.Turns {
		b.WriteString(fmt.Sprintf("[질문 %d]\n%s\n\n", i+1, turn.Question))
		b.WriteString(fmt.Sprintf("[답변]\n%s\n\n---\n\n", turn.Answer))
	}

	if s.Summary != "" {
		b.WriteString("=== AI 피드백 ===\n\n")
		b.WriteString(s.Summary)
		b.WriteString("\n")
	}

	return b.String()
}
