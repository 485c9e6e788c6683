package session

import (
	"strings"
	"testing"
	"time"
)

func TestStatusTerminal(t *testing.T) {
	terminal := []Status{StatusCompleted, StatusInterrupted, StatusError}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Fatalf("expected %s to be terminal", s)
		}
	}

	active := []Status{StatusStarting, StatusAsking, StatusAnswering, StatusProcessing}
	for _, s := range active {
		if s.Terminal() {
			t.Fatalf("expected %s to be non-terminal", s)
		}
	}
}

func TestSessionValid(t *testing.T) {
	base := func() *Session {
		return &Session{
			ID:             "interview_abc",
			PhoneNumber:    "01012345678",
			StartedAt:      time.Now(),
			Status:         StatusAsking,
			QuestionBudget: 5,
		}
	}

	if !base().Valid() {
		t.Fatal("expected base session to be valid")
	}

	var nilSession *Session
	if nilSession.Valid() {
		t.Fatal("nil session must be invalid")
	}

	s := base()
	s.ID = ""
	if s.Valid() {
		t.Fatal("session without id must be invalid")
	}

	s = base()
	s.StartedAt = time.Time{}
	if s.Valid() {
		t.Fatal("session without start time must be invalid")
	}

	s = base()
	s.QuestionBudget = 0
	if s.Valid() {
		t.Fatal("session without budget must be invalid")
	}

	s = base()
	s.QuestionIndex = -1
	if s.Valid() {
		t.Fatal("session with negative index must be invalid")
	}
}

func TestSessionDuration(t *testing.T) {
	started := time.Now().Add(-90 * time.Second)
	ended := started.Add(60 * time.Second)

	s := &Session{StartedAt: started, EndedAt: &ended}
	if got := s.Duration(); got != 60 {
		t.Fatalf("expected 60 seconds, got %d", got)
	}

	// running session measures up to now
	s = &Session{StartedAt: started}
	if got := s.Duration(); got < 89 || got > 92 {
		t.Fatalf("expected roughly 90 seconds, got %d", got)
	}
}

func TestSessionProgress(t *testing.T) {
	s := &Session{QuestionIndex: 2, QuestionBudget: 5}
	if got := s.Progress(); got != 40 {
		t.Fatalf("expected 40%%, got %d", got)
	}

	s = &Session{QuestionIndex: 7, QuestionBudget: 5}
	if got := s.Progress(); got != 100 {
		t.Fatalf("progress must cap at 100, got %d", got)
	}

	s = &Session{}
	if got := s.Progress(); got != 0 {
		t.Fatalf("zero budget must report 0, got %d", got)
	}
}

func TestSessionCloneIsDeep(t *testing.T) {
	ended := time.Now()
	s := &Session{
		ID:             "interview_abc",
		PhoneNumber:    "01012345678",
		StartedAt:      time.Now(),
		EndedAt:        &ended,
		Status:         StatusCompleted,
		QuestionBudget: 5,
		Turns:          []Turn{{Question: "q1", Answer: "a1"}},
	}

	clone := s.Clone()
	clone.Turns[0].Answer = "mutated"
	*clone.EndedAt = clone.EndedAt.Add(time.Hour)

	if s.Turns[0].Answer != "a1" {
		t.Fatal("clone shares turn storage with original")
	}
	if !s.EndedAt.Equal(ended) {
		t.Fatal("clone shares EndedAt pointer with original")
	}
}

func TestFormatTextIncludesEverything(t *testing.T) {
	ended := time.Now()
	s := &Session{
		ID:             "interview_abc",
		PhoneNumber:    "01012345678",
		StartedAt:      time.Now().Add(-5 * time.Minute),
		EndedAt:        &ended,
		Status:         StatusCompleted,
		QuestionBudget: 5,
		Turns: []Turn{
			{Question: "자기소개를 해주세요", Answer: "안녕하세요"},
		},
		Summary: "훌륭한 면접이었습니다.",
	}

	text := s.FormatText()
	for _, want := range []string{"interview_abc", "01012345678", "자기소개를 해주세요", "안녕하세요", "훌륭한 면접이었습니다."} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected record to contain %q:\n%s", want, text)
		}
	}
}
