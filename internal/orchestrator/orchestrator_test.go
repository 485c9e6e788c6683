package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/boam79/ai-interview/internal/llm"
	"github.com/boam79/ai-interview/internal/models"
	"github.com/boam79/ai-interview/internal/questions"
	"github.com/boam79/ai-interview/internal/session"
	"github.com/boam79/ai-interview/internal/summary"
)

type fakeProvider struct {
	mu           sync.Mutex
	generateFunc func(ctx context.Context, prompt string, requestID string) (*models.GenerationResult, error)
	calls        int
}

func (f *fakeProvider) GenerateText(ctx context.Context, prompt string, requestID string) (*models.GenerationResult, error) {
	f.mu.Lock()
	f.calls++
	fn := f.generateFunc
	f.mu.Unlock()
	return fn(ctx, prompt, requestID)
}

func (f *fakeProvider) GetProviderName() string { return "fake" }

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePrompts struct{}

func (fakePrompts) BuildPrompt(mode, variant string, data map[string]string) (string, error) {
	return mode + "/" + variant, nil
}

func (fakePrompts) GetTemplates() []string {
	return []string{"first_question", "next_question", "summary"}
}

func textProvider(text string) *fakeProvider {
	return &fakeProvider{
		generateFunc: func(ctx context.Context, prompt, requestID string) (*models.GenerationResult, error) {
			return &models.GenerationResult{Text: text}, nil
		},
	}
}

func newTestOrchestrator(t *testing.T, provider *fakeProvider, budget int) (*Orchestrator, session.Store) {
	t.Helper()
	logger := zap.NewNop()
	policy := llm.RetryPolicy{MaxAttempts: 1}
	store := session.NewMemoryStore(budget)
	questionGen := questions.NewGenerator(provider, fakePrompts{}, policy, logger)
	summaryGen := summary.NewGenerator(provider, fakePrompts{}, policy, logger)
	return New(store, questionGen, summaryGen, time.Second, logger), store
}

func TestStartAsksFirstQuestion(t *testing.T) {
	orch, _ := newTestOrchestrator(t, textProvider("첫 번째 질문"), 5)

	s, err := orch.Start(context.Background(), "01012345678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Status != session.StatusAsking {
		t.Fatalf("expected asking status, got %s", s.Status)
	}
	if s.CurrentQuestion != "첫 번째 질문" {
		t.Fatalf("unexpected first question: %q", s.CurrentQuestion)
	}
	if s.QuestionIndex != 0 {
		t.Fatalf("no answers yet, index must be 0, got %d", s.QuestionIndex)
	}
}

func TestStartFallsBackWhenProviderFails(t *testing.T) {
	provider := &fakeProvider{
		generateFunc: func(ctx context.Context, prompt, requestID string) (*models.GenerationResult, error) {
			return nil, errors.New("provider down")
		},
	}
	orch, _ := newTestOrchestrator(t, provider, 5)

	s, err := orch.Start(context.Background(), "01012345678")
	if err != nil {
		t.Fatalf("provider outage must not block the interview, got %v", err)
	}
	if s.Status != session.StatusAsking {
		t.Fatalf("expected asking status, got %s", s.Status)
	}
	if s.CurrentQuestion != questions.Fallback(1) {
		t.Fatalf("expected fallback opening question, got %q", s.CurrentQuestion)
	}
}

func TestSubmitAnswerAdvancesToNextQuestion(t *testing.T) {
	orch, _ := newTestOrchestrator(t, textProvider("질문"), 5)
	ctx := context.Background()

	s, _ := orch.Start(ctx, "01012345678")

	result, err := orch.SubmitAnswer(ctx, s.ID, "저는 개발자입니다.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Complete {
		t.Fatal("interview must not complete before the budget is used")
	}
	if result.NextQuestion == "" {
		t.Fatal("expected a next question")
	}
	if result.Session.QuestionIndex != 1 {
		t.Fatalf("expected index 1, got %d", result.Session.QuestionIndex)
	}
	if len(result.Session.Turns) != 1 || result.Session.Turns[0].Answer != "저는 개발자입니다." {
		t.Fatalf("turn not committed: %+v", result.Session.Turns)
	}
}

func TestBudgetCompletesInterview(t *testing.T) {
	orch, store := newTestOrchestrator(t, textProvider("생성된 텍스트"), 2)
	ctx := context.Background()

	s, _ := orch.Start(ctx, "01012345678")

	first, err := orch.SubmitAnswer(ctx, s.ID, "첫 답변")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Complete {
		t.Fatal("one answer against a budget of two must not complete")
	}

	second, err := orch.SubmitAnswer(ctx, s.ID, "둘째 답변")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Complete {
		t.Fatal("the budget counter must end the interview")
	}
	if second.NextQuestion != "" {
		t.Fatalf("completed interview must not carry a next question, got %q", second.NextQuestion)
	}

	stored, err := store.Load(ctx, s.ID)
	if err != nil {
		t.Fatalf("failed to load completed session: %v", err)
	}
	if stored.Status != session.StatusCompleted {
		t.Fatalf("expected completed status, got %s", stored.Status)
	}
	if stored.Summary == "" {
		t.Fatal("completed session must carry a summary")
	}
	if stored.EndedAt == nil {
		t.Fatal("completed session must carry an end time")
	}
	if stored.CurrentQuestion != "" {
		t.Fatal("completed session must not carry a pending question")
	}
}

func TestCompletionKeywordsDoNotEndInterview(t *testing.T) {
	orch, _ := newTestOrchestrator(t, textProvider("질문"), 5)
	ctx := context.Background()

	s, _ := orch.Start(ctx, "01012345678")

	// phrases that sound final must not shortcut the budget
	result, err := orch.SubmitAnswer(ctx, s.ID, "이상으로 마치겠습니다. 감사합니다. 수고하셨습니다.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Complete {
		t.Fatal("only the budget counter may end the interview")
	}
}

func TestEmptyAnswerRejectedWithoutMutation(t *testing.T) {
	orch, store := newTestOrchestrator(t, textProvider("질문"), 5)
	ctx := context.Background()

	s, _ := orch.Start(ctx, "01012345678")

	for _, answer := range []string{"", "   ", "\n\t"} {
		if _, err := orch.SubmitAnswer(ctx, s.ID, answer); !errors.Is(err, ErrEmptyAnswer) {
			t.Fatalf("expected ErrEmptyAnswer for %q, got %v", answer, err)
		}
	}

	stored, _ := store.Load(ctx, s.ID)
	if len(stored.Turns) != 0 {
		t.Fatalf("rejected answers must not commit turns: %+v", stored.Turns)
	}
	if stored.QuestionIndex != 0 {
		t.Fatalf("rejected answers must not advance the index, got %d", stored.QuestionIndex)
	}
	if stored.Status != session.StatusAsking {
		t.Fatalf("session must stay askable, got %s", stored.Status)
	}

	// the same question can still be answered
	if _, err := orch.SubmitAnswer(ctx, s.ID, "진짜 답변"); err != nil {
		t.Fatalf("re-answer after rejection failed: %v", err)
	}
}

func TestSubmitAnswerUnknownSession(t *testing.T) {
	orch, _ := newTestOrchestrator(t, textProvider("질문"), 5)

	if _, err := orch.SubmitAnswer(context.Background(), "interview_missing", "답변"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubmitAnswerAfterCompletion(t *testing.T) {
	orch, _ := newTestOrchestrator(t, textProvider("텍스트"), 1)
	ctx := context.Background()

	s, _ := orch.Start(ctx, "01012345678")
	if _, err := orch.SubmitAnswer(ctx, s.ID, "유일한 답변"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := orch.SubmitAnswer(ctx, s.ID, "늦은 답변"); !errors.Is(err, ErrWrongState) {
		t.Fatalf("expected ErrWrongState after completion, got %v", err)
	}
}

func TestConcurrentSubmitOneWins(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once
	provider := &fakeProvider{
		generateFunc: func(ctx context.Context, prompt, requestID string) (*models.GenerationResult, error) {
			once.Do(func() { close(entered) })
			<-release
			return &models.GenerationResult{Text: "질문"}, nil
		},
	}
	orch, _ := newTestOrchestrator(t, provider, 5)
	ctx := context.Background()

	// Start consumes the first generation call
	startDone := make(chan *session.Session)
	go func() {
		s, err := orch.Start(ctx, "01012345678")
		if err != nil {
			t.Errorf("start failed: %v", err)
		}
		startDone <- s
	}()
	<-entered
	release <- struct{}{}
	s := <-startDone

	// first submit blocks inside generation, second must be rejected
	firstErr := make(chan error)
	go func() {
		_, err := orch.SubmitAnswer(ctx, s.ID, "느린 답변")
		firstErr <- err
	}()

	// wait for the first submit to hold the in-flight guard
	deadline := time.After(time.Second)
	for {
		orch.mu.Lock()
		busy := orch.inFlight[s.ID]
		orch.mu.Unlock()
		if busy {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first submit never acquired the session")
		case <-time.After(time.Millisecond):
		}
	}

	if _, err := orch.SubmitAnswer(ctx, s.ID, "동시 답변"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for concurrent submit, got %v", err)
	}

	release <- struct{}{}
	if err := <-firstErr; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	// guard released, the session accepts operations again
	go func() { release <- struct{}{} }()
	if _, err := orch.SubmitAnswer(ctx, s.ID, "다음 답변"); err != nil {
		t.Fatalf("submit after release failed: %v", err)
	}
}

func TestSummaryFailureStoresFallback(t *testing.T) {
	provider := &fakeProvider{}
	provider.generateFunc = func(ctx context.Context, prompt, requestID string) (*models.GenerationResult, error) {
		if prompt == "summary/default" {
			return nil, errors.New("provider down")
		}
		return &models.GenerationResult{Text: "질문"}, nil
	}
	orch, store := newTestOrchestrator(t, provider, 1)
	ctx := context.Background()

	s, _ := orch.Start(ctx, "01012345678")
	result, err := orch.SubmitAnswer(ctx, s.ID, "답변")
	if err != nil {
		t.Fatalf("summary failure must not fail completion: %v", err)
	}
	if !result.Complete {
		t.Fatal("expected completion")
	}

	stored, _ := store.Load(ctx, s.ID)
	if stored.Summary != summary.Fallback {
		t.Fatalf("expected fallback summary, got %q", stored.Summary)
	}
	if stored.Status != session.StatusCompleted {
		t.Fatalf("expected completed status, got %s", stored.Status)
	}
}

func TestInterruptKeepsCommittedTurns(t *testing.T) {
	orch, store := newTestOrchestrator(t, textProvider("질문"), 5)
	ctx := context.Background()

	s, _ := orch.Start(ctx, "01012345678")
	orch.SubmitAnswer(ctx, s.ID, "첫 답변")

	interrupted, err := orch.Interrupt(ctx, s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if interrupted.Status != session.StatusInterrupted {
		t.Fatalf("expected interrupted status, got %s", interrupted.Status)
	}
	if interrupted.EndedAt == nil {
		t.Fatal("interrupted session must carry an end time")
	}

	stored, _ := store.Load(ctx, s.ID)
	if len(stored.Turns) != 1 {
		t.Fatalf("interrupt must keep committed turns, got %d", len(stored.Turns))
	}
	if stored.Summary != "" {
		t.Fatal("interrupt must not generate a summary")
	}
}

func TestInterruptTerminalSession(t *testing.T) {
	orch, _ := newTestOrchestrator(t, textProvider("텍스트"), 1)
	ctx := context.Background()

	s, _ := orch.Start(ctx, "01012345678")
	orch.SubmitAnswer(ctx, s.ID, "답변")

	if _, err := orch.Interrupt(ctx, s.ID); !errors.Is(err, ErrWrongState) {
		t.Fatalf("expected ErrWrongState, got %v", err)
	}
}

func TestSummarizeIsIdempotent(t *testing.T) {
	provider := textProvider("요약 텍스트")
	orch, _ := newTestOrchestrator(t, provider, 1)
	ctx := context.Background()

	s, _ := orch.Start(ctx, "01012345678")
	orch.SubmitAnswer(ctx, s.ID, "답변")

	callsAfterFinish := provider.callCount()

	first, err := orch.Summarize(ctx, s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := orch.Summarize(ctx, s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Summary != second.Summary {
		t.Fatal("summarize must be idempotent")
	}
	if provider.callCount() != callsAfterFinish {
		t.Fatal("stored summary must not trigger regeneration")
	}
}

func TestSummarizeInterruptedInterview(t *testing.T) {
	orch, _ := newTestOrchestrator(t, textProvider("중단 요약"), 5)
	ctx := context.Background()

	s, _ := orch.Start(ctx, "01012345678")
	orch.SubmitAnswer(ctx, s.ID, "답변")
	orch.Interrupt(ctx, s.ID)

	summarized, err := orch.Summarize(ctx, s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summarized.Summary != "중단 요약" {
		t.Fatalf("unexpected summary: %q", summarized.Summary)
	}
	if summarized.Status != session.StatusInterrupted {
		t.Fatalf("terminal status must be preserved, got %s", summarized.Status)
	}
}

func TestSubmitAnswerAcceptsAnsweringStatus(t *testing.T) {
	// clients may persist the recording phase as "answering"
	orch, store := newTestOrchestrator(t, textProvider("다음 질문"), 5)
	ctx := context.Background()

	s, _ := orch.Start(ctx, "01012345678")
	s.Status = session.StatusAnswering
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := orch.SubmitAnswer(ctx, s.ID, "답변")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Session.QuestionIndex != 1 {
		t.Fatalf("expected committed turn, got index %d", res.Session.QuestionIndex)
	}
}

func TestSummarizeInProgressInterview(t *testing.T) {
	orch, _ := newTestOrchestrator(t, textProvider("질문"), 5)
	ctx := context.Background()

	s, _ := orch.Start(ctx, "01012345678")
	orch.SubmitAnswer(ctx, s.ID, "답변")

	if _, err := orch.Summarize(ctx, s.ID); !errors.Is(err, ErrWrongState) {
		t.Fatalf("expected ErrWrongState for in-progress session, got %v", err)
	}

	after, err := orch.Session(ctx, s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after.Status != session.StatusAsking {
		t.Fatalf("in-progress session must stay asking, got %s", after.Status)
	}
	if after.QuestionIndex != 1 {
		t.Fatalf("question counter must be untouched, got %d", after.QuestionIndex)
	}
	if after.Summary != "" {
		t.Fatalf("no summary may be stored mid-interview, got %q", after.Summary)
	}
}

func TestSummarizeWithoutAnswers(t *testing.T) {
	orch, _ := newTestOrchestrator(t, textProvider("질문"), 5)
	ctx := context.Background()

	s, _ := orch.Start(ctx, "01012345678")
	orch.Interrupt(ctx, s.ID)

	if _, err := orch.Summarize(ctx, s.ID); !errors.Is(err, ErrWrongState) {
		t.Fatalf("expected ErrWrongState for empty transcript, got %v", err)
	}
}

func TestClearRemovesSession(t *testing.T) {
	orch, _ := newTestOrchestrator(t, textProvider("질문"), 5)
	ctx := context.Background()

	s, _ := orch.Start(ctx, "01012345678")
	if err := orch.Clear(ctx, s.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := orch.Session(ctx, s.ID); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected cleared session to be absent, got %v", err)
	}
}
