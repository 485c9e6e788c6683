package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/boam79/ai-interview/internal/archive"
	"github.com/boam79/ai-interview/internal/questions"
	"github.com/boam79/ai-interview/internal/session"
	"github.com/boam79/ai-interview/internal/summary"
	"github.com/boam79/ai-interview/internal/webhook"
)

// SubmitResult is the outcome of one accepted answer.
type SubmitResult struct {
	Session      *session.Session
	NextQuestion string
	Complete     bool
}

// Orchestrator drives one interview end-to-end:
// start -> ask -> answer -> process -> next question or summary -> done.
// It is the only writer of session state; the fixed question budget is
// the sole authority for ending the interview.
type Orchestrator struct {
	store       session.Store
	questions   *questions.Generator
	summarizer  *summary.Generator
	webhook     *webhook.Client // optional
	archive     *archive.Manager // optional
	logger      *zap.Logger
	callTimeout time.Duration

	mu       sync.Mutex
	inFlight map[string]bool
}

func New(store session.Store, questionGen *questions.Generator, summaryGen *summary.Generator, callTimeout time.Duration, logger *zap.Logger) *Orchestrator {
	if callTimeout <= 0 {
		callTimeout = 120 * time.Second
	}
	return &Orchestrator{
		store:       store,
		questions:   questionGen,
		summarizer:  summaryGen,
		logger:      logger,
		callTimeout: callTimeout,
		inFlight:    make(map[string]bool),
	}
}

// SetWebhook enables completion delivery to an external endpoint.
func (o *Orchestrator) SetWebhook(client *webhook.Client) {
	o.webhook = client
}

// SetArchive enables recording finished interviews.
func (o *Orchestrator) SetArchive(manager *archive.Manager) {
	o.archive = manager
}

// acquire marks a session as busy; a second concurrent operation on the
// same session is rejected, not queued.
func (o *Orchestrator) acquire(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight[id] {
		return false
	}
	o.inFlight[id] = true
	return true
}

func (o *Orchestrator) release(id string) {
	o.mu.Lock()
	delete(o.inFlight, id)
	o.mu.Unlock()
}

// Start creates a new session and asks the first question. Store
// failure here is fatal; the caller must restart the flow.
func (o *Orchestrator) Start(ctx context.Context, phoneNumber string) (*session.Session, error) {
	s, err := o.store.Create(ctx, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	question, err := o.questions.NextQuestion(callCtx, nil, 1)
	cancel()
	if err != nil {
		s.Status = session.StatusError
		s.LastError = err.Error()
		if saveErr := o.store.Save(ctx, s); saveErr != nil {
			o.logger.Error("Failed to persist error state", zap.String("session_id", s.ID), zap.Error(saveErr))
		}
		return nil, fmt.Errorf("failed to generate first question: %w", err)
	}

	s.CurrentQuestion = question
	s.Status = session.StatusAsking

	if err := o.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	o.logger.Info("Interview started",
		zap.String("session_id", s.ID),
		zap.Int("question_budget", s.QuestionBudget))

	return s, nil
}

// SubmitAnswer commits one answer and advances the state machine. When
// the last budgeted answer arrives the interview is summarized and
// completed; summarization failure is absorbed with fallback feedback.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, id, answer string) (*SubmitResult, error) {
	if !o.acquire(id) {
		return nil, ErrConflict
	}
	defer o.release(id)

	s, err := o.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.Status != session.StatusAsking && s.Status != session.StatusAnswering {
		return nil, fmt.Errorf("%w: %s", ErrWrongState, s.Status)
	}

	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return nil, ErrEmptyAnswer
	}

	s.Status = session.StatusProcessing
	s.Turns = append(s.Turns, session.Turn{
		Question:   s.CurrentQuestion,
		Answer:     trimmed,
		AnsweredAt: time.Now().UTC(),
	})
	s.QuestionIndex++

	// the budget counter alone decides when the interview is over
	if s.QuestionIndex >= s.QuestionBudget {
		if err := o.finish(ctx, s); err != nil {
			return nil, err
		}
		return &SubmitResult{Session: s, Complete: true}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	question, err := o.questions.NextQuestion(callCtx, s.Turns, s.QuestionIndex+1)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to generate next question: %w", err)
	}

	s.CurrentQuestion = question
	s.Status = session.StatusAsking

	if err := o.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	o.logger.Info("Answer accepted",
		zap.String("session_id", s.ID),
		zap.Int("question_index", s.QuestionIndex))

	return &SubmitResult{Session: s, NextQuestion: question}, nil
}

// finish summarizes the transcript and closes the session.
func (o *Orchestrator) finish(ctx context.Context, s *session.Session) error {
	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	text, err := o.summarizer.Generate(callCtx, s.Turns)
	cancel()
	if err != nil {
		o.logger.Warn("Summary generation failed, storing fallback",
			zap.String("session_id", s.ID),
			zap.Error(err))
		text = summary.Fallback
	}

	now := time.Now().UTC()
	s.Summary = text
	s.EndedAt = &now
	s.Status = session.StatusCompleted
	s.CurrentQuestion = ""

	if err := o.store.Save(ctx, s); err != nil {
		return fmt.Errorf("failed to save completed session: %w", err)
	}

	o.logger.Info("Interview completed",
		zap.String("session_id", s.ID),
		zap.Int("turns", len(s.Turns)),
		zap.Int("duration_seconds", s.Duration()))

	o.afterFinish(s)
	return nil
}

// afterFinish runs the non-blocking side effects of a terminal session.
func (o *Orchestrator) afterFinish(s *session.Session) {
	if o.webhook != nil {
		o.webhook.SendAsync(s.Clone())
	}
	if o.archive != nil {
		record := s.Clone()
		go func() {
			if err := o.archive.Store(record); err != nil {
				o.logger.Warn("Failed to archive interview",
					zap.String("session_id", record.ID),
					zap.Error(err))
			}
		}()
	}
}

// Interrupt ends the interview early, keeping every committed turn and
// skipping summarization.
func (o *Orchestrator) Interrupt(ctx context.Context, id string) (*session.Session, error) {
	if !o.acquire(id) {
		return nil, ErrConflict
	}
	defer o.release(id)

	s, err := o.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.Status != session.StatusAsking && s.Status != session.StatusAnswering {
		return nil, fmt.Errorf("%w: %s", ErrWrongState, s.Status)
	}

	now := time.Now().UTC()
	s.EndedAt = &now
	s.Status = session.StatusInterrupted
	s.CurrentQuestion = ""

	if err := o.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save interrupted session: %w", err)
	}

	o.logger.Info("Interview interrupted",
		zap.String("session_id", s.ID),
		zap.Int("turns", len(s.Turns)))

	o.afterFinish(s)
	return s, nil
}

// Summarize returns the stored summary, generating one for sessions
// that ended without it (e.g. interrupted interviews with answers).
func (o *Orchestrator) Summarize(ctx context.Context, id string) (*session.Session, error) {
	if !o.acquire(id) {
		return nil, ErrConflict
	}
	defer o.release(id)

	s, err := o.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s", ErrWrongState, s.Status)
	}

	if s.Summary != "" {
		return s, nil
	}

	if len(s.Turns) == 0 {
		return nil, fmt.Errorf("%w: no answers to summarize", ErrWrongState)
	}

	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	text, err := o.summarizer.Generate(callCtx, s.Turns)
	cancel()
	if err != nil {
		o.logger.Warn("Summary generation failed, storing fallback",
			zap.String("session_id", s.ID),
			zap.Error(err))
		text = summary.Fallback
	}

	s.Summary = text
	if err := o.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return s, nil
}

// Session returns the current session snapshot.
func (o *Orchestrator) Session(ctx context.Context, id string) (*session.Session, error) {
	return o.store.Load(ctx, id)
}

// Clear removes a stored session, e.g. when the caller returns home.
func (o *Orchestrator) Clear(ctx context.Context, id string) error {
	return o.store.Clear(ctx, id)
}
