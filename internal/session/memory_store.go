package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is the in-process Store used for tests and single-node
// development runs.
type MemoryStore struct {
	mu             sync.RWMutex
	sessions       map[string]*Session
	questionBudget int
}

func NewMemoryStore(questionBudget int) *MemoryStore {
	return &MemoryStore{
		sessions:       make(map[string]*Session),
		questionBudget: questionBudget,
	}
}

func (ms *MemoryStore) Create(ctx context.Context, phoneNumber string) (*Session, error) {
	s := &Session{
		ID:             "interview_" + uuid.New().String(),
		PhoneNumber:    phoneNumber,
		StartedAt:      time.Now().UTC(),
		Status:         StatusStarting,
		QuestionBudget: ms.questionBudget,
		Turns:          []Turn{},
	}

	ms.mu.Lock()
	ms.sessions[s.ID] = s.Clone()
	ms.mu.Unlock()

	return s, nil
}

func (ms *MemoryStore) Save(ctx context.Context, s *Session) error {
	ms.mu.Lock()
	ms.sessions[s.ID] = s.Clone()
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStore) Load(ctx context.Context, id string) (*Session, error) {
	ms.mu.RLock()
	s, exists := ms.sessions[id]
	ms.mu.RUnlock()

	if !exists || !s.Valid() {
		return nil, ErrNotFound
	}

	return s.Clone(), nil
}

func (ms *MemoryStore) Clear(ctx context.Context, id string) error {
	ms.mu.Lock()
	delete(ms.sessions, id)
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
