package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no valid session exists for an id.
// Corrupted or invalid records are reported the same way.
var ErrNotFound = errors.New("session not found")

// Store is the persistence boundary for interview sessions.
// Create supersedes any previous session state for the returned id;
// Save overwrites wholesale.
type Store interface {
	Create(ctx context.Context, phoneNumber string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Clear(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
