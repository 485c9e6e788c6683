package orchestrator

import "errors"

var (
	// ErrEmptyAnswer rejects whitespace-only answers; the caller should
	// re-prompt the candidate. Session state is untouched.
	ErrEmptyAnswer = errors.New("answer is empty")

	// ErrConflict rejects an operation while another is in flight for
	// the same session. The second call is never queued.
	ErrConflict = errors.New("another operation is in progress for this session")

	// ErrWrongState rejects an operation the current session status
	// does not allow.
	ErrWrongState = errors.New("operation not allowed in current session state")
)
