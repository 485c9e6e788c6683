package transcribe

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPacing is the interval between simulated partial results,
// matching the word pacing of the streaming endpoint this replaces.
const DefaultPacing = 100 * time.Millisecond

// Callbacks receive transcription progress. OnPartial carries the new
// delta and the cumulative text so far; OnFinal fires exactly once,
// after every partial; OnError fires at most once instead of OnFinal.
type Callbacks struct {
	OnPartial func(delta, cumulative string)
	OnFinal   func(text string)
	OnError   func(err error)
}

// Handle cancels an in-flight transcription. After Cancel returns no
// further callbacks are delivered.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	cancelled bool
}

func (h *Handle) Cancel() {
	h.mu.Lock()
	h.cancelled = true
	h.mu.Unlock()
	h.cancel()
}

// Done is closed once delivery has finished, whether by final result,
// error or cancellation.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// deliver runs fn unless the handle was cancelled. Cancel blocks on the
// same lock, so once it returns no callback can still be running.
func (h *Handle) deliver(fn func()) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancelled {
		return false
	}
	fn()
	return true
}

// Adapter turns one recorded clip into a stream of partial transcripts
// followed by exactly one final transcript. The speech backend returns
// the whole text in one call, so streaming is simulated by splitting on
// whitespace; consumers cannot tell the difference.
type Adapter struct {
	client SpeechClient
	pacing time.Duration
	logger *zap.Logger
}

func NewAdapter(client SpeechClient, pacing time.Duration, logger *zap.Logger) *Adapter {
	if pacing <= 0 {
		pacing = DefaultPacing
	}
	return &Adapter{
		client: client,
		pacing: pacing,
		logger: logger,
	}
}

// TranscribeSync validates the clip and performs a single blocking
// transcription call with no streaming.
func (a *Adapter) TranscribeSync(ctx context.Context, clip Clip) (string, error) {
	if err := ValidateClip(clip); err != nil {
		return "", err
	}
	return a.client.Transcribe(ctx, clip)
}

// Transcribe validates the clip, then transcribes it asynchronously,
// delivering results through cb. Validation failures are reported via
// OnError and returned without any external call.
func (a *Adapter) Transcribe(ctx context.Context, clip Clip, cb Callbacks) (*Handle, error) {
	if err := ValidateClip(clip); err != nil {
		if cb.OnError != nil {
			cb.OnError(err)
		}
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	handle := &Handle{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go a.run(ctx, clip, cb, handle)

	return handle, nil
}

func (a *Adapter) run(ctx context.Context, clip Clip, cb Callbacks, handle *Handle) {
	defer close(handle.done)
	defer handle.cancel()

	text, err := a.client.Transcribe(ctx, clip)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		a.logger.Warn("Transcription failed", zap.Error(err))
		if cb.OnError != nil {
			handle.deliver(func() { cb.OnError(err) })
		}
		return
	}

	// synthetic partials: strictly growing prefixes at word boundaries
	words := strings.Fields(text)
	var cumulative strings.Builder
	for i, word := range words {
		delta := word
		if i > 0 {
			delta = " " + word
		}
		cumulative.WriteString(delta)

		if cb.OnPartial != nil {
			current := cumulative.String()
			if !handle.deliver(func() { cb.OnPartial(delta, current) }) {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(a.pacing):
		}
	}

	if cb.OnFinal != nil {
		handle.deliver(func() { cb.OnFinal(cumulative.String()) })
	}
}
