package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/boam79/ai-interview/internal/models"
	"github.com/boam79/ai-interview/internal/transcribe"
	"github.com/boam79/ai-interview/internal/utils"
)

type TranscribeHandler struct {
	adapter *transcribe.Adapter
	logger  *zap.Logger
}

func NewTranscribeHandler(adapter *transcribe.Adapter, logger *zap.Logger) *TranscribeHandler {
	return &TranscribeHandler{
		adapter: adapter,
		logger:  logger,
	}
}

// streamEvent is one NDJSON line of a simulated streaming response.
type streamEvent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	FullText string `json:"fullText,omitempty"`
	Duration int64  `json:"duration,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (h *TranscribeHandler) readClip(r *http.Request) (transcribe.Clip, int, *models.ErrorResponse) {
	// Cap slightly above the clip ceiling so uploads just over it still
	// surface as a 413 from ValidateClip; anything larger trips the
	// reader mid-parse and is mapped to 413 here.
	r.Body = http.MaxBytesReader(nil, r.Body, transcribe.MaxClipBytes+1<<20)
	if err := r.ParseMultipartForm(transcribe.MaxClipBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status, resp := clipErrorStatus(transcribe.ErrPayloadTooLarge)
			return transcribe.Clip{}, status, resp
		}
		return transcribe.Clip{}, http.StatusBadRequest, models.NewError("invalid_form", "multipart form data is required")
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		return transcribe.Clip{}, http.StatusBadRequest, models.NewError("missing_audio", "audio file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return transcribe.Clip{}, http.StatusBadRequest, models.NewError("read_failed", "failed to read audio file")
	}

	return transcribe.Clip{Filename: header.Filename, Data: data}, 0, nil
}

func clipErrorStatus(err error) (int, *models.ErrorResponse) {
	switch {
	case errors.Is(err, transcribe.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, models.NewError("payload_too_large",
			fmt.Sprintf("audio file exceeds the %dMB limit", transcribe.MaxClipBytes>>20))
	case errors.Is(err, transcribe.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, models.NewError("unsupported_format",
			"supported formats: "+strings.Join(transcribe.SupportedFormatsList(), ", "))
	case errors.Is(err, transcribe.ErrEmptyClip):
		return http.StatusBadRequest, models.NewError("empty_audio", "audio file is empty")
	default:
		return http.StatusInternalServerError, models.NewError("transcription_failed", "음성 인식에 실패했습니다.")
	}
}

func (h *TranscribeHandler) VoiceToTextHandler(w http.ResponseWriter, r *http.Request) {
	clip, status, errResp := h.readClip(r)
	if errResp != nil {
		utils.JSON(w, status, errResp)
		return
	}

	start := time.Now()
	text, err := h.adapter.TranscribeSync(r.Context(), clip)
	if err != nil {
		status, resp := clipErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Transcription failed", zap.Error(err))
		}
		utils.JSON(w, status, resp)
		return
	}

	utils.JSON(w, http.StatusOK, models.TranscribeResponse{
		Success:  true,
		Text:     text,
		Duration: time.Since(start).Milliseconds(),
	})
}

// VoiceToTextStreamHandler transcribes the clip and emits the text as
// NDJSON delta events, word by word, followed by a single done event.
func (h *TranscribeHandler) VoiceToTextStreamHandler(w http.ResponseWriter, r *http.Request) {
	clip, status, errResp := h.readClip(r)
	if errResp != nil {
		utils.JSON(w, status, errResp)
		return
	}

	// Validate before committing to a streaming response so size and
	// format errors still get proper status codes.
	if err := transcribe.ValidateClip(clip); err != nil {
		status, resp := clipErrorStatus(err)
		utils.JSON(w, status, resp)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.JSON(w, http.StatusInternalServerError, models.NewError("streaming_unsupported", "streaming is not supported"))
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	writeEvent := func(ev streamEvent) {
		if err := enc.Encode(ev); err != nil {
			return
		}
		flusher.Flush()
	}

	start := time.Now()
	handle, err := h.adapter.Transcribe(r.Context(), clip, transcribe.Callbacks{
		OnPartial: func(delta, cumulative string) {
			writeEvent(streamEvent{Type: "delta", Text: delta, FullText: cumulative})
		},
		OnFinal: func(text string) {
			writeEvent(streamEvent{Type: "done", FullText: text, Duration: time.Since(start).Milliseconds()})
		},
		OnError: func(err error) {
			h.logger.Error("Stream transcription failed", zap.Error(err))
			writeEvent(streamEvent{Type: "error", Error: "음성 인식에 실패했습니다."})
		},
	})
	if err != nil {
		// OnError already wrote the event line.
		return
	}

	<-handle.Done()
}
