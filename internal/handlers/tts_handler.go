package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/boam79/ai-interview/internal/middleware"
	"github.com/boam79/ai-interview/internal/models"
	"github.com/boam79/ai-interview/internal/tts"
	"github.com/boam79/ai-interview/internal/utils"
)

type TTSHandler struct {
	client *tts.Client
	logger *zap.Logger
}

func NewTTSHandler(client *tts.Client, logger *zap.Logger) *TTSHandler {
	return &TTSHandler{
		client: client,
		logger: logger,
	}
}

// SynthesizeHandler converts request text into spoken audio and returns
// the MP3 bytes directly. Identical text always yields identical audio,
// so clients may cache the response for an hour.
func (h *TTSHandler) SynthesizeHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.TTSRequest](r)

	voice := req.Voice
	if voice == "" {
		voice = models.DefaultVoice
	}

	audio, err := h.client.Synthesize(r.Context(), req.Text, voice)
	if err != nil {
		h.logger.Error("Speech synthesis failed", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.NewError("tts_failed", "음성 합성에 실패했습니다."))
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}
