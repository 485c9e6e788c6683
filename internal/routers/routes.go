package routers

import (
	"github.com/boam79/ai-interview/internal/handlers"
	"github.com/boam79/ai-interview/internal/middleware"
	"github.com/boam79/ai-interview/internal/models"

	"github.com/go-chi/chi/v5"
)

func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, transcribeHandler *handlers.TranscribeHandler, ttsHandler *handlers.TTSHandler) {
	router.Route("/api/v1/interview", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.StartInterviewRequest]()).Post("/start", interviewHandler.StartHandler)
		r.With(middleware.ValidateRequest[*models.AnswerRequest]()).Post("/answer", interviewHandler.AnswerHandler)
		r.With(middleware.ValidateRequest[*models.InterruptRequest]()).Post("/interrupt", interviewHandler.InterruptHandler)
		r.With(middleware.ValidateRequest[*models.SummaryRequest]()).Post("/summary", interviewHandler.SummaryHandler)
		r.Get("/session/{sessionId}", interviewHandler.SessionHandler)
	})

	router.Post("/api/v1/voice-to-text", transcribeHandler.VoiceToTextHandler)
	router.Post("/api/v1/voice-to-text/stream", transcribeHandler.VoiceToTextStreamHandler)
	router.With(middleware.ValidateRequest[*models.TTSRequest]()).Post("/api/v1/tts", ttsHandler.SynthesizeHandler)
}

func ArchiveRoutes(router *chi.Mux, archiveHandler *handlers.ArchiveHandler) {
	router.Get("/api/v1/interview/archive", archiveHandler.ListRecentHandler)
}
