package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/boam79/ai-interview/internal/middleware"
	"github.com/boam79/ai-interview/internal/models"
	"github.com/boam79/ai-interview/internal/orchestrator"
	"github.com/boam79/ai-interview/internal/session"
	"github.com/boam79/ai-interview/internal/utils"
)

type InterviewHandler struct {
	orch   *orchestrator.Orchestrator
	logger *zap.Logger
}

func NewInterviewHandler(orch *orchestrator.Orchestrator, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{
		orch:   orch,
		logger: logger,
	}
}

func (h *InterviewHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.StartInterviewRequest](r)

	s, err := h.orch.Start(r.Context(), req.PhoneNumber)
	if err != nil {
		h.logger.Error("Failed to start interview", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.NewError("start_failed", "면접 시작에 실패했습니다."))
		return
	}

	utils.JSON(w, http.StatusOK, models.StartInterviewResponse{
		Success:       true,
		SessionID:     s.ID,
		FirstQuestion: s.CurrentQuestion,
	})
}

func (h *InterviewHandler) AnswerHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.AnswerRequest](r)

	result, err := h.orch.SubmitAnswer(r.Context(), req.SessionID, req.Answer)
	if err != nil {
		h.writeOrchestratorError(w, err, "답변 처리에 실패했습니다.")
		return
	}

	utils.JSON(w, http.StatusOK, models.AnswerResponse{
		Success:      true,
		NextQuestion: result.NextQuestion,
		IsComplete:   result.Complete,
	})
}

func (h *InterviewHandler) InterruptHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.InterruptRequest](r)

	s, err := h.orch.Interrupt(r.Context(), req.SessionID)
	if err != nil {
		h.writeOrchestratorError(w, err, "면접 중단에 실패했습니다.")
		return
	}

	utils.JSON(w, http.StatusOK, models.InterruptResponse{
		Success: true,
		Status:  string(s.Status),
	})
}

func (h *InterviewHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.SummaryRequest](r)

	s, err := h.orch.Summarize(r.Context(), req.SessionID)
	if err != nil {
		h.writeOrchestratorError(w, err, "면접 요약 생성에 실패했습니다.")
		return
	}

	utils.JSON(w, http.StatusOK, models.SummaryResponse{
		Success: true,
		Summary: s.Summary,
	})
}

// SessionHandler returns the current session snapshot.
func (h *InterviewHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		utils.JSON(w, http.StatusBadRequest, models.NewError("missing_session_id", "sessionId is required"))
		return
	}

	s, err := h.orch.Session(r.Context(), sessionID)
	if err != nil {
		h.writeOrchestratorError(w, err, "세션 조회에 실패했습니다.")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"session": s,
	})
}

// writeOrchestratorError maps state machine errors onto HTTP semantics:
// bad input 400, unknown session 404, conflicting state 409, rest 500.
func (h *InterviewHandler) writeOrchestratorError(w http.ResponseWriter, err error, fallbackMessage string) {
	switch {
	case errors.Is(err, orchestrator.ErrEmptyAnswer):
		utils.JSON(w, http.StatusBadRequest, models.NewError("empty_answer", "답변이 비어 있습니다. 다시 답변해주세요."))
	case errors.Is(err, session.ErrNotFound):
		utils.JSON(w, http.StatusNotFound, models.NewError("session_not_found", "세션을 찾을 수 없습니다."))
	case errors.Is(err, orchestrator.ErrConflict):
		utils.JSON(w, http.StatusConflict, models.NewError("operation_in_progress", "이미 처리 중인 요청이 있습니다."))
	case errors.Is(err, orchestrator.ErrWrongState):
		utils.JSON(w, http.StatusConflict, models.NewError("invalid_state", "현재 상태에서 허용되지 않는 요청입니다."))
	default:
		h.logger.Error("Interview operation failed", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.NewError("internal_error", fallbackMessage))
	}
}
