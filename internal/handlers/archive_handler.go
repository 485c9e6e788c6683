package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/boam79/ai-interview/internal/archive"
	"github.com/boam79/ai-interview/internal/models"
	"github.com/boam79/ai-interview/internal/utils"
)

const defaultArchiveLimit = 20

type ArchiveHandler struct {
	manager *archive.Manager
	logger  *zap.Logger
}

func NewArchiveHandler(manager *archive.Manager, logger *zap.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		manager: manager,
		logger:  logger,
	}
}

// ListRecentHandler returns the most recently finished interviews.
func (h *ArchiveHandler) ListRecentHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultArchiveLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			utils.JSON(w, http.StatusBadRequest, models.NewError("invalid_limit", "limit must be between 1 and 100"))
			return
		}
		limit = parsed
	}

	records, err := h.manager.ListRecent(limit)
	if err != nil {
		h.logger.Error("Failed to list archived interviews", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.NewError("archive_failed", "면접 기록 조회에 실패했습니다."))
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"interviews": records,
		"count":      len(records),
	})
}
