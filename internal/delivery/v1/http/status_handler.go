package http

import (
	"net/http"

	"github.com/MametaroGG/BoothPic/internal/domain"
)

type StatusHandler struct {
	progress *domain.Progress
}

func NewStatusHandler(progress *domain.Progress) *StatusHandler {
	return &StatusHandler{progress: progress}
}

// status
//
//	@Summary	Ход индексации
//	@Description	Текущий прогресс фоновой индексации фида
//	@Tags		status
//	@Produce	json
//	@Success	200	{object}	domain.ProgressSnapshot	"Снимок прогресса"
//	@Router		/status [get]
func (s *StatusHandler) status(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, s.progress.Snapshot())
}
