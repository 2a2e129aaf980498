package http

import (
	"encoding/json"
	"net/http"

	"github.com/MametaroGG/BoothPic/internal/usecase"
	"github.com/MametaroGG/BoothPic/pkg/e"
	"github.com/MametaroGG/BoothPic/pkg/logger"
)

type OptOutHandler struct {
	optOutUsecase usecase.OptOutUC
	logger        logger.Logger
}

func NewOptOutHandler(optOutUsecase usecase.OptOutUC, logger logger.Logger) *OptOutHandler {
	return &OptOutHandler{optOutUsecase: optOutUsecase, logger: logger}
}

type OptOutRequest struct {
	Identifier string `json:"identifier"`
}

type OptOutResponse struct {
	Registered []string `json:"registered"`
}

// optOut
//
//	@Summary		Исключение магазина из поиска
//	@Description	Принимает ссылку на магазин BOOTH или его имя и убирает товары магазина из выдачи
//	@Tags			opt-out
//	@Accept			json
//	@Produce		json
//	@Param			request	body		OptOutRequest	true	"Ссылка или имя магазина"
//	@Success		200		{object}	OptOutResponse	"Сохранённые идентификаторы"
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/opt-out [post]
func (o *OptOutHandler) optOut(w http.ResponseWriter, r *http.Request) {
	var req OptOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		o.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	registered, err := o.optOutUsecase.RegisterOptOut(r.Context(), req.Identifier)
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, &OptOutResponse{Registered: registered})
}
