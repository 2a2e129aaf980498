package http

import (
	"net/http"

	"github.com/MametaroGG/BoothPic/internal/usecase"
	"github.com/MametaroGG/BoothPic/pkg/e"
	"github.com/MametaroGG/BoothPic/pkg/logger"
)

type SearchHandler struct {
	searchUsecase usecase.SearchUC
	logger        logger.Logger
}

func NewSearchHandler(searchUsecase usecase.SearchUC, logger logger.Logger) *SearchHandler {
	return &SearchHandler{searchUsecase: searchUsecase, logger: logger}
}

// search
//
//	@Summary		Поиск похожих товаров по изображению
//	@Description	Векторизует изображение и возвращает ближайшие товары, не больше одного результата на товар
//	@Tags			search
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			image			formData	file	true	"Изображение запроса"
//	@Param			limit			formData	int		false	"Максимум товаров в ответе (по умолчанию 12)"
//	@Param			category		formData	string	false	"Точное совпадение категории"
//	@Param			avatars			formData	string	false	"Аватары через запятую, совпадение хотя бы по одному"
//	@Param			colors			formData	string	false	"Цвета через запятую, совпадение хотя бы по одному"
//	@Param			excluded_shops	formData	string	false	"Исключаемые магазины через запятую"
//	@Success		200				{object}	usecase.SearchRes	"Результаты поиска"
//	@Failure		400				{object}	ErrorResponse		"Ошибка валидации"
//	@Failure		503				{object}	ErrorResponse		"Индекс ещё инициализируется"
//	@Router			/search [post]
func (s *SearchHandler) search(w http.ResponseWriter, r *http.Request) {
	const (
		maxTotalRequestSize = 20 << 20
		maxMemory           = 16 << 20
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		s.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}

	req, err := parseSearchForm(r)
	if err != nil {
		s.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	res, err := s.searchUsecase.Search(r.Context(), req)
	if err != nil {
		s.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, res)
}
