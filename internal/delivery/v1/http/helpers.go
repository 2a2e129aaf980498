package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/MametaroGG/BoothPic/internal/usecase"
	"github.com/MametaroGG/BoothPic/pkg/e"
	"github.com/jimlawless/whereami"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrExpectedMultipart):
		return http.StatusBadRequest, e.ErrExpectedMultipart.Error()
	case errors.Is(err, e.ErrNoImage):
		return http.StatusBadRequest, e.ErrNoImage.Error()
	case errors.Is(err, e.ErrInvalidLimit):
		return http.StatusBadRequest, e.ErrInvalidLimit.Error()
	case errors.Is(err, e.ErrEmptyShopIdentifier):
		return http.StatusBadRequest, e.ErrEmptyShopIdentifier.Error()
	case errors.Is(err, e.ErrImageDecodeFailed):
		return http.StatusBadRequest, e.ErrImageDecodeFailed.Error()
	case errors.Is(err, e.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, e.ErrFileTooLarge.Error()
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, e.ErrUnsupportedMediaType.Error()
	case errors.Is(err, e.ErrIndexNotReady):
		return http.StatusServiceUnavailable, e.ErrIndexNotReady.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	return r.ParseMultipartForm(maxMemory)
}

// parseSearchForm собирает поисковый запрос из multipart-формы:
// файл image плюс необязательные limit, category, avatars, colors,
// excluded_shops (списки через запятую).
func parseSearchForm(r *http.Request) (*usecase.SearchReq, error) {
	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		return nil, e.ErrNoImage
	}

	imageData, err := readImageFile(files[0])
	if err != nil {
		return nil, err
	}

	limit := 0
	if limitStr := r.FormValue("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			return nil, e.Wrap(limitStr, e.ErrInvalidLimit)
		}
	}

	return usecase.NewSearchReq(
		imageData,
		limit,
		splitCSV(r.FormValue("excluded_shops")),
		strings.TrimSpace(r.FormValue("category")),
		splitCSV(r.FormValue("avatars")),
		splitCSV(r.FormValue("colors")),
	), nil
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func readImageFile(fh *multipart.FileHeader) ([]byte, error) {
	const maxFileSize = 15 << 20

	src, err := fh.Open()
	if err != nil {
		return nil, e.ErrInternalServerError
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, e.ErrInternalServerError
	}
	if int64(len(data)) > maxFileSize {
		return nil, e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, e.Wrap(mimeType, e.ErrUnsupportedMediaType)
	}

	return data, nil
}
