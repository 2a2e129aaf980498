package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MametaroGG/BoothPic/internal/domain"
	"github.com/MametaroGG/BoothPic/internal/usecase"
	"github.com/MametaroGG/BoothPic/pkg/e"
	"github.com/MametaroGG/BoothPic/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTTPResponse(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{e.ErrNoImage, http.StatusBadRequest},
		{e.ErrInvalidLimit, http.StatusBadRequest},
		{e.ErrEmptyShopIdentifier, http.StatusBadRequest},
		{e.Wrap("SearchUseCase.Search", e.ErrImageDecodeFailed), http.StatusBadRequest},
		{e.Wrap("SearchUseCase.Search", e.ErrIndexNotReady), http.StatusServiceUnavailable},
		{e.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{e.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType},
		{e.ErrEmptyVector, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		code, msg := ToHTTPResponse(tc.err)
		assert.Equal(t, tc.code, code, tc.err.Error())
		assert.NotEmpty(t, msg)
	}
}

func TestSplitCSV(t *testing.T) {
	assert.Nil(t, splitCSV(""))
	assert.Nil(t, splitCSV("  "))
	assert.Equal(t, []string{"a"}, splitCSV("a"))
	assert.Equal(t, []string{"a", "b"}, splitCSV("a, b"))
	assert.Equal(t, []string{"a", "b"}, splitCSV("a,,b,"))
}

type stubSearchUC struct {
	req *usecase.SearchReq
	res *usecase.SearchRes
	err error
}

func (s *stubSearchUC) Search(ctx context.Context, req *usecase.SearchReq) (*usecase.SearchRes, error) {
	s.req = req
	return s.res, s.err
}

// tinyPNG — минимальный валидный заголовок PNG, которого хватает
// http.DetectContentType.
var tinyPNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func multipartSearchRequest(t *testing.T, fields map[string]string, image []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if image != nil {
		fw, err := w.CreateFormFile("image", "query.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestSearchHandlerPassesFilters(t *testing.T) {
	stub := &stubSearchUC{res: usecase.NewSearchRes(nil)}
	handler := NewSearchHandler(stub, logger.NewSlogLogger())

	req := multipartSearchRequest(t, map[string]string{
		"limit":          "5",
		"category":       "accessory",
		"avatars":        "Manuka, Selestia",
		"colors":         "black",
		"excluded_shops": "bad-shop",
	}, tinyPNG)
	rec := httptest.NewRecorder()

	handler.search(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.req)
	assert.Equal(t, 5, stub.req.Limit)
	assert.Equal(t, "accessory", stub.req.Category)
	assert.Equal(t, []string{"Manuka", "Selestia"}, stub.req.Avatars)
	assert.Equal(t, []string{"black"}, stub.req.Colors)
	assert.Equal(t, []string{"bad-shop"}, stub.req.ExcludedShops)
	assert.Equal(t, tinyPNG, stub.req.ImageData)
}

func TestSearchHandlerRequiresImage(t *testing.T) {
	handler := NewSearchHandler(&stubSearchUC{}, logger.NewSlogLogger())

	rec := httptest.NewRecorder()
	handler.search(rec, multipartSearchRequest(t, nil, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandlerRejectsNonImagePayload(t *testing.T) {
	handler := NewSearchHandler(&stubSearchUC{}, logger.NewSlogLogger())

	rec := httptest.NewRecorder()
	handler.search(rec, multipartSearchRequest(t, nil, []byte("plain text, not an image")))

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestSearchHandlerIndexNotReady(t *testing.T) {
	stub := &stubSearchUC{err: e.Wrap("SearchUseCase.Search", e.ErrIndexNotReady)}
	handler := NewSearchHandler(stub, logger.NewSlogLogger())

	rec := httptest.NewRecorder()
	handler.search(rec, multipartSearchRequest(t, nil, tinyPNG))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestSearchHandlerRejectsNonMultipart(t *testing.T) {
	handler := NewSearchHandler(&stubSearchUC{}, logger.NewSlogLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.search(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusHandler(t *testing.T) {
	progress := domain.NewProgress()
	progress.Begin(10)
	progress.Advance(4, "item four")

	handler := NewStatusHandler(progress)
	rec := httptest.NewRecorder()
	handler.status(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var snap domain.ProgressSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 10, snap.Total)
	assert.Equal(t, 4, snap.Current)
	assert.Equal(t, "item four", snap.LastItem)
	assert.False(t, snap.IsComplete)
}

type stubOptOutUC struct {
	identifier string
	ids        []string
	err        error
}

func (s *stubOptOutUC) RegisterOptOut(ctx context.Context, identifier string) ([]string, error) {
	s.identifier = identifier
	return s.ids, s.err
}

func TestOptOutHandler(t *testing.T) {
	stub := &stubOptOutUC{ids: []string{"123", "neko-shop"}}
	handler := NewOptOutHandler(stub, logger.NewSlogLogger())

	body := bytes.NewBufferString(`{"identifier":"https://neko-shop.booth.pm/items/123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/opt-out", body)
	rec := httptest.NewRecorder()

	handler.optOut(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://neko-shop.booth.pm/items/123", stub.identifier)

	var resp OptOutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"123", "neko-shop"}, resp.Registered)
}

func TestOptOutHandlerBadJSON(t *testing.T) {
	handler := NewOptOutHandler(&stubOptOutUC{}, logger.NewSlogLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/opt-out", bytes.NewBufferString("not json"))
	rec := httptest.NewRecorder()

	handler.optOut(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
