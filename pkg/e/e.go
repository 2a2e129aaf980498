package e

import "fmt"

var (
	// Внутренние ошибки с векторами
	ErrEmptyVector        = fmt.Errorf("empty vector")
	ErrVectorSizeMismatch = fmt.Errorf("vector size mismatch")

	// Ошибки обработки изображений
	ErrImageNotFound     = fmt.Errorf("image not found")
	ErrImageDecodeFailed = fmt.Errorf("image decode failed")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// 400 Bad Request
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data")
	ErrNoImage              = fmt.Errorf("no image provided")
	ErrFileTooLarge         = fmt.Errorf("file too large")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")
	ErrInvalidLimit         = fmt.Errorf("invalid limit")
	ErrEmptyShopIdentifier  = fmt.Errorf("empty shop identifier")

	// 503 Service Unavailable
	ErrIndexNotReady = fmt.Errorf("search index is still initializing")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
