package embedder

import (
	"context"
	"fmt"
	"time"

	"github.com/MametaroGG/BoothPic/internal/proto"
	"github.com/MametaroGG/BoothPic/internal/usecase"
	"github.com/MametaroGG/BoothPic/pkg/e"
	"github.com/MametaroGG/BoothPic/pkg/jitter"
	"github.com/MametaroGG/BoothPic/pkg/logger"
)

// EmbedderService клиент CLIP-сервиса векторизации изображений.
// Ограничивает число одновременных RPC общим семафором: воркеры индексации
// и поисковые запросы делят один канал к модели.
type EmbedderService struct {
	client     proto.EmbedderClient
	sem        chan struct{}
	maxRetries int
	logger     logger.Logger
}

func NewEmbedderService(client proto.EmbedderClient, maxConcurrent int, maxRetries int, logger logger.Logger) *EmbedderService {
	return &EmbedderService{
		client:     client,
		sem:        make(chan struct{}, maxConcurrent),
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Vectorize выполняет векторизацию одного изображения с retry-логикой и
// экспоненциальной задержкой.
func (s *EmbedderService) Vectorize(ctx context.Context, imageData []byte) (*usecase.VectorizeRes, error) {
	const (
		op         = "EmbedderService.Vectorize"
		baseJitter = 1 * time.Second
		maxJitter  = 30 * time.Second
	)

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		return nil, e.Wrap(op, ctx.Err())
	}

	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			sleepTime := jitter.ExponentialBackoff(
				baseJitter,
				maxJitter,
				attempt-1,
				jitter.DefaultJitter,
			)

			s.logger.Warnf("vectorization failed, retrying in %v (attempt %d): %v", sleepTime, attempt+1, lastErr)
			select {
			case <-time.After(sleepTime):
			case <-ctx.Done():
				return nil, e.Wrap(op, ctx.Err())
			}
		}

		res, err := s.client.Vectorize(ctx, &proto.VectorizeRequest{ImageData: imageData})
		if err != nil {
			lastErr = err
			continue
		}

		if len(res.Vector) == 0 {
			return nil, e.Wrap(op, e.ErrEmptyVector)
		}

		return usecase.NewVectorizeRes(res.Vector, res.ModelVersion), nil
	}

	return nil, e.Wrap(op, fmt.Errorf("all %d attempts failed: %w", s.maxRetries, lastErr))
}
