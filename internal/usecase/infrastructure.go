package usecase

import (
	"context"

	"github.com/MametaroGG/BoothPic/internal/domain"
)

type EmbedderInfra interface {
	Vectorize(ctx context.Context, imageData []byte) (*VectorizeRes, error)
}

type ImageNormalizer interface {
	// Normalize приводит изображение запроса к тому же виду, в котором
	// векторизовались изображения товаров.
	Normalize(data []byte) ([]byte, error)
}

type FeedLoader interface {
	// Load возвращает дедуплицированные записи фида от новых к старым.
	// found=false означает отсутствие фида — штатное пустое состояние.
	Load(ctx context.Context) (items []domain.Item, found bool, err error)
}

type ImageFetcher interface {
	// Resolve скачивает или находит изображение и нормализует его до RGB.
	// Любой сбой превращается в пропуск, не в ошибку.
	Resolve(ctx context.Context, imageRef string) ResolveResult
}

type IndexEventProducer interface {
	BatchFlushed(ctx context.Context, runID int64, points int) error
	RunCompleted(ctx context.Context, runID int64, report *SeedReport) error
}

type OptOutEventProducer interface {
	// OptOutRegistered уведомляет операторов о новом исключённом магазине.
	OptOutRegistered(ctx context.Context, identifier string, identifiers []string) error
}
