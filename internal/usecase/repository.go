package usecase

import (
	"context"

	"github.com/MametaroGG/BoothPic/internal/domain"
)

type PointRepository interface {
	// Upsert сохраняет батч точек. Ошибка фатальна для запуска индексации.
	Upsert(ctx context.Context, points []domain.Point) error
	// ScrollIDs возвращает ID всех точек коллекции. При ошибке возвращает
	// частично собранное множество вместе с ошибкой.
	ScrollIDs(ctx context.Context) (map[string]struct{}, error)
	Query(ctx context.Context, vector []float32, limit uint64, filter *SearchFilter) ([]domain.ScoredPoint, error)
}

type RunRepository interface {
	CreateRun(ctx context.Context) (int64, error)
	FinishRun(ctx context.Context, runID int64, report *SeedReport) error
}

type OptOutRepository interface {
	Add(ctx context.Context, identifiers []string) error
	List(ctx context.Context) ([]string, error)
}

type SearchCacheRepository interface {
	Get(ctx context.Context, key string) (*SearchRes, bool)
	Set(ctx context.Context, key string, res *SearchRes) error
}
