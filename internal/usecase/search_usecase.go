package usecase

import (
	"context"
	"crypto/md5"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MametaroGG/BoothPic/internal/cfg"
	"github.com/MametaroGG/BoothPic/internal/domain"
	"github.com/MametaroGG/BoothPic/pkg/e"
	"github.com/MametaroGG/BoothPic/pkg/logger"
)

const (
	// overFetchFactor — во сколько раз больше кандидатов запрашивается у
	// Qdrant: у товара несколько изображений-точек, и после дедупликации
	// по товару сырых кандидатов должно хватить на limit разных товаров.
	overFetchFactor = 3

	defaultSearchLimit = 12
	maxSearchLimit     = 50

	cacheWriteTimeout = 500 * time.Millisecond
)

// SearchUseCase реализует поиск ближайших соседей с фильтрацией по payload
// и дедупликацией результатов до одного попадания на товар.
type SearchUseCase struct {
	embedder   EmbedderInfra
	normalizer ImageNormalizer
	pointRepo  PointRepository
	optOutRepo OptOutRepository
	cacheRepo  SearchCacheRepository
	progress   *domain.Progress
	logger     logger.Logger
	cfg        *cfg.QdrantCfg
}

func NewSearchUC(
	embedder EmbedderInfra,
	normalizer ImageNormalizer,
	pointRepo PointRepository,
	optOutRepo OptOutRepository,
	cacheRepo SearchCacheRepository,
	progress *domain.Progress,
	logger logger.Logger,
	cfg *cfg.QdrantCfg,
) *SearchUseCase {
	return &SearchUseCase{
		embedder:   embedder,
		normalizer: normalizer,
		pointRepo:  pointRepo,
		optOutRepo: optOutRepo,
		cacheRepo:  cacheRepo,
		progress:   progress,
		logger:     logger,
		cfg:        cfg,
	}
}

// Search векторизует изображение запроса и возвращает не больше req.Limit
// разных товаров, лучшее совпадение первым.
func (s *SearchUseCase) Search(ctx context.Context, req *SearchReq) (*SearchRes, error) {
	const op = "SearchUseCase.Search"

	if len(req.ImageData) == 0 {
		return nil, e.Wrap(op, e.ErrNoImage)
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultSearchLimit
	}
	if limit < 0 || limit > maxSearchLimit {
		return nil, e.Wrap(op, e.ErrInvalidLimit)
	}

	if !s.progress.Started() {
		return nil, e.Wrap(op, e.ErrIndexNotReady)
	}

	// Изображение запроса проходит ту же нормализацию, что и изображения
	// товаров при индексации, иначе эмбеддинги несопоставимы.
	img, err := s.normalizer.Normalize(req.ImageData)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	filter := s.buildFilter(ctx, req)

	cacheKey := searchCacheKey(img, limit, filter)
	if res, ok := s.cacheRepo.Get(ctx, cacheKey); ok {
		return res, nil
	}

	vec, err := s.embedder.Vectorize(ctx, img)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if uint64(len(vec.Vector)) != s.cfg.VectorSize {
		return nil, e.Wrap(op, e.ErrVectorSizeMismatch)
	}

	raw, err := s.pointRepo.Query(ctx, vec.Vector, uint64(limit*overFetchFactor), filter)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	res := NewSearchRes(dedupeByProduct(raw, limit))

	// Фоновая запись в кэш, ответ клиенту не ждёт Redis.
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()

		if err := s.cacheRepo.Set(bgCtx, cacheKey, res); err != nil {
			s.logger.Warnf("failed to cache search result: %v", e.Wrap(op, err))
		}
	}()

	return res, nil
}

// buildFilter собирает фильтр запроса, добавляя к исключениям клиента
// магазины из реестра opt-out. Недоступность реестра не фатальна.
func (s *SearchUseCase) buildFilter(ctx context.Context, req *SearchReq) *SearchFilter {
	excluded := append([]string(nil), req.ExcludedShops...)

	optedOut, err := s.optOutRepo.List(ctx)
	if err != nil {
		s.logger.Warnf("failed to load opted-out shops, searching without them: %v", err)
	} else {
		excluded = append(excluded, optedOut...)
	}

	filter := &SearchFilter{
		ExcludedShops: excluded,
		Category:      req.Category,
		Avatars:       req.Avatars,
		Colors:        req.Colors,
	}
	if filter.Empty() {
		return nil
	}

	return filter
}

// dedupeByProduct оставляет первое (лучшее) попадание каждого товара,
// сохраняя порядок ранжирования, и останавливается на limit товаров.
func dedupeByProduct(raw []domain.ScoredPoint, limit int) []SearchHit {
	hits := make([]SearchHit, 0, limit)
	seen := make(map[string]struct{}, limit)

	for _, p := range raw {
		if _, ok := seen[p.Payload.BoothURL]; ok {
			continue
		}
		seen[p.Payload.BoothURL] = struct{}{}
		hits = append(hits, NewSearchHit(p.ID, p.Score, p.Payload))
		if len(hits) >= limit {
			break
		}
	}

	return hits
}

// searchCacheKey — ключ кэша результатов: дайджест изображения запроса
// плюс канонизированный фильтр.
func searchCacheKey(imageData []byte, limit int, filter *SearchFilter) string {
	sum := md5.Sum(imageData)

	var sb strings.Builder
	fmt.Fprintf(&sb, "search:%x:%d", sum, limit)
	if !filter.Empty() {
		sb.WriteString(":x=")
		sb.WriteString(canonical(filter.ExcludedShops))
		sb.WriteString(":c=")
		sb.WriteString(filter.Category)
		sb.WriteString(":a=")
		sb.WriteString(canonical(filter.Avatars))
		sb.WriteString(":l=")
		sb.WriteString(canonical(filter.Colors))
	}

	return sb.String()
}

func canonical(values []string) string {
	if len(values) == 0 {
		return ""
	}
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
