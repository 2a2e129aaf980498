package qdrant

import (
	"context"

	"github.com/MametaroGG/BoothPic/internal/cfg"
	"github.com/MametaroGG/BoothPic/internal/domain"
	"github.com/MametaroGG/BoothPic/internal/usecase"
	"github.com/MametaroGG/BoothPic/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

const (
	fieldShopName = "shopName"
	fieldCategory = "category"
	fieldAvatars  = "avatars"
	fieldColors   = "colors"
)

// PointRepo репозиторий точек-изображений в Qdrant.
type PointRepo struct {
	client *qdrant.Client
	cfg    *cfg.QdrantCfg
}

func NewPointRepo(client *qdrant.Client, cfg *cfg.QdrantCfg) *PointRepo {
	return &PointRepo{
		client: client,
		cfg:    cfg,
	}
}

// Upsert сохраняет или обновляет батч точек в коллекции.
func (q *PointRepo) Upsert(ctx context.Context, points []domain.Point) error {
	reqPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		reqPoints = append(reqPoints, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(point.ID),
			Vectors: qdrant.NewVectors(point.Vector...),
			Payload: qdrant.NewValueMap(point.Payload.ToMap()),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Points:         reqPoints,
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// ScrollIDs постранично собирает ID всех точек коллекции, без векторов и
// payload. При ошибке возвращает уже собранную часть вместе с ошибкой:
// частичное множество пригодно для пропуска хотя бы его точек.
func (q *PointRepo) ScrollIDs(ctx context.Context) (map[string]struct{}, error) {
	ids := make(map[string]struct{})

	req := &qdrant.ScrollPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Limit:          qdrant.PtrOf(q.cfg.ScrollPageSize),
		WithPayload:    qdrant.NewWithPayload(false),
		WithVectors:    qdrant.NewWithVectors(false),
	}

	// Convenience-обёртка клиента не отдаёт курсор следующей страницы,
	// поэтому пагинация идёт через низкоуровневый points-клиент.
	for {
		resp, err := q.client.GetPointsClient().Scroll(ctx, req)
		if err != nil {
			return ids, e.Wrap(whereami.WhereAmI(), err)
		}

		for _, point := range resp.GetResult() {
			if id := point.GetId().GetUuid(); id != "" {
				ids[id] = struct{}{}
			}
		}

		offset := resp.GetNextPageOffset()
		if offset == nil {
			return ids, nil
		}
		req.Offset = offset
	}
}

// Query выполняет поиск ближайших соседей с фильтрацией по payload.
func (q *PointRepo) Query(ctx context.Context, vector []float32, limit uint64, filter *usecase.SearchFilter) ([]domain.ScoredPoint, error) {
	scored, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(limit),
		Filter:         toQdrantFilter(filter),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	points := make([]domain.ScoredPoint, 0, len(scored))
	for _, p := range scored {
		points = append(points, domain.ScoredPoint{
			ID:      p.GetId().GetUuid(),
			Score:   p.GetScore(),
			Payload: payloadFromValues(p.GetPayload()),
		})
	}

	return points, nil
}

// toQdrantFilter переводит фильтр поиска в условия Qdrant. Каждый
// запрошенный аватар и цвет — отдельное must-условие: точка обязана
// поддерживать их все, any-of работает только внутри её многозначного
// поля payload. Исключённые магазины уходят в must_not.
func toQdrantFilter(filter *usecase.SearchFilter) *qdrant.Filter {
	if filter.Empty() {
		return nil
	}

	var must []*qdrant.Condition
	if filter.Category != "" {
		must = append(must, qdrant.NewMatch(fieldCategory, filter.Category))
	}
	for _, avatar := range filter.Avatars {
		must = append(must, qdrant.NewMatchKeywords(fieldAvatars, avatar))
	}
	for _, color := range filter.Colors {
		must = append(must, qdrant.NewMatchKeywords(fieldColors, color))
	}

	var mustNot []*qdrant.Condition
	if len(filter.ExcludedShops) > 0 {
		mustNot = append(mustNot, qdrant.NewMatchKeywords(fieldShopName, filter.ExcludedShops...))
	}

	return &qdrant.Filter{
		Must:    must,
		MustNot: mustNot,
	}
}

func payloadFromValues(values map[string]*qdrant.Value) domain.PointPayload {
	return domain.PointPayload{
		Title:        values["title"].GetStringValue(),
		Price:        values["price"].GetStringValue(),
		ShopName:     values[fieldShopName].GetStringValue(),
		BoothURL:     values["boothUrl"].GetStringValue(),
		ThumbnailURL: values["thumbnailUrl"].GetStringValue(),
		Category:     values[fieldCategory].GetStringValue(),
		Avatars:      stringsFromValue(values[fieldAvatars]),
		Colors:       stringsFromValue(values[fieldColors]),
	}
}

func stringsFromValue(value *qdrant.Value) []string {
	list := value.GetListValue().GetValues()
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, v.GetStringValue())
	}
	return out
}
