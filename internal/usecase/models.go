package usecase

import "github.com/MametaroGG/BoothPic/internal/domain"

// SEARCH USECASE

// SearchReq — запрос поиска похожих товаров по изображению.
type SearchReq struct {
	ImageData     []byte
	Limit         int
	ExcludedShops []string
	Category      string
	Avatars       []string
	Colors        []string
}

// SearchHit — одна найденная точка с оценкой близости.
type SearchHit struct {
	ID      string              `json:"id"`
	Score   float32             `json:"score"`
	Payload domain.PointPayload `json:"payload"`
}

// SearchRes — ответ поиска: не больше одного попадания на товар.
type SearchRes struct {
	Results []SearchHit `json:"results"`
}

// SearchFilter — структурированный фильтр запроса к Qdrant.
type SearchFilter struct {
	ExcludedShops []string
	Category      string
	Avatars       []string
	Colors        []string
}

// Empty сообщает, накладывает ли фильтр хоть одно условие.
func (f *SearchFilter) Empty() bool {
	return f == nil ||
		(len(f.ExcludedShops) == 0 && f.Category == "" && len(f.Avatars) == 0 && len(f.Colors) == 0)
}

// INDEXER USECASE

// SeedReport — итог одного запуска индексации.
type SeedReport struct {
	Processed int  // обработано товаров
	Indexed   int  // новых точек отправлено в Qdrant
	Upserts   int  // выполнено батчевых upsert-ов
	EarlyExit bool // запуск прерван по порогу подряд проиндексированных товаров
}

// INFRASTRUCTURE

// VectorizeRes — результат векторизации одного изображения.
type VectorizeRes struct {
	Vector       []float32
	ModelVersion string
}

// ResolvedImage — нормализованное изображение, готовое к векторизации.
type ResolvedImage struct {
	Data         []byte // PNG после сведения к RGB
	ThumbnailURL string // публичная ссылка на превью
}

// ResolveResult — исход обработки одной ссылки на изображение:
// либо изображение, либо причина пропуска. Пропуск — не ошибка.
type ResolveResult struct {
	Image *ResolvedImage
	Skip  string
}

// MAPPERS

func NewSearchReq(imageData []byte, limit int, excludedShops []string, category string, avatars, colors []string) *SearchReq {
	return &SearchReq{
		ImageData:     imageData,
		Limit:         limit,
		ExcludedShops: excludedShops,
		Category:      category,
		Avatars:       avatars,
		Colors:        colors,
	}
}

func NewSearchHit(id string, score float32, payload domain.PointPayload) SearchHit {
	return SearchHit{
		ID:      id,
		Score:   score,
		Payload: payload,
	}
}

func NewSearchRes(results []SearchHit) *SearchRes {
	return &SearchRes{
		Results: results,
	}
}

func NewVectorizeRes(vector []float32, modelVersion string) *VectorizeRes {
	return &VectorizeRes{
		Vector:       vector,
		ModelVersion: modelVersion,
	}
}

func NewResolvedImage(data []byte, thumbnailURL string) *ResolvedImage {
	return &ResolvedImage{
		Data:         data,
		ThumbnailURL: thumbnailURL,
	}
}

func ResolveOK(img *ResolvedImage) ResolveResult {
	return ResolveResult{Image: img}
}

func ResolveSkip(reason string) ResolveResult {
	return ResolveResult{Skip: reason}
}
