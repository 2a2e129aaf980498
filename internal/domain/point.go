package domain

import (
	"crypto/md5"

	"github.com/google/uuid"
)

const (
	unknownField = "Unknown"
	missingBooth = "#"
)

// DeriveImageID детерминированно выводит идентификатор точки из ссылки на
// изображение: md5 от UTF-8 байтов ссылки, интерпретированный как UUID.
// Один и тот же путь всегда даёт один и тот же ID — это и есть механизм
// идемпотентной индексации между запусками.
func DeriveImageID(imageRef string) string {
	sum := md5.Sum([]byte(imageRef))
	return uuid.UUID(sum).String()
}

// PointPayload — структурированный payload точки в Qdrant.
type PointPayload struct {
	Title        string   `json:"title"`
	Price        string   `json:"price"`
	ShopName     string   `json:"shopName"`
	BoothURL     string   `json:"boothUrl"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	Category     string   `json:"category"`
	Avatars      []string `json:"avatars"`
	Colors       []string `json:"colors"`
}

// NewPointPayload собирает payload из записи фида, подставляя значения
// по умолчанию для отсутствующих полей.
func NewPointPayload(item *Item, thumbnailURL string) PointPayload {
	p := PointPayload{
		Title:        item.Title,
		Price:        item.Price,
		ShopName:     item.Shop,
		BoothURL:     item.URL,
		ThumbnailURL: thumbnailURL,
		Category:     item.Category,
		Avatars:      item.Avatars,
		Colors:       item.Colors,
	}

	if p.Title == "" {
		p.Title = unknownField
	}
	if p.Price == "" {
		p.Price = unknownField
	}
	if p.ShopName == "" {
		p.ShopName = unknownField
	}
	if p.BoothURL == "" {
		p.BoothURL = missingBooth
	}
	if p.Category == "" {
		p.Category = unknownField
	}
	if p.Avatars == nil {
		p.Avatars = []string{}
	}
	if p.Colors == nil {
		p.Colors = []string{}
	}

	return p
}

// ToMap разворачивает payload в map для клиента Qdrant.
// Списки приводятся к []any, иначе конвертер значений их не принимает.
func (p PointPayload) ToMap() map[string]any {
	return map[string]any{
		"title":        p.Title,
		"price":        p.Price,
		"shopName":     p.ShopName,
		"boothUrl":     p.BoothURL,
		"thumbnailUrl": p.ThumbnailURL,
		"category":     p.Category,
		"avatars":      toAnySlice(p.Avatars),
		"colors":       toAnySlice(p.Colors),
	}
}

func toAnySlice(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

// Point описывает запись в Qdrant: одна точка на одно изображение товара.
type Point struct {
	ID      string
	Vector  []float32
	Payload PointPayload
}

func NewPoint(id string, vector []float32, payload PointPayload) *Point {
	return &Point{
		ID:      id,
		Vector:  vector,
		Payload: payload,
	}
}

// ScoredPoint — точка с оценкой близости из результата поиска.
type ScoredPoint struct {
	ID      string
	Score   float32
	Payload PointPayload
}
