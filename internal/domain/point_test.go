package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveImageID(t *testing.T) {
	const ref = "raw_images/item_12345_1.jpg"

	first := DeriveImageID(ref)
	second := DeriveImageID(ref)
	assert.Equal(t, first, second, "same ref must derive the same ID")

	parsed, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, first, parsed.String())

	other := DeriveImageID("raw_images/item_12345_2.jpg")
	assert.NotEqual(t, first, other, "different refs must derive different IDs")
}

func TestNewPointPayloadDefaults(t *testing.T) {
	item := &Item{URL: "https://booth.pm/ja/items/1", Images: []string{"a.jpg"}}

	p := NewPointPayload(item, "/api/images/a.jpg")

	assert.Equal(t, "Unknown", p.Title)
	assert.Equal(t, "Unknown", p.Price)
	assert.Equal(t, "Unknown", p.ShopName)
	assert.Equal(t, "Unknown", p.Category)
	assert.Equal(t, "https://booth.pm/ja/items/1", p.BoothURL)
	assert.Equal(t, "/api/images/a.jpg", p.ThumbnailURL)
	assert.NotNil(t, p.Avatars)
	assert.Empty(t, p.Avatars)
	assert.NotNil(t, p.Colors)
	assert.Empty(t, p.Colors)
}

func TestNewPointPayloadMissingURL(t *testing.T) {
	p := NewPointPayload(&Item{Title: "шапка"}, "")
	assert.Equal(t, "#", p.BoothURL)
	assert.Equal(t, "шапка", p.Title)
}

func TestPointPayloadToMap(t *testing.T) {
	p := PointPayload{
		Title:        "Cat Ears",
		Price:        "500 JPY",
		ShopName:     "neko-shop",
		BoothURL:     "https://neko-shop.booth.pm/items/42",
		ThumbnailURL: "/api/images/item_42_1.jpg",
		Category:     "accessory",
		Avatars:      []string{"Manuka", "Selestia"},
		Colors:       []string{"black"},
	}

	m := p.ToMap()

	assert.Equal(t, "Cat Ears", m["title"])
	assert.Equal(t, "neko-shop", m["shopName"])
	assert.Equal(t, []any{"Manuka", "Selestia"}, m["avatars"])
	assert.Equal(t, []any{"black"}, m["colors"])
}

func TestItemIndexable(t *testing.T) {
	assert.True(t, (&Item{URL: "u", Images: []string{"a"}}).Indexable())
	assert.False(t, (&Item{Images: []string{"a"}}).Indexable())
	assert.False(t, (&Item{URL: "u"}).Indexable())
}
