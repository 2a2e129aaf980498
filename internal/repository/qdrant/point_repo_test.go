package qdrant

import (
	"testing"

	"github.com/MametaroGG/BoothPic/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToQdrantFilterEmpty(t *testing.T) {
	assert.Nil(t, toQdrantFilter(nil))
	assert.Nil(t, toQdrantFilter(&usecase.SearchFilter{}))
}

func TestToQdrantFilterConditions(t *testing.T) {
	filter := toQdrantFilter(&usecase.SearchFilter{
		ExcludedShops: []string{"bad-shop", "worse-shop"},
		Category:      "accessory",
		Avatars:       []string{"Manuka"},
		Colors:        []string{"black", "white"},
	})
	require.NotNil(t, filter)

	require.Len(t, filter.Must, 4)
	assert.Equal(t, fieldCategory, filter.Must[0].GetField().GetKey())
	assert.Equal(t, "accessory", filter.Must[0].GetField().GetMatch().GetKeyword())
	assert.Equal(t, fieldAvatars, filter.Must[1].GetField().GetKey())
	assert.Equal(t, []string{"Manuka"}, filter.Must[1].GetField().GetMatch().GetKeywords().GetStrings())
	assert.Equal(t, fieldColors, filter.Must[2].GetField().GetKey())
	assert.Equal(t, []string{"black"}, filter.Must[2].GetField().GetMatch().GetKeywords().GetStrings())
	assert.Equal(t, fieldColors, filter.Must[3].GetField().GetKey())
	assert.Equal(t, []string{"white"}, filter.Must[3].GetField().GetMatch().GetKeywords().GetStrings())

	require.Len(t, filter.MustNot, 1)
	assert.Equal(t, fieldShopName, filter.MustNot[0].GetField().GetKey())
	assert.Equal(t, []string{"bad-shop", "worse-shop"}, filter.MustNot[0].GetField().GetMatch().GetKeywords().GetStrings())
}

func TestToQdrantFilterRequiresEveryRequestedAvatar(t *testing.T) {
	// Товар должен поддерживать каждый запрошенный аватар: два аватара
	// дают два must-условия, а не одно any-of по обоим.
	filter := toQdrantFilter(&usecase.SearchFilter{
		Avatars: []string{"Manuka", "Selestia"},
	})
	require.NotNil(t, filter)

	require.Len(t, filter.Must, 2)
	assert.Equal(t, []string{"Manuka"}, filter.Must[0].GetField().GetMatch().GetKeywords().GetStrings())
	assert.Equal(t, []string{"Selestia"}, filter.Must[1].GetField().GetMatch().GetKeywords().GetStrings())
}

func TestToQdrantFilterOnlyExclusions(t *testing.T) {
	filter := toQdrantFilter(&usecase.SearchFilter{ExcludedShops: []string{"bad-shop"}})
	require.NotNil(t, filter)
	assert.Empty(t, filter.Must)
	assert.Len(t, filter.MustNot, 1)
}
