package service_test

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
)

func TestIngredientEmbedding(t *testing.T) {
	assert.Nil(t, service.IngredientEmbedding(nil))

	v := service.IngredientEmbedding([]uint{1, 2, 3})
	require.NotNil(t, v)
	values := v.Slice()
	assert.Len(t, values, models.EmbeddingDimensions)

	var norm float64
	for _, x := range values {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)

	assert.Equal(t, values, service.IngredientEmbedding([]uint{3, 1, 2}).Slice(), "order must not matter")
}

func TestSimilarRanksSharedIngredientsFirst(t *testing.T) {
	k := newKitchen(t)
	ctx := context.Background()
	similar := service.NewSimilarityService(k.db)

	source := k.create(t, k.request("Pancakes", line(k.flour.ID, 200), line(k.milk.ID, 300), line(k.eggs.ID, 2)))
	twin := k.create(t, k.request("Crepes", line(k.flour.ID, 100), line(k.milk.ID, 400), line(k.eggs.ID, 3)))
	k.create(t, k.request("Porridge", line(k.milk.ID, 250)))

	got, err := similar.Similar(ctx, source.ID, nil, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, twin.ID, got[0].ID)
	assert.Equal(t, "Porridge", got[1].Name)
	for _, r := range got {
		assert.NotEqual(t, source.ID, r.ID)
		assert.NotEmpty(t, r.Ingredients)
	}

	one, err := similar.Similar(ctx, source.ID, nil, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, twin.ID, one[0].ID)

	_, err = similar.Similar(ctx, uuid.New(), nil, 5)
	assert.ErrorIs(t, err, service.ErrRecipeNotFound)
}
