package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

var testLimits = types.RecipeLimits{MinCookingTime: 1, MinIngredientAmount: 1}

// kitchen bundles the services most recipe tests need over one database.
type kitchen struct {
	db         *gorm.DB
	store      *testhelpers.MemoryObjectStore
	links      *service.ShortLinkGenerator
	recipes    *service.RecipeService
	membership *service.MembershipService

	author *models.User
	flour  *models.Ingredient
	milk   *models.Ingredient
	eggs   *models.Ingredient
	lunch  *models.Tag
	dinner *models.Tag
}

func newKitchen(t *testing.T) *kitchen {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)
	store := testhelpers.NewMemoryObjectStore()
	links := service.NewShortLinkGenerator(6)

	return &kitchen{
		db:         db,
		store:      store,
		links:      links,
		recipes:    service.NewRecipeService(db, links, service.NewImageService(store), testLimits),
		membership: service.NewMembershipService(db),
		author:     testhelpers.CreateUser(t, db, "chef"),
		flour:      testhelpers.CreateIngredient(t, db, "flour", "g"),
		milk:       testhelpers.CreateIngredient(t, db, "milk", "ml"),
		eggs:       testhelpers.CreateIngredient(t, db, "eggs", "pcs"),
		lunch:      testhelpers.CreateTag(t, db, "Lunch"),
		dinner:     testhelpers.CreateTag(t, db, "Dinner"),
	}
}

func (k *kitchen) request(name string, lines ...types.IngredientAmountRequest) types.RecipeWriteRequest {
	if len(lines) == 0 {
		lines = []types.IngredientAmountRequest{{ID: k.flour.ID, Amount: 200}, {ID: k.milk.ID, Amount: 300}}
	}
	return types.RecipeWriteRequest{
		Ingredients: lines,
		Tags:        []uint{k.lunch.ID},
		Image:       testhelpers.PNGDataURI,
		Name:        name,
		Text:        "Mix everything and cook.",
		CookingTime: 15,
	}
}

func (k *kitchen) create(t *testing.T, req types.RecipeWriteRequest) *models.Recipe {
	t.Helper()
	recipe, err := k.recipes.Create(context.Background(), k.author.ID, req)
	require.NoError(t, err)
	return recipe
}

func line(id uint, amount int) types.IngredientAmountRequest {
	return types.IngredientAmountRequest{ID: id, Amount: amount}
}
