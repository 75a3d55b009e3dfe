package types

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var limits = RecipeLimits{MinCookingTime: 1, MinIngredientAmount: 1}

func validRecipe() RecipeWriteRequest {
	return RecipeWriteRequest{
		Ingredients: []IngredientAmountRequest{{ID: 1, Amount: 200}, {ID: 2, Amount: 3}},
		Tags:        []uint{1, 2},
		Image:       "data:image/png;base64,iVBORw0KGgo=",
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
	}
}

func fieldErrors(t *testing.T, err error) validation.Errors {
	t.Helper()
	require.Error(t, err)
	errs, ok := err.(validation.Errors)
	require.True(t, ok, "expected validation.Errors, got %T", err)
	return errs
}

func TestRecipeWriteRequestValid(t *testing.T) {
	assert.NoError(t, validRecipe().Validate(limits, true))
}

func TestRecipeWriteRequestDuplicateIngredient(t *testing.T) {
	req := validRecipe()
	req.Ingredients = []IngredientAmountRequest{{ID: 7, Amount: 1}, {ID: 7, Amount: 5}}

	errs := fieldErrors(t, req.Validate(limits, true))
	require.Contains(t, errs, "ingredients")
	assert.Contains(t, errs["ingredients"].Error(), "more than once")
}

func TestRecipeWriteRequestReportsEveryField(t *testing.T) {
	req := RecipeWriteRequest{
		Tags:        []uint{3, 3},
		CookingTime: 0,
	}

	errs := fieldErrors(t, req.Validate(limits, true))
	for _, field := range []string{"ingredients", "tags", "image", "name", "text", "cooking_time"} {
		assert.Contains(t, errs, field)
	}
}

func TestRecipeWriteRequestAmountBelowMinimum(t *testing.T) {
	req := validRecipe()
	req.Ingredients[1].Amount = 4

	errs := fieldErrors(t, req.Validate(RecipeLimits{MinCookingTime: 1, MinIngredientAmount: 5}, true))
	require.Contains(t, errs, "ingredients")
	assert.Contains(t, errs["ingredients"].Error(), "amount must be at least 5")
}

func TestRecipeWriteRequestImageOptionalOnUpdate(t *testing.T) {
	req := validRecipe()
	req.Image = ""

	assert.NoError(t, req.Validate(limits, false))
	errs := fieldErrors(t, req.Validate(limits, true))
	assert.Contains(t, errs, "image")
}

func TestRegisterRequestValidate(t *testing.T) {
	ok := RegisterRequest{Email: "cook@example.com", Username: "cook", FirstName: "A", LastName: "B", Password: "longenough"}
	assert.NoError(t, ok.Validate())

	bad := RegisterRequest{Email: "nope", Username: "has space", Password: "short"}
	errs := fieldErrors(t, bad.Validate())
	for _, field := range []string{"email", "username", "first_name", "last_name", "password"} {
		assert.Contains(t, errs, field)
	}
}
