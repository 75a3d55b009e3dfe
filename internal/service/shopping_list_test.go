package service_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
)

func TestAggregateShoppingListSumsByIngredient(t *testing.T) {
	lines := []service.CartLine{
		{IngredientID: 2, Name: "sugar", MeasurementUnit: "g", Amount: 50},
		{IngredientID: 1, Name: "flour", MeasurementUnit: "g", Amount: 200},
		{IngredientID: 2, Name: "sugar", MeasurementUnit: "g", Amount: 25},
		{IngredientID: 3, Name: "milk", MeasurementUnit: "ml", Amount: 300},
		{IngredientID: 1, Name: "flour", MeasurementUnit: "g", Amount: 100},
	}

	want := []service.ShoppingListRow{
		{Name: "sugar", Amount: 75, Unit: "g"},
		{Name: "flour", Amount: 300, Unit: "g"},
		{Name: "milk", Amount: 300, Unit: "ml"},
	}
	if diff := cmp.Diff(want, service.AggregateShoppingList(lines)); diff != "" {
		t.Errorf("AggregateShoppingList() mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateShoppingListTotalsMatchInput(t *testing.T) {
	lines := []service.CartLine{
		{IngredientID: 1, Name: "a", Amount: 3},
		{IngredientID: 2, Name: "b", Amount: 4},
		{IngredientID: 1, Name: "a", Amount: 5},
		{IngredientID: 3, Name: "c", Amount: 1},
		{IngredientID: 2, Name: "b", Amount: 9},
	}

	want := map[string]int{}
	for _, l := range lines {
		want[l.Name] += l.Amount
	}
	got := map[string]int{}
	for _, row := range service.AggregateShoppingList(lines) {
		_, dup := got[row.Name]
		assert.False(t, dup, "ingredient %s listed twice", row.Name)
		got[row.Name] = row.Amount
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("totals mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteShoppingListCSV(t *testing.T) {
	var buf bytes.Buffer
	err := service.WriteShoppingListCSV(&buf, []service.ShoppingListRow{
		{Name: "flour", Amount: 300, Unit: "g"},
		{Name: "salt, coarse", Amount: 5, Unit: "g"},
	})
	require.NoError(t, err)
	assert.Equal(t, "flour,300,g\n\"salt, coarse\",5,g\n", buf.String())

	buf.Reset()
	require.NoError(t, service.WriteShoppingListCSV(&buf, nil))
	assert.Zero(t, buf.Len())
}

func TestBuildShoppingList(t *testing.T) {
	k := newKitchen(t)
	ctx := context.Background()
	lists := service.NewShoppingListService(k.db)

	pancakes := k.create(t, k.request("Pancakes", line(k.flour.ID, 200), line(k.milk.ID, 300)))
	omelette := k.create(t, k.request("Omelette", line(k.eggs.ID, 3), line(k.milk.ID, 50)))
	k.create(t, k.request("Not in cart", line(k.flour.ID, 1000)))

	_, err := k.membership.Add(ctx, models.ShoppingCart, k.author.ID, pancakes.ID)
	require.NoError(t, err)
	_, err = k.membership.Add(ctx, models.ShoppingCart, k.author.ID, omelette.ID)
	require.NoError(t, err)
	// favorites never leak into the list
	_, err = k.membership.Add(ctx, models.Favorite, k.author.ID, omelette.ID)
	require.NoError(t, err)

	rows, err := lists.Build(ctx, k.author.ID)
	require.NoError(t, err)

	want := []service.ShoppingListRow{
		{Name: "flour", Amount: 200, Unit: "g"},
		{Name: "milk", Amount: 350, Unit: "ml"},
		{Name: "eggs", Amount: 3, Unit: "pcs"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildShoppingListEmptyCart(t *testing.T) {
	k := newKitchen(t)
	k.create(t, k.request("Pancakes"))

	rows, err := service.NewShoppingListService(k.db).Build(context.Background(), k.author.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	var buf bytes.Buffer
	require.NoError(t, service.WriteShoppingListCSV(&buf, rows))
	assert.Zero(t, buf.Len())
}
