package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// CartLine is one ingredient line of one recipe in a cart.
type CartLine struct {
	IngredientID    uint
	Name            string
	MeasurementUnit string
	Amount          int
}

// ShoppingListRow is a consolidated ingredient with its total amount.
type ShoppingListRow struct {
	Name   string
	Amount int
	Unit   string
}

type ShoppingListService struct {
	db *gorm.DB
}

var _ IShoppingListService = (*ShoppingListService)(nil)

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Build sums the ingredients of every recipe in the user's cart. Rows keep
// the order in which ingredients first show up, walking the cart in the
// order recipes were added.
func (s *ShoppingListService) Build(ctx context.Context, userID uuid.UUID) ([]ShoppingListRow, error) {
	var lines []CartLine
	err := s.db.WithContext(ctx).
		Table("recipe_memberships AS m").
		Select("ri.ingredient_id, i.name, i.measurement_unit, ri.amount").
		Joins("JOIN recipe_ingredients ri ON ri.recipe_id = m.recipe_id").
		Joins("JOIN ingredients i ON i.id = ri.ingredient_id").
		Where("m.kind = ? AND m.user_id = ?", models.ShoppingCart, userID).
		Order("m.created_at, m.id, ri.position").
		Scan(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return AggregateShoppingList(lines), nil
}

func AggregateShoppingList(lines []CartLine) []ShoppingListRow {
	rows := make([]ShoppingListRow, 0, len(lines))
	index := make(map[uint]int, len(lines))
	for _, line := range lines {
		if i, ok := index[line.IngredientID]; ok {
			rows[i].Amount += line.Amount
			continue
		}
		index[line.IngredientID] = len(rows)
		rows = append(rows, ShoppingListRow{
			Name:   line.Name,
			Amount: line.Amount,
			Unit:   line.MeasurementUnit,
		})
	}
	return rows
}

// WriteShoppingListCSV writes name,amount,unit records without a header.
func WriteShoppingListCSV(w io.Writer, rows []ShoppingListRow) error {
	cw := csv.NewWriter(w)
	for _, row := range rows {
		if err := cw.Write([]string{row.Name, strconv.Itoa(row.Amount), row.Unit}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
