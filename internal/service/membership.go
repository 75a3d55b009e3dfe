package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
)

// MembershipService manages the favorites and shopping cart sets. Both share
// one table keyed by kind.
type MembershipService struct {
	db *gorm.DB
}

var _ IMembershipService = (*MembershipService)(nil)

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// Add puts the recipe into the set and returns it for the compact view.
func (s *MembershipService) Add(ctx context.Context, kind models.MembershipKind, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.recipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	membership := models.RecipeMembership{Kind: kind, UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Omit("User", "Recipe").Create(&membership).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, &MembershipError{Kind: kind, Err: ErrAlreadyMember}
		}
		return nil, fmt.Errorf("add to %s: %w", kind.Label(), err)
	}
	return recipe, nil
}

func (s *MembershipService) Remove(ctx context.Context, kind models.MembershipKind, userID, recipeID uuid.UUID) error {
	if _, err := s.recipe(ctx, recipeID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("kind = ? AND user_id = ? AND recipe_id = ?", kind, userID, recipeID).
		Delete(&models.RecipeMembership{})
	if result.Error != nil {
		return fmt.Errorf("remove from %s: %w", kind.Label(), result.Error)
	}
	if result.RowsAffected == 0 {
		return &MembershipError{Kind: kind, Err: ErrNotMember}
	}
	return nil
}

func (s *MembershipService) recipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Select("id", "name", "image", "cooking_time").Take(&recipe, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}
