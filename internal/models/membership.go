package models

import (
	"time"

	"github.com/google/uuid"
)

// MembershipKind names one of the per-user recipe sets.
type MembershipKind string

const (
	Favorite     MembershipKind = "favorite"
	ShoppingCart MembershipKind = "shopping_cart"
)

// Label is the human readable name of the set.
func (k MembershipKind) Label() string {
	switch k {
	case Favorite:
		return "favorites"
	case ShoppingCart:
		return "shopping cart"
	default:
		return string(k)
	}
}

func (k MembershipKind) Valid() bool {
	return k == Favorite || k == ShoppingCart
}

// RecipeMembership marks a recipe as part of a user's favorites or cart.
type RecipeMembership struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Kind      MembershipKind `gorm:"size:16;not null;uniqueIndex:idx_membership,priority:1" json:"kind"`
	UserID    uuid.UUID      `gorm:"type:varchar(36);not null;uniqueIndex:idx_membership,priority:2" json:"user_id"`
	RecipeID  uuid.UUID      `gorm:"type:varchar(36);not null;uniqueIndex:idx_membership,priority:3;index" json:"recipe_id"`
	User      User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe    Recipe         `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}
