package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req types.LoginRequest) (string, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	SetPassword(ctx context.Context, userID uuid.UUID, req types.SetPasswordRequest) error
	GenerateToken(user *models.User) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// IUserService defines the interface for user profile operations
type IUserService interface {
	List(ctx context.Context, page PageRequest) ([]models.User, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetAvatar(ctx context.Context, userID uuid.UUID, dataURI string) (string, error)
	DeleteAvatar(ctx context.Context, userID uuid.UUID) error
}

// IFollowService defines the interface for the follow graph
type IFollowService interface {
	Follow(ctx context.Context, followerID, targetID uuid.UUID, recipesLimit int) (*Subscription, error)
	Unfollow(ctx context.Context, followerID, targetID uuid.UUID) error
	ListFollowing(ctx context.Context, userID uuid.UUID, page PageRequest, recipesLimit int) ([]Subscription, int64, error)
	FollowingSet(ctx context.Context, viewer *uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error)
}

// ICatalogService defines the interface for tag and ingredient reference data
type ICatalogService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
	ListIngredients(ctx context.Context, filter IngredientFilter) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
	ImportIngredients(ctx context.Context, items []models.Ingredient) (int64, error)
	ImportTags(ctx context.Context, items []models.Tag) (int64, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Create(ctx context.Context, authorID uuid.UUID, req types.RecipeWriteRequest) (*models.Recipe, error)
	Update(ctx context.Context, id, editorID uuid.UUID, req types.RecipeWriteRequest) (*models.Recipe, error)
	Delete(ctx context.Context, id, editorID uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*models.Recipe, error)
	List(ctx context.Context, filter RecipeFilter, viewer *uuid.UUID, page PageRequest) ([]models.Recipe, int64, error)
}

// IMembershipService defines the interface for favorites and the shopping cart
type IMembershipService interface {
	Add(ctx context.Context, kind models.MembershipKind, userID, recipeID uuid.UUID) (*models.Recipe, error)
	Remove(ctx context.Context, kind models.MembershipKind, userID, recipeID uuid.UUID) error
}

// IShoppingListService builds the consolidated shopping list of a cart
type IShoppingListService interface {
	Build(ctx context.Context, userID uuid.UUID) ([]ShoppingListRow, error)
}

// IShortLinkService resolves and renders recipe short links
type IShortLinkService interface {
	Resolve(ctx context.Context, token string) (uuid.UUID, error)
	TokenFor(ctx context.Context, recipeID uuid.UUID) (string, error)
}

// ISimilarityService finds recipes with a similar ingredient composition
type ISimilarityService interface {
	Similar(ctx context.Context, recipeID uuid.UUID, viewer *uuid.UUID, limit int) ([]models.Recipe, error)
}

// TokenRevoker remembers logged out tokens until they expire
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ImageStore persists uploaded images and hands back their public URL
type ImageStore interface {
	Save(ctx context.Context, folder, dataURI string) (string, error)
	Remove(ctx context.Context, url string) error
}

// PageRequest is a 1-based page with its size.
type PageRequest struct {
	Page  int
	Limit int
}

func (p PageRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}
