package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
)

type UserView struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
	Avatar       *string   `json:"avatar"`
}

func NewUserView(u *models.User, subscribed bool) UserView {
	v := UserView{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
	if u.Avatar != "" {
		avatar := u.Avatar
		v.Avatar = &avatar
	}
	return v
}

// RegisteredUserView is returned right after sign-up.
type RegisteredUserView struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

func NewRegisteredUserView(u *models.User) RegisteredUserView {
	return RegisteredUserView{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

type TagView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func NewTagView(t models.Tag) TagView {
	return TagView{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

type IngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

func NewIngredientView(i models.Ingredient) IngredientView {
	return IngredientView{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

type RecipeIngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeView is the full read shape of a recipe for one viewer.
type RecipeView struct {
	ID               uuid.UUID              `json:"id"`
	Tags             []TagView              `json:"tags"`
	Author           UserView               `json:"author"`
	Ingredients      []RecipeIngredientView `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
	PubDate          time.Time              `json:"pub_date"`
}

// NewRecipeView expects Author, Tags and Ingredients.Ingredient to be loaded.
func NewRecipeView(r *models.Recipe, authorSubscribed bool) RecipeView {
	tags := make([]TagView, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, NewTagView(t))
	}
	ingredients := make([]RecipeIngredientView, 0, len(r.Ingredients))
	for _, line := range r.Ingredients {
		ingredients = append(ingredients, RecipeIngredientView{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		})
	}
	return RecipeView{
		ID:               r.ID,
		Tags:             tags,
		Author:           NewUserView(&r.Author, authorSubscribed),
		Ingredients:      ingredients,
		IsFavorited:      r.IsFavorited,
		IsInShoppingCart: r.IsInShoppingCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		PubDate:          r.CreatedAt,
	}
}

// RecipeMinifiedView is the compact shape used in memberships and subscriptions.
type RecipeMinifiedView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

func NewRecipeMinifiedView(r *models.Recipe) RecipeMinifiedView {
	return RecipeMinifiedView{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

// SubscriptionView is a followed author with a preview of their recipes.
type SubscriptionView struct {
	UserView
	Recipes      []RecipeMinifiedView `json:"recipes"`
	RecipesCount int64                `json:"recipes_count"`
}

type TokenView struct {
	AuthToken string `json:"auth_token"`
}

type AvatarView struct {
	Avatar string `json:"avatar"`
}

type ShortLinkView struct {
	ShortLink string `json:"short-link"`
}

// Page is the paginated list envelope.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
