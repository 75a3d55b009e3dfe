package types

import (
	"errors"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
			validation.Length(3, 254),
		),
		validation.Field(&r.Username,
			validation.Required.Error("username is required"),
			validation.Length(1, 150),
			validation.Match(usernamePattern).Error("username may contain only letters, digits and @/./+/-/_"),
		),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be 8-128 characters"),
		),
	)
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password"`
	CurrentPassword string `json:"current_password"`
}

func (r SetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword,
			validation.Required,
			validation.Length(8, 128).Error("password must be 8-128 characters"),
		),
	)
}

// AvatarRequest carries a base64 data URI.
type AvatarRequest struct {
	Avatar string `json:"avatar"`
}

func (r AvatarRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Avatar, validation.Required.Error("avatar is required")),
	)
}

// RecipeLimits are the configured lower bounds for recipe fields.
type RecipeLimits struct {
	MinCookingTime      int
	MinIngredientAmount int
}

type IngredientAmountRequest struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeWriteRequest is the body of recipe create and update.
type RecipeWriteRequest struct {
	Ingredients []IngredientAmountRequest `json:"ingredients"`
	Tags        []uint                    `json:"tags"`
	Image       string                    `json:"image"`
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	CookingTime int                       `json:"cooking_time"`
}

// Validate checks every field and reports all failures keyed by field name.
// The image is only mandatory when creating.
func (r RecipeWriteRequest) Validate(limits RecipeLimits, requireImage bool) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Ingredients,
			validation.Required.Error("at least one ingredient is required"),
			validation.By(uniqueIngredients),
			validation.Each(validation.By(func(value interface{}) error {
				item, _ := value.(IngredientAmountRequest)
				return validation.ValidateStruct(&item,
					validation.Field(&item.ID, validation.Required.Error("ingredient id is required")),
					validation.Field(&item.Amount,
						validation.Required.Error(fmt.Sprintf("amount must be at least %d", limits.MinIngredientAmount)),
						validation.Min(limits.MinIngredientAmount).Error(fmt.Sprintf("amount must be at least %d", limits.MinIngredientAmount)),
					),
				)
			})),
		),
		validation.Field(&r.Tags,
			validation.Required.Error("at least one tag is required"),
			validation.By(uniqueTags),
		),
		validation.Field(&r.Image,
			validation.When(requireImage, validation.Required.Error("image is required")),
		),
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.RuneLength(1, 256),
		),
		validation.Field(&r.Text, validation.Required.Error("text is required")),
		validation.Field(&r.CookingTime,
			validation.Required.Error(fmt.Sprintf("cooking time must be at least %d", limits.MinCookingTime)),
			validation.Min(limits.MinCookingTime).Error(fmt.Sprintf("cooking time must be at least %d", limits.MinCookingTime)),
		),
	)
}

func uniqueIngredients(value interface{}) error {
	items, _ := value.([]IngredientAmountRequest)
	seen := make(map[uint]bool, len(items))
	for _, item := range items {
		if seen[item.ID] {
			return fmt.Errorf("ingredient %d is listed more than once", item.ID)
		}
		seen[item.ID] = true
	}
	return nil
}

func uniqueTags(value interface{}) error {
	ids, _ := value.([]uint)
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return errors.New("tags must not repeat")
		}
		seen[id] = true
	}
	return nil
}
