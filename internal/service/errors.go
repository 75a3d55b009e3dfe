package service

import (
	"errors"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/models"
)

var (
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrTagNotFound        = errors.New("tag not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrShortLinkNotFound  = errors.New("short link not found")
	ErrNotRecipeAuthor    = errors.New("only the author can change this recipe")

	ErrSelfFollow       = models.ErrSelfFollow
	ErrAlreadyFollowing = errors.New("already subscribed to this user")
	ErrNotFollowing     = errors.New("not subscribed to this user")

	ErrAlreadyMember = errors.New("recipe is already in the set")
	ErrNotMember     = errors.New("recipe is not in the set")

	ErrInvalidCredentials = errors.New("unable to log in with the provided credentials")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token has been revoked")

	ErrInvalidImage  = errors.New("image must be a base64 encoded data URI")
	ErrImageTooLarge = errors.New("image is too large")

	// ErrBrokenShortLink means a stored recipe carries a token the
	// configured generator could not have produced.
	ErrBrokenShortLink = errors.New("recipe short link is missing or malformed")
)

// MembershipError reports a favorite/cart conflict for a specific set.
type MembershipError struct {
	Kind models.MembershipKind
	Err  error
}

func (e *MembershipError) Error() string {
	if errors.Is(e.Err, ErrAlreadyMember) {
		return fmt.Sprintf("recipe is already in %s", e.Kind.Label())
	}
	return fmt.Sprintf("recipe is not in %s", e.Kind.Label())
}

func (e *MembershipError) Unwrap() error {
	return e.Err
}
