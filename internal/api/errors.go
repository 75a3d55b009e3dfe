package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/internal/service"
)

var notFound = []error{
	service.ErrRecipeNotFound,
	service.ErrUserNotFound,
	service.ErrTagNotFound,
	service.ErrIngredientNotFound,
	service.ErrShortLinkNotFound,
}

// respondError maps service errors onto HTTP responses. Anything it does not
// recognise is logged and hidden behind a 500.
func respondError(c *gin.Context, err error) {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		c.JSON(http.StatusBadRequest, fieldErrs)
		return
	}

	var membershipErr *service.MembershipError
	if errors.As(err, &membershipErr) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": membershipErr.Error()})
		return
	}

	switch {
	case errors.Is(err, service.ErrSelfFollow),
		errors.Is(err, service.ErrAlreadyFollowing),
		errors.Is(err, service.ErrNotFollowing):
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidImage),
		errors.Is(err, service.ErrImageTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenRevoked):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrNotRecipeAuthor):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrBrokenShortLink):
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("stored short link is unusable")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	for _, target := range notFound {
		if errors.Is(err, target) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
	}

	log.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func notFoundResponse(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}
