package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
)

// ShortLinkHandler redirects /s/{token} to the recipe it names.
type ShortLinkHandler struct {
	links service.IShortLinkService
	// RecipeBase is prefixed to /api/v1/recipes/{id}; empty means the request host.
	RecipeBase string
	// NotFoundPath receives unknown tokens.
	NotFoundPath string
}

func NewShortLinkHandler(links service.IShortLinkService, recipeBase, notFoundPath string) *ShortLinkHandler {
	return &ShortLinkHandler{links: links, RecipeBase: recipeBase, NotFoundPath: notFoundPath}
}

func (h *ShortLinkHandler) RegisterRoutes(engine gin.IRoutes) {
	engine.GET("/s/:token", h.Redirect)
}

func (h *ShortLinkHandler) Redirect(c *gin.Context) {
	id, err := h.links.Resolve(c.Request.Context(), c.Param("token"))
	if errors.Is(err, service.ErrShortLinkNotFound) {
		c.Redirect(http.StatusFound, h.NotFoundPath)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, absoluteURL(c, h.RecipeBase, "/api/v1/recipes/"+id.String()))
}
