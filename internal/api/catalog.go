package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// CatalogHandler serves the read-only tag and ingredient lists.
type CatalogHandler struct {
	catalog service.ICatalogService
}

func NewCatalogHandler(catalog service.ICatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/tags", h.ListTags)
	router.GET("/tags/:id", h.GetTag)
	router.GET("/ingredients", h.ListIngredients)
	router.GET("/ingredients/:id", h.GetIngredient)
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.catalog.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]types.TagView, 0, len(tags))
	for _, t := range tags {
		views = append(views, types.NewTagView(t))
	}
	c.JSON(http.StatusOK, views)
}

func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	tag, err := h.catalog.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewTagView(*tag))
}

func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	filter := service.IngredientFilter{
		NamePrefix: c.Query("name"),
		Search:     c.Query("search"),
	}
	ingredients, err := h.catalog.ListIngredients(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]types.IngredientView, 0, len(ingredients))
	for _, i := range ingredients {
		views = append(views, types.NewIngredientView(i))
	}
	c.JSON(http.StatusOK, views)
}

func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	ingredient, err := h.catalog.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewIngredientView(*ingredient))
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		notFoundResponse(c)
		return 0, false
	}
	return uint(id), true
}
