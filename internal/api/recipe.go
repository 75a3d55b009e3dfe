package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeServices groups what the recipe endpoints depend on.
type RecipeServices struct {
	Recipes      service.IRecipeService
	Memberships  service.IMembershipService
	ShoppingList service.IShoppingListService
	ShortLinks   service.IShortLinkService
	Similarity   service.ISimilarityService
	Follows      service.IFollowService
}

type RecipeHandler struct {
	services  RecipeServices
	paginator Paginator
}

func NewRecipeHandler(services RecipeServices, paginator Paginator) *RecipeHandler {
	return &RecipeHandler{services: services, paginator: paginator}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, guards Guards) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", guards.Optional, h.ListRecipes)
		recipes.POST("", chain(guards.Required, guards.CreateLimit, h.CreateRecipe)...)
		recipes.GET("/download_shopping_cart", guards.Required, h.DownloadShoppingCart)
		recipes.GET("/:id", guards.Optional, h.GetRecipe)
		recipes.PATCH("/:id", guards.Required, h.UpdateRecipe)
		recipes.DELETE("/:id", guards.Required, h.DeleteRecipe)
		recipes.GET("/:id/get-link", h.GetLink)
		recipes.GET("/:id/similar", guards.Optional, h.SimilarRecipes)
		recipes.POST("/:id/favorite", guards.Required, h.addTo(models.Favorite))
		recipes.DELETE("/:id/favorite", guards.Required, h.removeFrom(models.Favorite))
		recipes.POST("/:id/shopping_cart", guards.Required, h.addTo(models.ShoppingCart))
		recipes.DELETE("/:id/shopping_cart", guards.Required, h.removeFrom(models.ShoppingCart))
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, ok := h.paginator.Request(c)
	if !ok {
		return
	}

	filter := service.RecipeFilter{
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
	}
	if raw := c.Query("author"); raw != "" {
		authorID, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "author must be a user id")
			return
		}
		filter.AuthorID = &authorID
	}

	viewer := middleware.Viewer(c)
	recipes, total, err := h.services.Recipes.List(c.Request.Context(), filter, viewer, page)
	if err != nil {
		respondError(c, err)
		return
	}
	views, err := h.recipeViews(c, viewer, recipes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, h.paginator, page, total, views))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	viewer := middleware.Viewer(c)
	recipe, err := h.services.Recipes.Get(c.Request.Context(), id, viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondRecipe(c, http.StatusOK, viewer, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	recipe, err := h.services.Recipes.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondRecipe(c, http.StatusCreated, &userID, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req types.RecipeWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	recipe, err := h.services.Recipes.Update(c.Request.Context(), id, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondRecipe(c, http.StatusOK, &userID, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	if err := h.services.Recipes.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	token, err := h.services.ShortLinks.TokenFor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ShortLinkView{ShortLink: absoluteURL(c, h.paginator.BaseURL, "/s/"+token)})
}

func (h *RecipeHandler) SimilarRecipes(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	limit := 6
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if h.paginator.MaxLimit > 0 && limit > h.paginator.MaxLimit {
		limit = h.paginator.MaxLimit
	}

	viewer := middleware.Viewer(c)
	recipes, err := h.services.Similarity.Similar(c.Request.Context(), id, viewer, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	views, err := h.recipeViews(c, viewer, recipes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *RecipeHandler) addTo(kind models.MembershipKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		userID, _ := middleware.CurrentUserID(c)
		recipe, err := h.services.Memberships.Add(c.Request.Context(), kind, userID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, types.NewRecipeMinifiedView(recipe))
	}
}

func (h *RecipeHandler) removeFrom(kind models.MembershipKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		userID, _ := middleware.CurrentUserID(c)
		if err := h.services.Memberships.Remove(c.Request.Context(), kind, userID, id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	rows, err := h.services.ShoppingList.Build(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := service.WriteShoppingListCSV(&buf, rows); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="shopping_list.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *RecipeHandler) respondRecipe(c *gin.Context, status int, viewer *uuid.UUID, recipe *models.Recipe) {
	following, err := h.services.Follows.FollowingSet(c.Request.Context(), viewer, []uuid.UUID{recipe.AuthorID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, types.NewRecipeView(recipe, following[recipe.AuthorID]))
}

func (h *RecipeHandler) recipeViews(c *gin.Context, viewer *uuid.UUID, recipes []models.Recipe) ([]types.RecipeView, error) {
	authors := make([]uuid.UUID, 0, len(recipes))
	for _, r := range recipes {
		authors = append(authors, r.AuthorID)
	}
	following, err := h.services.Follows.FollowingSet(c.Request.Context(), viewer, authors)
	if err != nil {
		return nil, err
	}

	views := make([]types.RecipeView, 0, len(recipes))
	for i := range recipes {
		views = append(views, types.NewRecipeView(&recipes[i], following[recipes[i].AuthorID]))
	}
	return views, nil
}

func queryFlag(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "1", "true", "True":
		return true
	default:
		return false
	}
}
