package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type UserHandler struct {
	authService   service.IAuthService
	userService   service.IUserService
	followService service.IFollowService
	paginator     Paginator
}

func NewUserHandler(authService service.IAuthService, userService service.IUserService, followService service.IFollowService, paginator Paginator) *UserHandler {
	return &UserHandler{
		authService:   authService,
		userService:   userService,
		followService: followService,
		paginator:     paginator,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, guards Guards) {
	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", guards.Optional, h.List)
		users.GET("/me", guards.Required, h.Me)
		users.PUT("/me/avatar", guards.Required, h.SetAvatar)
		users.DELETE("/me/avatar", guards.Required, h.DeleteAvatar)
		users.POST("/set_password", guards.Required, h.SetPassword)
		users.GET("/subscriptions", guards.Required, h.Subscriptions)
		users.GET("/:id", guards.Optional, h.Get)
		users.POST("/:id/subscribe", guards.Required, h.Subscribe)
		users.DELETE("/:id/subscribe", guards.Required, h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewRegisteredUserView(user))
}

func (h *UserHandler) List(c *gin.Context) {
	page, ok := h.paginator.Request(c)
	if !ok {
		return
	}

	users, total, err := h.userService.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}

	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	following, err := h.followService.FollowingSet(c.Request.Context(), middleware.Viewer(c), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]types.UserView, 0, len(users))
	for i := range users {
		views = append(views, types.NewUserView(&users[i], following[users[i].ID]))
	}
	c.JSON(http.StatusOK, newPage(c, h.paginator, page, total, views))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	following, err := h.followService.FollowingSet(c.Request.Context(), middleware.Viewer(c), []uuid.UUID{id})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewUserView(user, following[id]))
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewUserView(user, false))
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	var req types.AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	url, err := h.userService.SetAvatar(c.Request.Context(), userID, req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.AvatarView{Avatar: url})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	if err := h.userService.DeleteAvatar(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	if err := h.authService.SetPassword(c.Request.Context(), userID, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	page, ok := h.paginator.Request(c)
	if !ok {
		return
	}
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	subs, total, err := h.followService.ListFollowing(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]types.SubscriptionView, 0, len(subs))
	for i := range subs {
		views = append(views, newSubscriptionView(&subs[i]))
	}
	c.JSON(http.StatusOK, newPage(c, h.paginator, page, total, views))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	targetID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	sub, err := h.followService.Follow(c.Request.Context(), userID, targetID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSubscriptionView(sub))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	targetID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	if err := h.followService.Unfollow(c.Request.Context(), userID, targetID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func recipesLimit(c *gin.Context) (int, bool) {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		badRequest(c, "recipes_limit must be a non-negative integer")
		return 0, false
	}
	return limit, true
}

func newSubscriptionView(sub *service.Subscription) types.SubscriptionView {
	recipes := make([]types.RecipeMinifiedView, 0, len(sub.Recipes))
	for i := range sub.Recipes {
		recipes = append(recipes, types.NewRecipeMinifiedView(&sub.Recipes[i]))
	}
	return types.SubscriptionView{
		UserView:     types.NewUserView(&sub.User, true),
		Recipes:      recipes,
		RecipesCount: sub.RecipesCount,
	}
}
