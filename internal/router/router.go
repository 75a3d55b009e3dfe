package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Services bundles every service the HTTP layer talks to.
type Services struct {
	Auth         service.IAuthService
	Users        service.IUserService
	Follows      service.IFollowService
	Catalog      service.ICatalogService
	Recipes      service.IRecipeService
	Memberships  service.IMembershipService
	ShoppingList service.IShoppingListService
	ShortLinks   service.IShortLinkService
	Similarity   service.ISimilarityService
}

// NewServices wires the concrete services over db. redisClient may be nil, in
// which case logout does not revoke tokens.
func NewServices(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store service.ObjectStore) *Services {
	var revoker service.TokenRevoker
	if redisClient != nil {
		revoker = service.NewRedisRevoker(redisClient)
	}

	images := service.NewImageService(store)
	links := service.NewShortLinkGenerator(cfg.ShortLinkLength)
	limits := types.RecipeLimits{
		MinCookingTime:      cfg.MinCookingTime,
		MinIngredientAmount: cfg.MinIngredientAmount,
	}

	return &Services{
		Auth:         service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, revoker),
		Users:        service.NewUserService(db, images),
		Follows:      service.NewFollowService(db),
		Catalog:      service.NewCatalogService(db),
		Recipes:      service.NewRecipeService(db, links, images, limits),
		Memberships:  service.NewMembershipService(db),
		ShoppingList: service.NewShoppingListService(db),
		ShortLinks:   service.NewShortLinkService(db, links),
		Similarity:   service.NewSimilarityService(db),
	}
}

// New builds the gin engine with every route mounted.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, services *Services) *gin.Engine {
	gin.SetMode(cfg.Environment.GinMode())

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	guards := api.Guards{
		Required: middleware.AuthMiddleware(services.Auth),
		Optional: middleware.OptionalAuth(services.Auth),
	}
	if redisClient != nil && cfg.RecipeCreateLimit > 0 {
		guards.CreateLimit = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit).RateLimitMiddleware()
	}

	paginator := api.Paginator{
		DefaultLimit: cfg.PageSize,
		MaxLimit:     cfg.MaxPageSize,
		BaseURL:      cfg.PublicBaseURL,
	}

	api.NewHealthHandler(db, redisClient).RegisterRoutes(router)
	api.NewShortLinkHandler(services.ShortLinks, cfg.PublicBaseURL, cfg.NotFoundPath).RegisterRoutes(router)

	v1 := router.Group("/api/v1")
	api.NewAuthHandler(services.Auth).RegisterRoutes(v1, guards)
	api.NewUserHandler(services.Auth, services.Users, services.Follows, paginator).RegisterRoutes(v1, guards)
	api.NewCatalogHandler(services.Catalog).RegisterRoutes(v1)
	api.NewRecipeHandler(api.RecipeServices{
		Recipes:      services.Recipes,
		Memberships:  services.Memberships,
		ShoppingList: services.ShoppingList,
		ShortLinks:   services.ShortLinks,
		Similarity:   services.Similarity,
		Follows:      services.Follows,
	}, paginator).RegisterRoutes(v1, guards)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
