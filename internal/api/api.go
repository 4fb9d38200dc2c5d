package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/queue"
	"github.com/tastebook/backend/internal/service"
)

// SetupAPI wires services and handlers under /api/v1. redisClient may be
// nil, which disables twist dispatch and rate limiting (tests, local runs
// without Redis).
func SetupAPI(router *gin.Engine, db *gorm.DB, redisClient *redis.Client, jwtSecret string, images *service.ImageService) {
	var notifier service.RecipeChangeNotifier
	var searchLimit gin.HandlerFunc
	if redisClient != nil {
		notifier = queue.New(redisClient)
		limiter := middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Window:    time.Minute,
			Limit:     30,
			KeyPrefix: "ratelimit:search",
		})
		searchLimit = limiter.Middleware()
	}

	authService := service.NewAuthService(db, jwtSecret)
	recipeService := service.NewRecipeService(db, notifier)

	authHandler := NewAuthHandler(authService)
	recipeHandler := NewRecipeHandler(recipeService, images, authService, searchLimit)
	ingredientHandler := NewIngredientHandler(db, authService)

	v1 := router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)
		recipeHandler.RegisterRoutes(v1)
		ingredientHandler.RegisterRoutes(v1)
	}
}
