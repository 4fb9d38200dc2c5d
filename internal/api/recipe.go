package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/service"
)

const maxImageBytes = 5 << 20

type RecipeHandler struct {
	recipes     *service.RecipeService
	images      *service.ImageService
	authService *service.AuthService
	searchLimit gin.HandlerFunc
}

// NewRecipeHandler creates a new RecipeHandler. images may be nil when no
// S3 storage is configured; searchLimit may be nil when no limiter is
// wired (tests).
func NewRecipeHandler(recipes *service.RecipeService, images *service.ImageService, authService *service.AuthService, searchLimit gin.HandlerFunc) *RecipeHandler {
	return &RecipeHandler{
		recipes:     recipes,
		images:      images,
		authService: authService,
		searchLimit: searchLimit,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.GET("/:id/similar", h.SimilarRecipes)
		if h.searchLimit != nil {
			recipes.POST("/search", h.searchLimit, h.SearchRecipes)
		} else {
			recipes.POST("/search", h.SearchRecipes)
		}
		recipes.POST("", middleware.AuthMiddleware(h.authService), h.CreateRecipe)
		recipes.PUT("/:id", middleware.AuthMiddleware(h.authService), h.UpdateRecipe)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.authService), h.DeleteRecipe)
		recipes.POST("/:id/image", middleware.AuthMiddleware(h.authService), h.UploadImage)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var ownerID *uuid.UUID
	if owner := c.Query("owner"); owner != "" {
		id, err := uuid.Parse(owner)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid owner id"})
			return
		}
		ownerID = &id
	}

	recipes, err := h.recipes.ListRecipes(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// SearchRecipes filters recipes by name, time bucket and ingredient sets,
// attaching matching/missing ingredient metadata when a required set was
// supplied.
func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.recipes.SearchAndFilter(c.Request.Context(), service.SearchParams{
		QueryName:          req.QueryName,
		QueryIngredients:   req.QueryIngredients,
		ExcludeIngredients: req.ExcludeIngredients,
		TimeFilter:         req.TimeFilter,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(results),
		"results": results,
	})
}

func (h *RecipeHandler) SimilarRecipes(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	limit := 5
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	recipes, err := h.recipes.SimilarRecipes(c.Request.Context(), id, limit)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch similar recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), userID.(uuid.UUID), recipeInput(&req))
	if err != nil {
		status := statusForRecipeError(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	if !h.canModify(c, id) {
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), id, recipeInput(&req))
	if err != nil {
		status := statusForRecipeError(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	if !h.canModify(c, id) {
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recipe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Recipe deleted successfully",
		"id":      id,
	})
}

func (h *RecipeHandler) UploadImage(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	if !h.canModify(c, id) {
		return
	}
	if h.images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
		return
	}

	contentType := c.ContentType()
	if contentType != "image/jpeg" && contentType != "image/png" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected image/jpeg or image/png body"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImageBytes+1))
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image body"})
		return
	}
	if len(data) > maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}

	url, err := h.images.UploadRecipeImage(c.Request.Context(), id, data, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	if err := h.recipes.SetImageURL(c.Request.Context(), id, url); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}

// canModify enforces owner-or-admin on recipe mutations. Writes the error
// response itself and returns false when access is denied.
func (h *RecipeHandler) canModify(c *gin.Context, id uint) bool {
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return false
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return false
	}
	if c.GetBool("is_admin") || recipe.OwnerID == userID.(uuid.UUID) {
		return true
	}

	c.JSON(http.StatusForbidden, gin.H{"error": "not the recipe owner"})
	return false
}

func recipeID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return 0, false
	}
	return uint(id), true
}

func recipeInput(req *RecipeRequest) *service.RecipeInput {
	input := &service.RecipeInput{
		Name:         req.Name,
		Instructions: req.Instructions,
		CookingTime:  req.CookingTime,
	}
	if req.Ingredients != nil {
		input.Ingredients = make([]service.IngredientInput, 0, len(req.Ingredients))
		for _, ing := range req.Ingredients {
			input.Ingredients = append(input.Ingredients, service.IngredientInput{
				IngredientID: ing.IngredientID,
				Quantity:     ing.Quantity,
			})
		}
	}
	return input
}

func statusForRecipeError(err error) int {
	switch {
	case errors.Is(err, service.ErrNameTooShort),
		errors.Is(err, service.ErrInvalidCookingTime),
		errors.Is(err, service.ErrInstructionsTooLong),
		errors.Is(err, service.ErrNoIngredients),
		errors.Is(err, service.ErrTooManyIngredients),
		errors.Is(err, service.ErrDuplicateIngredient):
		return http.StatusBadRequest
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
