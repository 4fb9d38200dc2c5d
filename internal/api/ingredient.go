package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/model"
	"github.com/tastebook/backend/internal/service"
)

type IngredientHandler struct {
	db          *gorm.DB
	authService *service.AuthService
}

// NewIngredientHandler creates a new IngredientHandler
func NewIngredientHandler(db *gorm.DB, authService *service.AuthService) *IngredientHandler {
	return &IngredientHandler{
		db:          db,
		authService: authService,
	}
}

// RegisterRoutes mounts the catalog endpoints. Listing is public so recipe
// forms can offer the catalog; mutations are admin-only.
func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		admin := ingredients.Group("", middleware.AuthMiddleware(h.authService), middleware.AdminOnly())
		{
			admin.POST("", h.CreateIngredient)
			admin.PUT("/:id", h.UpdateIngredient)
			admin.DELETE("/:id", h.DeleteIngredient)
		}
	}
}

func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	var ingredients []model.Ingredient
	if err := h.db.Order("id").Find(&ingredients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ingredients"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}

func (h *IngredientHandler) CreateIngredient(c *gin.Context) {
	var req IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ingredient := model.Ingredient{Name: req.Name, Category: req.Category}
	if err := h.db.Create(&ingredient).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "ingredient already exists in this category"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ingredient"})
		return
	}

	c.JSON(http.StatusCreated, ingredient)
}

func (h *IngredientHandler) UpdateIngredient(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredient id"})
		return
	}

	var req IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ingredient model.Ingredient
	if err := h.db.First(&ingredient, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
		return
	}

	ingredient.Name = req.Name
	ingredient.Category = req.Category
	if err := h.db.Save(&ingredient).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "ingredient already exists in this category"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ingredient"})
		return
	}

	c.JSON(http.StatusOK, ingredient)
}

// DeleteIngredient removes the ingredient and, via the cascade on the join
// table, any recipe links to it. Recipes themselves are untouched.
func (h *IngredientHandler) DeleteIngredient(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredient id"})
		return
	}

	var ingredient model.Ingredient
	if err := h.db.First(&ingredient, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ingredient_id = ?", id).Delete(&model.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Ingredient{}, "id = ?", id).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete ingredient"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ingredient deleted successfully",
		"id":      id,
	})
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
