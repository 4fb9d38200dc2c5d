package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tastebook/backend/internal/model"
)

// Validation errors surfaced at the request boundary. They never reach the
// async pipeline.
var (
	ErrNameTooShort        = errors.New("name too short")
	ErrInvalidCookingTime  = errors.New("cooking time must be a positive number of minutes")
	ErrInstructionsTooLong = errors.New("instructions exceed 2000 characters")
	ErrNoIngredients       = errors.New("at least one ingredient is required")
	ErrTooManyIngredients  = errors.New("ingredients per recipe limit exceeded")
	ErrDuplicateIngredient = errors.New("the same ingredient cannot be added twice")
)

const (
	minNameLength         = 3
	maxInstructionsLength = 2000
	maxIngredientLinks    = 20
)

// IngredientInput is one ingredient link in a create/update request.
type IngredientInput struct {
	IngredientID uint
	Quantity     string
}

// RecipeInput carries the mutable recipe fields. A nil Ingredients slice on
// update leaves the ingredient set untouched; a non-nil slice replaces it.
type RecipeInput struct {
	Name         string
	Instructions string
	CookingTime  int
	Ingredients  []IngredientInput
}

// RecipeService handles recipe reads and writes. Mutations that change a
// recipe's name or ingredient set are reported to the notifier after the
// transaction commits.
type RecipeService struct {
	db       *gorm.DB
	notifier RecipeChangeNotifier
}

// NewRecipeService creates a new RecipeService instance. The notifier may
// be nil for paths that must not trigger twist generation (bulk loads).
func NewRecipeService(db *gorm.DB, notifier RecipeChangeNotifier) *RecipeService {
	return &RecipeService{
		db:       db,
		notifier: notifier,
	}
}

func validateRecipeInput(input *RecipeInput, requireIngredients bool) error {
	if len(input.Name) < minNameLength {
		return ErrNameTooShort
	}
	if input.CookingTime < 1 {
		return ErrInvalidCookingTime
	}
	if len(input.Instructions) > maxInstructionsLength {
		return ErrInstructionsTooLong
	}
	if input.Ingredients == nil && !requireIngredients {
		return nil
	}
	if len(input.Ingredients) < 1 {
		return ErrNoIngredients
	}
	if len(input.Ingredients) > maxIngredientLinks {
		return ErrTooManyIngredients
	}
	seen := make(map[uint]bool, len(input.Ingredients))
	for _, ing := range input.Ingredients {
		if seen[ing.IngredientID] {
			return ErrDuplicateIngredient
		}
		seen[ing.IngredientID] = true
	}
	return nil
}

// CreateRecipe creates a recipe with its ingredient links. The initial link
// batch counts as an ingredient-set change, so creation schedules exactly
// one twist generation.
func (s *RecipeService) CreateRecipe(ctx context.Context, ownerID uuid.UUID, input *RecipeInput) (*model.Recipe, error) {
	if err := validateRecipeInput(input, true); err != nil {
		return nil, err
	}

	recipe := model.Recipe{
		Name:               input.Name,
		Instructions:       input.Instructions,
		CookingTime:        input.CookingTime,
		OwnerID:            ownerID,
		AIGenerationStatus: model.StatusPending,
		Embedding:          GenerateEmbedding(input.Name),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		for _, ing := range input.Ingredients {
			link := model.RecipeIngredient{
				RecipeID:     recipe.ID,
				IngredientID: ing.IngredientID,
				Quantity:     ing.Quantity,
			}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyChanged(ctx, recipe.ID)
	return s.GetRecipe(ctx, recipe.ID)
}

// GetRecipe retrieves a recipe with its ingredient links and macros.
func (s *RecipeService) GetRecipe(ctx context.Context, id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	err := s.db.WithContext(ctx).
		Preload("RecipeIngredients.Ingredient").
		Preload("Macro").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// UpdateRecipe applies field and ingredient-link changes. The previous name
// is read before writing so a rename can be detected without hidden change
// tracking. A rename and an ingredient-set change each schedule their own
// twist generation; a quantity-only edit or a cooking-time edit schedules
// none.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id uint, input *RecipeInput) (*model.Recipe, error) {
	if err := validateRecipeInput(input, false); err != nil {
		return nil, err
	}

	var existing model.Recipe
	if err := s.db.WithContext(ctx).Preload("RecipeIngredients").First(&existing, "id = ?", id).Error; err != nil {
		return nil, err
	}

	nameChanged := input.Name != existing.Name
	ingredientsChanged := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         input.Name,
			"instructions": input.Instructions,
			"cooking_time": input.CookingTime,
			"embedding":    GenerateEmbedding(input.Name),
		}
		if err := tx.Model(&model.Recipe{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		if input.Ingredients == nil {
			return nil
		}

		current := make(map[uint]model.RecipeIngredient, len(existing.RecipeIngredients))
		for _, link := range existing.RecipeIngredients {
			current[link.IngredientID] = link
		}

		wanted := make(map[uint]bool, len(input.Ingredients))
		for _, ing := range input.Ingredients {
			wanted[ing.IngredientID] = true
			link, ok := current[ing.IngredientID]
			if !ok {
				ingredientsChanged = true
				link = model.RecipeIngredient{
					RecipeID:     id,
					IngredientID: ing.IngredientID,
					Quantity:     ing.Quantity,
				}
				if err := tx.Create(&link).Error; err != nil {
					return err
				}
				continue
			}
			if link.Quantity != ing.Quantity {
				if err := tx.Model(&model.RecipeIngredient{}).
					Where("id = ?", link.ID).
					Update("quantity", ing.Quantity).Error; err != nil {
					return err
				}
			}
		}

		for ingredientID, link := range current {
			if wanted[ingredientID] {
				continue
			}
			ingredientsChanged = true
			if err := tx.Delete(&model.RecipeIngredient{}, "id = ?", link.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// One notification per event class, matching the observed trigger model:
	// a rename plus a link change enqueues twice.
	if nameChanged {
		s.notifyChanged(ctx, id)
	}
	if ingredientsChanged {
		s.notifyChanged(ctx, id)
	}

	return s.GetRecipe(ctx, id)
}

// DeleteRecipe removes a recipe along with its ingredient links and
// nutrition record.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id uint) error {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&model.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&model.Macro{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Recipe{}, "id = ?", id).Error
	})
}

// ListRecipes lists recipes for a user or all users if ownerID is nil.
func (s *RecipeService) ListRecipes(ctx context.Context, ownerID *uuid.UUID) ([]model.Recipe, error) {
	query := s.db.WithContext(ctx).
		Preload("RecipeIngredients.Ingredient").
		Preload("Macro").
		Order("recipes.id")
	if ownerID != nil {
		query = query.Where("owner_id = ?", *ownerID)
	}

	var recipes []model.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// SimilarRecipes returns recipes close to the given one, by embedding
// distance on postgres and by a name keyword fallback elsewhere.
func (s *RecipeService) SimilarRecipes(ctx context.Context, id uint, limit int) ([]model.Recipe, error) {
	recipe, err := s.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	query := s.db.WithContext(ctx).Model(&model.Recipe{}).Where("recipes.id <> ?", id)
	if s.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{recipe.Embedding}},
		})
	} else {
		keyword := recipe.Name
		if i := strings.IndexByte(keyword, ' '); i > 0 {
			keyword = keyword[:i]
		}
		query = query.Where("LOWER(recipes.name) LIKE ?", "%"+strings.ToLower(keyword)+"%").
			Order("recipes.id")
	}

	var recipes []model.Recipe
	if err := query.Limit(limit).Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// SetImageURL stores the uploaded photo location on the recipe. Not a
// twist-relevant change.
func (s *RecipeService) SetImageURL(ctx context.Context, id uint, url string) error {
	return s.db.WithContext(ctx).Model(&model.Recipe{}).Where("id = ?", id).
		Update("image_url", url).Error
}

// TwistSource is the current recipe state handed to the twist generator.
// It is always read at job execution time, never snapshotted at enqueue.
type TwistSource struct {
	Name            string
	IngredientNames []string
}

// TwistSource loads the recipe name and its current ingredient names.
func (s *RecipeService) TwistSource(ctx context.Context, id uint) (*TwistSource, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).Select("id", "name").First(&recipe, "id = ?", id).Error; err != nil {
		return nil, err
	}

	var names []string
	err := s.db.WithContext(ctx).Model(&model.RecipeIngredient{}).
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("recipe_ingredients.recipe_id = ?", id).
		Order("ingredients.id").
		Pluck("ingredients.name", &names).Error
	if err != nil {
		return nil, err
	}

	return &TwistSource{Name: recipe.Name, IngredientNames: names}, nil
}

// UpdateGenerationStatus performs a narrow status update so concurrent
// edits to other fields are never clobbered.
func (s *RecipeService) UpdateGenerationStatus(ctx context.Context, id uint, status string) error {
	return s.db.WithContext(ctx).Model(&model.Recipe{}).Where("id = ?", id).
		Update("ai_generation_status", status).Error
}

// UpdateTwistResult persists a generation outcome and its terminal status
// in one narrow write.
func (s *RecipeService) UpdateTwistResult(ctx context.Context, id uint, result model.TwistResult, status string) error {
	return s.db.WithContext(ctx).Model(&model.Recipe{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"twist_result":         result,
			"ai_generation_status": status,
		}).Error
}

func (s *RecipeService) notifyChanged(ctx context.Context, id uint) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.RecipeChanged(ctx, id); err != nil {
		// The mutation itself succeeded; the twist stays stale until the
		// next qualifying change.
		log.Printf("recipe %d: failed to enqueue twist generation: %v", id, err)
	}
}
