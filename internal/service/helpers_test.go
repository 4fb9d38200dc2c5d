package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/model"
	"github.com/tastebook/backend/internal/testdb"
)

// notifierRecorder captures change notifications so tests can assert on
// how many jobs a mutation would schedule.
type notifierRecorder struct {
	calls []uint
}

func (n *notifierRecorder) RecipeChanged(_ context.Context, recipeID uint) error {
	n.calls = append(n.calls, recipeID)
	return nil
}

func newTestService(t *testing.T) (*RecipeService, *notifierRecorder, *gorm.DB) {
	t.Helper()
	db := testdb.Open(t)
	rec := &notifierRecorder{}
	return NewRecipeService(db, rec), rec, db
}

func mustIngredient(t *testing.T, db *gorm.DB, name, category string) model.Ingredient {
	t.Helper()
	ingredient := model.Ingredient{Name: name, Category: category}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient %q: %v", name, err)
	}
	return ingredient
}

// mustRecipe inserts a recipe and its links directly, without going
// through the service, so seeding never records change notifications.
func mustRecipe(t *testing.T, db *gorm.DB, name string, cookingTime int, ingredientIDs ...uint) model.Recipe {
	t.Helper()
	recipe := model.Recipe{
		Name:               name,
		Instructions:       "Test instructions",
		CookingTime:        cookingTime,
		OwnerID:            uuid.New(),
		AIGenerationStatus: model.StatusPending,
		Embedding:          GenerateEmbedding(name),
	}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to create recipe %q: %v", name, err)
	}
	for _, id := range ingredientIDs {
		link := model.RecipeIngredient{RecipeID: recipe.ID, IngredientID: id, Quantity: "some"}
		if err := db.Create(&link).Error; err != nil {
			t.Fatalf("failed to link ingredient %d: %v", id, err)
		}
	}
	return recipe
}

func resultNames(results []AnnotatedRecipe) []string {
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	return names
}
