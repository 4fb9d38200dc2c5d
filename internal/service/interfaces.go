package service

import (
	"context"

	"github.com/tastebook/backend/internal/model"
)

// RecipeChangeNotifier receives recipe mutations that require a twist
// regeneration: a name change, or any change to the ingredient set. The
// write path calls it explicitly so the dependency is visible and tests
// can swap in a recorder.
type RecipeChangeNotifier interface {
	RecipeChanged(ctx context.Context, recipeID uint) error
}

// TwistGenerator produces a creative-twist suggestion for a recipe. It is
// an opaque, possibly slow, possibly failing external collaborator.
type TwistGenerator interface {
	GenerateTwist(ctx context.Context, name string, ingredientNames []string) (*model.Twist, error)
}
