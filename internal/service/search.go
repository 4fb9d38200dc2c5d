package service

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/model"
)

// Cooking-time buckets accepted by FilterRecipes.
const (
	TimeFilterQuick    = "quick"    // under 20 minutes
	TimeFilterStandard = "standard" // 20 to 45 minutes inclusive
	TimeFilterLong     = "long"     // over 45 minutes
)

// SearchParams are the request-level inputs to SearchAndFilter. Ingredient
// IDs that do not exist in the catalog simply match nothing.
type SearchParams struct {
	QueryName          string
	QueryIngredients   []uint
	ExcludeIngredients []uint
	TimeFilter         string
}

// AnnotatedRecipe is a search result. The matching/missing fields are only
// populated when the search carried a required-ingredient set: matching is
// the recipe's overlap with that set, missing is everything else the recipe
// contains (not ingredients the recipe lacks).
type AnnotatedRecipe struct {
	model.Recipe
	MatchingIngredientIDs   []uint   `json:"matching_ingredient_ids,omitempty"`
	MissingIngredientIDs    []uint   `json:"missing_ingredient_ids,omitempty"`
	MatchingIngredientNames []string `json:"matching_ingredient_names,omitempty"`
	MissingIngredientNames  []string `json:"missing_ingredient_names,omitempty"`
}

// Search narrows recipes by case-insensitive name substring and by a
// required-ingredient set. A recipe qualifies when it contains at least one
// required ingredient; results are ranked by how many of the recipe's
// ingredients fall outside the required set (fewer first), ties by id.
func Search(queryName string, queryIngredients []uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if queryName != "" {
			db = db.Where("LOWER(recipes.name) LIKE ?", "%"+strings.ToLower(queryName)+"%")
		}
		if len(queryIngredients) > 0 {
			db = db.Select(`recipes.*,
				(SELECT COUNT(DISTINCT ri.ingredient_id) FROM recipe_ingredients ri WHERE ri.recipe_id = recipes.id)
				- (SELECT COUNT(DISTINCT ri.ingredient_id) FROM recipe_ingredients ri WHERE ri.recipe_id = recipes.id AND ri.ingredient_id IN ?) AS missing`,
				queryIngredients).
				Where(`EXISTS (SELECT 1 FROM recipe_ingredients ri WHERE ri.recipe_id = recipes.id AND ri.ingredient_id IN ?)`,
					queryIngredients).
				Order("missing, recipes.id")
		}
		return db
	}
}

// FilterRecipes applies the cooking-time bucket and the hard exclusion set.
// Exclusion is absolute: one excluded ingredient removes the recipe no
// matter how well it matched.
func FilterRecipes(timeFilter string, excludeIngredients []uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch timeFilter {
		case TimeFilterQuick:
			db = db.Where("recipes.cooking_time < ?", 20)
		case TimeFilterStandard:
			db = db.Where("recipes.cooking_time BETWEEN ? AND ?", 20, 45)
		case TimeFilterLong:
			db = db.Where("recipes.cooking_time > ?", 45)
		}
		if len(excludeIngredients) > 0 {
			db = db.Where(`NOT EXISTS (SELECT 1 FROM recipe_ingredients ri WHERE ri.recipe_id = recipes.id AND ri.ingredient_id IN ?)`,
				excludeIngredients)
		}
		return db
	}
}

// SearchAndFilter runs the two transforms in order (search, then filter)
// and annotates the survivors. The missing count used for ranking is
// computed over the recipe's full ingredient set, before exclusion.
func (s *RecipeService) SearchAndFilter(ctx context.Context, params SearchParams) ([]AnnotatedRecipe, error) {
	query := s.db.WithContext(ctx).Model(&model.Recipe{}).
		Scopes(
			Search(params.QueryName, params.QueryIngredients),
			FilterRecipes(params.TimeFilter, params.ExcludeIngredients),
		).
		Preload("RecipeIngredients.Ingredient").
		Preload("Macro")
	if len(params.QueryIngredients) == 0 {
		query = query.Order("recipes.id")
	}

	var recipes []model.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return annotateRecipes(recipes, params.QueryIngredients), nil
}

func annotateRecipes(recipes []model.Recipe, queryIngredients []uint) []AnnotatedRecipe {
	required := make(map[uint]bool, len(queryIngredients))
	for _, id := range queryIngredients {
		required[id] = true
	}

	results := make([]AnnotatedRecipe, 0, len(recipes))
	for _, recipe := range recipes {
		annotated := AnnotatedRecipe{Recipe: recipe}
		if len(queryIngredients) > 0 {
			links := append([]model.RecipeIngredient(nil), recipe.RecipeIngredients...)
			sort.Slice(links, func(i, j int) bool {
				return links[i].IngredientID < links[j].IngredientID
			})
			for _, link := range links {
				if required[link.IngredientID] {
					annotated.MatchingIngredientIDs = append(annotated.MatchingIngredientIDs, link.IngredientID)
					annotated.MatchingIngredientNames = append(annotated.MatchingIngredientNames, link.Ingredient.Name)
				} else {
					annotated.MissingIngredientIDs = append(annotated.MissingIngredientIDs, link.IngredientID)
					annotated.MissingIngredientNames = append(annotated.MissingIngredientNames, link.Ingredient.Name)
				}
			}
		}
		results = append(results, annotated)
	}
	return results
}
