package api

// RecipeIngredientRequest is one ingredient link in a recipe payload.
type RecipeIngredientRequest struct {
	IngredientID uint   `json:"ingredient_id" binding:"required"`
	Quantity     string `json:"quantity" binding:"required"`
}

// RecipeRequest is the create/update payload for a recipe. Ingredients may
// be omitted on update to leave the ingredient set untouched.
type RecipeRequest struct {
	Name         string                    `json:"name" binding:"required"`
	Instructions string                    `json:"instructions"`
	CookingTime  int                       `json:"cooking_time" binding:"required"`
	Ingredients  []RecipeIngredientRequest `json:"ingredients"`
}

// SearchRequest mirrors the search endpoint's body. Unknown ingredient IDs
// are ignored, they simply match nothing.
type SearchRequest struct {
	QueryName          string `json:"query_name"`
	TimeFilter         string `json:"time_filter"`
	QueryIngredients   []uint `json:"query_ingredients"`
	ExcludeIngredients []uint `json:"exclude_ingredients"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// IngredientRequest is the create/update payload for a catalog ingredient.
type IngredientRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
}
