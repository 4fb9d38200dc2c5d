package model

// Ingredient is a catalog entry identified by its name within a category
// (e.g. "protein", "vegetable"). The same name may appear in several
// categories, but never twice in one.
type Ingredient struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null;uniqueIndex:idx_ingredients_name_category" json:"name"`
	Category string `gorm:"size:50;uniqueIndex:idx_ingredients_name_category" json:"category"`
}
