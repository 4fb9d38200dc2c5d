package model

// Macro is the nutrition record for a recipe, one per recipe.
type Macro struct {
	ID       uint `gorm:"primaryKey" json:"-"`
	RecipeID uint `gorm:"not null;uniqueIndex" json:"-"`
	Calories int  `gorm:"not null" json:"calories"`
	Protein  int  `gorm:"not null" json:"protein"`
	Carbs    int  `gorm:"not null" json:"carbs"`
	Fat      int  `gorm:"not null" json:"fat"`
}
