package models

import (
	"fmt"

	"github.com/jinzhu/gorm"
)

// Recipe represents the ingredient breakdown behind a menu item
type Recipe struct {
	gorm.Model
	MenuItemID   uint               `gorm:"unique_index"`
	Instructions string
	YieldCount   int                `gorm:"default:1"`
	YieldUnit    string             `gorm:"default:'servings'"`
	Ingredients  []RecipeIngredient `gorm:"foreignkey:RecipeID"`
}

// RecipeIngredient represents one ingredient line of a recipe
type RecipeIngredient struct {
	gorm.Model
	RecipeID     uint
	IngredientID uint
	Quantity     float64
	Unit         string
	Notes        string
}

// ValidateRecipe validates a recipe and its ingredient lines
func ValidateRecipe(r *Recipe) error {
	if r.YieldCount <= 0 {
		return fmt.Errorf("recipe yield count must be greater than 0")
	}
	for _, ing := range r.Ingredients {
		if ing.IngredientID == 0 {
			return fmt.Errorf("recipe ingredient reference is required")
		}
		if ing.Quantity <= 0 {
			return fmt.Errorf("recipe ingredient quantity must be greater than 0")
		}
	}
	return nil
}
