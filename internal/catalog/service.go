package catalog

import (
	"fmt"

	"mesob/internal/models"

	"github.com/jinzhu/gorm"
)

// Service provides CRUD and costing over the menu catalog
type Service struct {
	db *gorm.DB
}

// NewService creates a new catalog service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Categories

func (s *Service) ListCategories() ([]models.MenuCategory, error) {
	var categories []models.MenuCategory
	if err := s.db.Order("display_order").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Service) CreateCategory(category *models.MenuCategory) error {
	if category.Name == "" {
		return fmt.Errorf("category name is required")
	}
	return s.db.Create(category).Error
}

func (s *Service) UpdateCategory(id uint, updates map[string]interface{}) (*models.MenuCategory, error) {
	var category models.MenuCategory
	if err := s.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&category).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *Service) DeleteCategory(id uint) error {
	var count int64
	s.db.Model(&models.MenuItem{}).Where("category_id = ?", id).Count(&count)
	if count > 0 {
		return fmt.Errorf("cannot delete category: %d menu items reference it", count)
	}
	return s.db.Delete(&models.MenuCategory{}, "id = ?", id).Error
}

// Menu items

// ListItems returns menu items, optionally filtered by category and availability
func (s *Service) ListItems(categoryID uint, availableOnly bool) ([]models.MenuItem, error) {
	query := s.db
	if categoryID != 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	if availableOnly {
		query = query.Where("is_available = ?", true)
	}
	var items []models.MenuItem
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) GetItem(id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Service) CreateItem(item *models.MenuItem) error {
	if err := models.ValidateMenuItem(item); err != nil {
		return err
	}
	return s.db.Create(item).Error
}

func (s *Service) UpdateItem(id uint, updates map[string]interface{}) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&item).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Service) DeleteItem(id uint) error {
	return s.db.Delete(&models.MenuItem{}, "id = ?", id).Error
}

// Recipes

// GetRecipe returns the recipe for a menu item with its ingredient lines
func (s *Service) GetRecipe(menuItemID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.Preload("Ingredients").
		Where("menu_item_id = ?", menuItemID).
		First(&recipe).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// UpsertRecipe creates or replaces the recipe for a menu item. Existing
// ingredient lines are replaced wholesale.
func (s *Service) UpsertRecipe(menuItemID uint, recipe *models.Recipe) (*models.Recipe, error) {
	recipe.MenuItemID = menuItemID
	if recipe.YieldCount == 0 {
		recipe.YieldCount = 1
	}
	if err := models.ValidateRecipe(recipe); err != nil {
		return nil, err
	}

	var item models.MenuItem
	if err := s.db.First(&item, menuItemID).Error; err != nil {
		return nil, fmt.Errorf("menu item not found: %w", err)
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var existing models.Recipe
	err := tx.Where("menu_item_id = ?", menuItemID).First(&existing).Error
	switch {
	case err == nil:
		if err := tx.Delete(&models.RecipeIngredient{}, "recipe_id = ?", existing.ID).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		updates := map[string]interface{}{
			"instructions": recipe.Instructions,
			"yield_count":  recipe.YieldCount,
			"yield_unit":   recipe.YieldUnit,
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		recipe.ID = existing.ID
	case gorm.IsRecordNotFoundError(err):
		ingredients := recipe.Ingredients
		recipe.Ingredients = nil
		if err := tx.Create(recipe).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		recipe.Ingredients = ingredients
	default:
		tx.Rollback()
		return nil, err
	}

	for i := range recipe.Ingredients {
		ing := recipe.Ingredients[i]
		ing.ID = 0
		ing.RecipeID = recipe.ID
		if err := tx.Create(&ing).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return s.GetRecipe(menuItemID)
}

// ComputeCOGS returns the cost of goods sold for one serving of the menu
// item, summing recipe ingredient quantities against current unit costs.
func (s *Service) ComputeCOGS(menuItemID uint) (float64, error) {
	recipe, err := s.GetRecipe(menuItemID)
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return 0, nil
		}
		return 0, err
	}

	var total float64
	for _, line := range recipe.Ingredients {
		var ingredient models.Ingredient
		if err := s.db.First(&ingredient, line.IngredientID).Error; err != nil {
			return 0, fmt.Errorf("ingredient %d not found: %w", line.IngredientID, err)
		}
		total += line.Quantity * ingredient.UnitCost
	}

	yield := float64(recipe.YieldCount)
	if yield <= 0 {
		yield = 1
	}
	return total / yield, nil
}

// Profit returns price minus computed COGS for the menu item
func (s *Service) Profit(menuItemID uint) (float64, error) {
	item, err := s.GetItem(menuItemID)
	if err != nil {
		return 0, err
	}
	cogs, err := s.ComputeCOGS(menuItemID)
	if err != nil {
		return 0, err
	}
	return item.Price - cogs, nil
}

// Modifiers

func (s *Service) ListModifiers(menuItemID uint) ([]models.Modifier, error) {
	var modifiers []models.Modifier
	if err := s.db.Where("menu_item_id = ?", menuItemID).Find(&modifiers).Error; err != nil {
		return nil, err
	}
	return modifiers, nil
}

func (s *Service) CreateModifier(modifier *models.Modifier) error {
	if modifier.Name == "" {
		return fmt.Errorf("modifier name is required")
	}
	return s.db.Create(modifier).Error
}

func (s *Service) DeleteModifier(id uint) error {
	return s.db.Delete(&models.Modifier{}, "id = ?", id).Error
}
