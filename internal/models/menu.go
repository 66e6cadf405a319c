package models

import (
	"fmt"

	"github.com/jinzhu/gorm"
)

// MenuCategory represents a grouping of menu items
type MenuCategory struct {
	gorm.Model
	Name         string `gorm:"unique_index"`
	Description  string
	DisplayOrder int
	IsActive     bool `gorm:"default:true"`
}

// MenuItem represents a dish on the menu
type MenuItem struct {
	gorm.Model
	Name        string
	Description string
	CategoryID  uint
	Price       float64
	Cost        float64
	IsAvailable bool `gorm:"default:true"`
	IsFeatured  bool
	ImageURL    string
	PrepTime    int // minutes
}

// Modifier represents an optional customization on a menu item
type Modifier struct {
	gorm.Model
	Name       string
	MenuItemID uint
	PriceDelta float64
}

// ValidateMenuItem validates a menu item before persistence
func ValidateMenuItem(item *MenuItem) error {
	if item.Name == "" {
		return fmt.Errorf("menu item name is required")
	}
	if item.Price < 0 {
		return fmt.Errorf("menu item price must not be negative")
	}
	if item.Cost < 0 {
		return fmt.Errorf("menu item cost must not be negative")
	}
	if item.CategoryID == 0 {
		return fmt.Errorf("menu item category is required")
	}
	return nil
}

// Margin returns the gross margin for the item
func (mi *MenuItem) Margin() float64 {
	return mi.Price - mi.Cost
}
