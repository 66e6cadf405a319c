package models

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
)

// Ingredient represents a stocked ingredient in the inventory
type Ingredient struct {
	gorm.Model
	Name         string `gorm:"unique_index"`
	Description  string
	Category     string
	Unit         string
	CurrentStock float64
	MinStock     float64
	UnitCost     float64
	VendorID     *uint
	// Version guards concurrent stock updates; bumped on every write.
	Version uint `gorm:"default:0"`
}

// LowStock reports whether the ingredient is at or below its minimum level
func (i *Ingredient) LowStock() bool {
	return i.CurrentStock <= i.MinStock
}

// Shortage returns how far below the minimum level the stock sits
func (i *Ingredient) Shortage() float64 {
	return i.MinStock - i.CurrentStock
}

// Unit represents a measurement unit, optionally convertible to a base unit
type Unit struct {
	gorm.Model
	Name             string `gorm:"unique_index"`
	Abbreviation     string
	BaseUnitID       *uint
	ConversionFactor float64 `gorm:"default:1"`
}

// TransactionType represents the kind of inventory transaction
type TransactionType string

const (
	TransactionReceiving  TransactionType = "receiving"
	TransactionIssuing    TransactionType = "issuing"
	TransactionAdjustment TransactionType = "adjustment"
)

// ValidTransactionType reports whether the string names a known type
func ValidTransactionType(t string) bool {
	switch TransactionType(t) {
	case TransactionReceiving, TransactionIssuing, TransactionAdjustment:
		return true
	}
	return false
}

// InventoryTransaction represents a stock movement (receiving, issuing
// or adjustment) with its line items
type InventoryTransaction struct {
	gorm.Model
	Type        string
	Date        time.Time
	UserID      uint
	ReferenceID string
	Notes       string
	Items       []InventoryTransactionItem `gorm:"foreignkey:TransactionID"`
}

// InventoryTransactionItem represents one ingredient line of a transaction
type InventoryTransactionItem struct {
	gorm.Model
	TransactionID uint
	IngredientID  uint
	Quantity      float64
	UnitCost      float64
	TotalCost     float64
	BatchNumber   string
	ExpiryDate    *time.Time
}

// InventoryCount represents a physical stock count session
type InventoryCount struct {
	gorm.Model
	UserID      uint
	CountedAt   time.Time
	Notes       string
	IsCompleted bool
	Items       []InventoryCountItem `gorm:"foreignkey:CountID"`
}

// InventoryCountItem compares a counted quantity against the system quantity
type InventoryCountItem struct {
	gorm.Model
	CountID         uint
	IngredientID    uint
	SystemQuantity  float64
	CountedQuantity float64
	Variance        float64
	Flagged         bool
}

// ValidateTransaction validates a transaction and its line items
func ValidateTransaction(tx *InventoryTransaction) error {
	if !ValidTransactionType(tx.Type) {
		return fmt.Errorf("unknown transaction type %q", tx.Type)
	}
	if len(tx.Items) == 0 {
		return fmt.Errorf("transaction must have at least one item")
	}
	for _, item := range tx.Items {
		if item.IngredientID == 0 {
			return fmt.Errorf("transaction item ingredient reference is required")
		}
		if TransactionType(tx.Type) != TransactionAdjustment && item.Quantity <= 0 {
			return fmt.Errorf("transaction item quantity must be greater than 0")
		}
	}
	return nil
}
