package inventory

import (
	"errors"
	"fmt"
	"time"

	"mesob/internal/models"

	"github.com/jinzhu/gorm"
)

// ErrInsufficientStock is returned when an issuing transaction would
// drive an ingredient's stock below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrStockConflict is returned when a guarded stock update loses the
// version race too many times in a row.
var ErrStockConflict = errors.New("concurrent stock update conflict")

// stockUpdateRetries bounds the optimistic-locking retry loop
const stockUpdateRetries = 3

// Ledger records inventory transactions and maintains ingredient stock
// levels under optimistic concurrency control.
type Ledger struct {
	db *gorm.DB
}

// NewLedger creates a new inventory ledger
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Ingredients

func (l *Ledger) ListIngredients() ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if err := l.db.Order("name").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (l *Ledger) GetIngredient(id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := l.db.First(&ingredient, id).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (l *Ledger) CreateIngredient(ingredient *models.Ingredient) error {
	if ingredient.Name == "" {
		return fmt.Errorf("ingredient name is required")
	}
	if ingredient.CurrentStock < 0 || ingredient.MinStock < 0 || ingredient.UnitCost < 0 {
		return fmt.Errorf("ingredient stock levels and cost must not be negative")
	}
	return l.db.Create(ingredient).Error
}

func (l *Ledger) UpdateIngredient(id uint, updates map[string]interface{}) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := l.db.First(&ingredient, id).Error; err != nil {
		return nil, err
	}
	if err := l.db.Model(&ingredient).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (l *Ledger) DeleteIngredient(id uint) error {
	var count int64
	l.db.Model(&models.RecipeIngredient{}).Where("ingredient_id = ?", id).Count(&count)
	if count > 0 {
		return fmt.Errorf("cannot delete ingredient: %d recipes reference it", count)
	}
	return l.db.Delete(&models.Ingredient{}, "id = ?", id).Error
}

// Units

func (l *Ledger) ListUnits() ([]models.Unit, error) {
	var units []models.Unit
	if err := l.db.Order("name").Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

func (l *Ledger) CreateUnit(unit *models.Unit) error {
	if unit.Name == "" || unit.Abbreviation == "" {
		return fmt.Errorf("unit name and abbreviation are required")
	}
	return l.db.Create(unit).Error
}

// Transactions

// RecordTransaction persists an inventory transaction and applies its
// stock deltas: receiving adds, issuing subtracts, adjustment applies
// the signed quantity. The whole movement commits or rolls back as one.
func (l *Ledger) RecordTransaction(txn *models.InventoryTransaction) error {
	if err := models.ValidateTransaction(txn); err != nil {
		return err
	}
	if txn.Date.IsZero() {
		txn.Date = time.Now()
	}

	tx := l.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	for i := range txn.Items {
		item := &txn.Items[i]
		if item.TotalCost == 0 {
			item.TotalCost = item.Quantity * item.UnitCost
		}

		delta := item.Quantity
		switch models.TransactionType(txn.Type) {
		case models.TransactionIssuing:
			delta = -item.Quantity
		case models.TransactionAdjustment:
			// signed delta as supplied
		}

		if err := applyStockDelta(tx, item.IngredientID, delta); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Create(txn).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// applyStockDelta updates an ingredient's stock with a version-guarded
// write, retrying when a concurrent writer got there first.
func applyStockDelta(tx *gorm.DB, ingredientID uint, delta float64) error {
	for attempt := 0; attempt < stockUpdateRetries; attempt++ {
		var ingredient models.Ingredient
		if err := tx.First(&ingredient, ingredientID).Error; err != nil {
			return fmt.Errorf("ingredient %d not found: %w", ingredientID, err)
		}

		newStock := ingredient.CurrentStock + delta
		if newStock < 0 {
			return fmt.Errorf("%w: ingredient %q has %.2f, requested %.2f",
				ErrInsufficientStock, ingredient.Name, ingredient.CurrentStock, -delta)
		}

		res := tx.Model(&models.Ingredient{}).
			Where("id = ? AND version = ?", ingredient.ID, ingredient.Version).
			Updates(map[string]interface{}{
				"current_stock": newStock,
				"version":       ingredient.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}
	}
	return fmt.Errorf("%w: ingredient %d", ErrStockConflict, ingredientID)
}

func (l *Ledger) ListTransactions() ([]models.InventoryTransaction, error) {
	var txns []models.InventoryTransaction
	if err := l.db.Preload("Items").Order("date desc").Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (l *Ledger) GetTransaction(id uint) (*models.InventoryTransaction, error) {
	var txn models.InventoryTransaction
	if err := l.db.Preload("Items").First(&txn, id).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// Counts

// CountLine is one counted ingredient submitted with a stock count
type CountLine struct {
	IngredientID    uint    `json:"ingredient_id"`
	CountedQuantity float64 `json:"counted_quantity"`
}

// RecordCount stores a physical count, computing variance against the
// system quantity per line and flagging lines outside the tolerance.
func (l *Ledger) RecordCount(userID uint, lines []CountLine, tolerance float64, notes string) (*models.InventoryCount, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("count must have at least one line")
	}

	count := &models.InventoryCount{
		UserID:      userID,
		CountedAt:   time.Now(),
		Notes:       notes,
		IsCompleted: true,
	}

	for _, line := range lines {
		var ingredient models.Ingredient
		if err := l.db.First(&ingredient, line.IngredientID).Error; err != nil {
			return nil, fmt.Errorf("ingredient %d not found: %w", line.IngredientID, err)
		}

		variance := line.CountedQuantity - ingredient.CurrentStock
		count.Items = append(count.Items, models.InventoryCountItem{
			IngredientID:    line.IngredientID,
			SystemQuantity:  ingredient.CurrentStock,
			CountedQuantity: line.CountedQuantity,
			Variance:        variance,
			Flagged:         variance > tolerance || variance < -tolerance,
		})
	}

	if err := l.db.Create(count).Error; err != nil {
		return nil, err
	}
	return count, nil
}

func (l *Ledger) GetCount(id uint) (*models.InventoryCount, error) {
	var count models.InventoryCount
	if err := l.db.Preload("Items").First(&count, id).Error; err != nil {
		return nil, err
	}
	return &count, nil
}

// LowStockItem is an ingredient at or below its minimum level
type LowStockItem struct {
	Ingredient models.Ingredient `json:"ingredient"`
	Shortage   float64           `json:"shortage"`
}

// LowStock returns ingredients whose current stock is at or below the
// configured minimum, with the computed shortage.
func (l *Ledger) LowStock() ([]LowStockItem, error) {
	var ingredients []models.Ingredient
	if err := l.db.Where("current_stock <= min_stock").Find(&ingredients).Error; err != nil {
		return nil, err
	}

	items := make([]LowStockItem, 0, len(ingredients))
	for _, ingredient := range ingredients {
		items = append(items, LowStockItem{
			Ingredient: ingredient,
			Shortage:   ingredient.Shortage(),
		})
	}
	return items, nil
}
