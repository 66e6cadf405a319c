package database

import (
	"fmt"
	"time"

	"mesob/internal/models"

	"github.com/jinzhu/gorm"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Open establishes the database connection for the given driver and DSN
func Open(driver, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.DB().SetMaxIdleConns(10)
	db.DB().SetMaxOpenConns(100)
	db.DB().SetConnMaxLifetime(time.Hour)
	if driver == "sqlite3" {
		// SQLite handles one writer at a time; an in-memory DB also
		// disappears when its single connection closes.
		db.DB().SetMaxOpenConns(1)
	}

	return db, nil
}

// Migrate creates and updates all application tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Modifier{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Ingredient{},
		&models.Unit{},
		&models.InventoryTransaction{},
		&models.InventoryTransactionItem{},
		&models.InventoryCount{},
		&models.InventoryCountItem{},
		&models.Table{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.Payment{},
		&models.Vendor{},
		&models.PurchaseOrder{},
		&models.PurchaseOrderItem{},
	).Error
}

// Seed ensures essential default data exists in an empty database
func Seed(db *gorm.DB) {
	var unitCount int64
	db.Model(&models.Unit{}).Count(&unitCount)
	if unitCount == 0 {
		defaultUnits := []models.Unit{
			{Name: "gram", Abbreviation: "g", ConversionFactor: 1},
			{Name: "kilogram", Abbreviation: "kg", ConversionFactor: 1000},
			{Name: "milliliter", Abbreviation: "ml", ConversionFactor: 1},
			{Name: "liter", Abbreviation: "l", ConversionFactor: 1000},
			{Name: "piece", Abbreviation: "pc", ConversionFactor: 1},
		}
		for _, unit := range defaultUnits {
			db.Create(&unit)
		}
	}

	var tableCount int64
	db.Model(&models.Table{}).Count(&tableCount)
	if tableCount == 0 {
		for i := 1; i <= 8; i++ {
			db.Create(&models.Table{
				Name:     fmt.Sprintf("T%d", i),
				Capacity: 4,
				Status:   string(models.TableStatusAvailable),
			})
		}
	}
}
