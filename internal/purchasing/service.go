package purchasing

import (
	"errors"
	"fmt"
	"time"

	"mesob/internal/inventory"
	"mesob/internal/models"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

// ErrInvalidTransition is returned for a purchase order status change
// the transition table does not allow.
var ErrInvalidTransition = errors.New("invalid purchase order transition")

// Service manages vendors and the purchase order workflow. Receiving a
// purchase order feeds the inventory ledger.
type Service struct {
	db     *gorm.DB
	ledger *inventory.Ledger
}

// NewService creates a new purchasing service
func NewService(db *gorm.DB, ledger *inventory.Ledger) *Service {
	return &Service{db: db, ledger: ledger}
}

// Vendors

func (s *Service) ListVendors() ([]models.Vendor, error) {
	var vendors []models.Vendor
	if err := s.db.Order("name").Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

func (s *Service) CreateVendor(vendor *models.Vendor) error {
	if vendor.Name == "" {
		return fmt.Errorf("vendor name is required")
	}
	return s.db.Create(vendor).Error
}

func (s *Service) UpdateVendor(id uint, updates map[string]interface{}) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := s.db.First(&vendor, id).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&vendor).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

// Purchase orders

// CreatePurchaseOrder opens a draft purchase order against a vendor
func (s *Service) CreatePurchaseOrder(userID uint, po *models.PurchaseOrder) error {
	var vendor models.Vendor
	if err := s.db.First(&vendor, po.VendorID).Error; err != nil {
		return fmt.Errorf("vendor not found: %w", err)
	}
	if len(po.Items) == 0 {
		return fmt.Errorf("purchase order must have at least one item")
	}
	for _, item := range po.Items {
		if item.IngredientID == 0 || item.Quantity <= 0 {
			return fmt.Errorf("purchase order items need an ingredient and positive quantity")
		}
	}

	po.Number = uuid.New().String()
	po.UserID = userID
	po.Status = string(models.PurchaseOrderDraft)
	return s.db.Create(po).Error
}

func (s *Service) GetPurchaseOrder(id uint) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	if err := s.db.Preload("Items").First(&po, id).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (s *Service) ListPurchaseOrders(status string) ([]models.PurchaseOrder, error) {
	query := s.db.Preload("Items")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var pos []models.PurchaseOrder
	if err := query.Order("created_at desc").Find(&pos).Error; err != nil {
		return nil, err
	}
	return pos, nil
}

// SetStatus moves the purchase order along draft -> submitted ->
// approved -> received, or cancels a non-terminal order.
func (s *Service) SetStatus(id uint, next string) (*models.PurchaseOrder, error) {
	po, err := s.GetPurchaseOrder(id)
	if err != nil {
		return nil, err
	}

	current := models.PurchaseOrderStatus(po.Status)
	target := models.PurchaseOrderStatus(next)
	if !current.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, target)
	}

	updates := map[string]interface{}{"status": next}
	if target == models.PurchaseOrderSubmitted {
		now := time.Now()
		updates["ordered_at"] = &now
	}
	if err := s.db.Model(po).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetPurchaseOrder(id)
}

// Receive marks an approved purchase order received and records the
// matching receiving transaction in the inventory ledger.
func (s *Service) Receive(userID, id uint) (*models.PurchaseOrder, error) {
	po, err := s.GetPurchaseOrder(id)
	if err != nil {
		return nil, err
	}

	current := models.PurchaseOrderStatus(po.Status)
	if !current.CanTransitionTo(models.PurchaseOrderReceived) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, models.PurchaseOrderReceived)
	}

	txn := &models.InventoryTransaction{
		Type:        string(models.TransactionReceiving),
		UserID:      userID,
		ReferenceID: po.Number,
		Notes:       "purchase order receipt",
	}
	for _, item := range po.Items {
		txn.Items = append(txn.Items, models.InventoryTransactionItem{
			IngredientID: item.IngredientID,
			Quantity:     item.Quantity,
			UnitCost:     item.UnitCost,
			TotalCost:    item.Quantity * item.UnitCost,
		})
	}
	if err := s.ledger.RecordTransaction(txn); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      string(models.PurchaseOrderReceived),
		"received_at": &now,
	}
	if err := s.db.Model(po).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetPurchaseOrder(id)
}
