package orders

import (
	"errors"
	"fmt"
	"time"

	"mesob/internal/models"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

// ErrInvalidState is returned when an order in a terminal state is mutated
var ErrInvalidState = errors.New("order is in a terminal state")

// ErrInvalidTransition is returned for a status change the transition
// table does not allow.
var ErrInvalidTransition = errors.New("invalid order status transition")

// Notifier pushes order events to connected clients (kitchen displays)
type Notifier interface {
	NotifyOrder(event string, order *models.Order)
}

// Service manages the order lifecycle: creation, line items, totals and
// validated status transitions with history.
type Service struct {
	db       *gorm.DB
	taxRate  float64
	notifier Notifier
}

// NewService creates a new order service. notifier may be nil.
func NewService(db *gorm.DB, taxRate float64, notifier Notifier) *Service {
	return &Service{db: db, taxRate: taxRate, notifier: notifier}
}

// CreateRequest carries the fields for opening a new order
type CreateRequest struct {
	TableID       uint   `json:"table_id"`
	OrderType     string `json:"order_type"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	PartySize     int    `json:"party_size"`
}

// Create opens a new order in status "new" and marks the table occupied
func (s *Service) Create(userID uint, req CreateRequest) (*models.Order, error) {
	var table models.Table
	if err := s.db.First(&table, req.TableID).Error; err != nil {
		return nil, fmt.Errorf("table not found: %w", err)
	}

	orderType := req.OrderType
	if orderType == "" {
		orderType = string(models.OrderTypeDineIn)
	}

	order := &models.Order{
		Number:        uuid.New().String(),
		TableID:       req.TableID,
		UserID:        userID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		PartySize:     req.PartySize,
		OrderType:     orderType,
		Status:        string(models.OrderStatusNew),
		PaymentStatus: string(models.PaymentStatusPending),
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Model(&table).Update("status", string(models.TableStatusOccupied)).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyOrder("order_created", order)
	}
	return order, nil
}

// Get returns an order with its items and status history
func (s *Service) Get(id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").Preload("History").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns orders newest first, optionally filtered by status
func (s *Service) List(status string) ([]models.Order, error) {
	query := s.db.Preload("Items")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var orders []models.Order
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// mutable rejects changes to orders that are terminal or paid in full.
// A settled total must not drift: stock was already issued against it
// and further payments are refused.
func mutable(order *models.Order) error {
	if models.OrderStatus(order.Status).Terminal() {
		return fmt.Errorf("%w: order is %s", ErrInvalidState, order.Status)
	}
	if order.PaymentStatus == string(models.PaymentStatusPaid) {
		return fmt.Errorf("%w: order is paid in full", ErrInvalidState)
	}
	return nil
}

// AddItemRequest carries the fields for appending a line item
type AddItemRequest struct {
	MenuItemID uint   `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes"`
}

// AddItem appends a line item at the menu item's current price and
// recomputes the order totals. Terminal orders reject the mutation.
func (s *Service) AddItem(orderID uint, req AddItemRequest) (*models.Order, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("item quantity must be greater than 0")
	}

	order, err := s.Get(orderID)
	if err != nil {
		return nil, err
	}
	if err := mutable(order); err != nil {
		return nil, fmt.Errorf("cannot add item: %w", err)
	}

	var menuItem models.MenuItem
	if err := s.db.First(&menuItem, req.MenuItemID).Error; err != nil {
		return nil, fmt.Errorf("menu item not found: %w", err)
	}
	if !menuItem.IsAvailable {
		return nil, fmt.Errorf("menu item %q is not available", menuItem.Name)
	}

	item := models.OrderItem{
		OrderID:    orderID,
		MenuItemID: req.MenuItemID,
		Quantity:   req.Quantity,
		UnitPrice:  menuItem.Price,
		Notes:      req.Notes,
		Status:     string(models.OrderStatusNew),
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}

	return s.recomputeTotals(orderID)
}

// RemoveItem deletes a line item and recomputes the order totals
func (s *Service) RemoveItem(orderID, itemID uint) (*models.Order, error) {
	order, err := s.Get(orderID)
	if err != nil {
		return nil, err
	}
	if err := mutable(order); err != nil {
		return nil, fmt.Errorf("cannot remove item: %w", err)
	}

	var item models.OrderItem
	if err := s.db.Where("id = ? AND order_id = ?", itemID, orderID).First(&item).Error; err != nil {
		return nil, err
	}
	if err := s.db.Delete(&item).Error; err != nil {
		return nil, err
	}

	return s.recomputeTotals(orderID)
}

// ApplyDiscount sets the order discount and recomputes the total
func (s *Service) ApplyDiscount(orderID uint, discount float64) (*models.Order, error) {
	if discount < 0 {
		return nil, fmt.Errorf("discount must not be negative")
	}
	order, err := s.Get(orderID)
	if err != nil {
		return nil, err
	}
	if err := mutable(order); err != nil {
		return nil, fmt.Errorf("cannot discount: %w", err)
	}
	if err := s.db.Model(order).Update("discount", discount).Error; err != nil {
		return nil, err
	}
	return s.recomputeTotals(orderID)
}

// recomputeTotals rederives subtotal, tax and total from the line items
func (s *Service) recomputeTotals(orderID uint) (*models.Order, error) {
	order, err := s.Get(orderID)
	if err != nil {
		return nil, err
	}

	var subtotal float64
	for _, item := range order.Items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}
	tax := subtotal * s.taxRate
	total := subtotal + tax - order.Discount

	updates := map[string]interface{}{
		"subtotal": subtotal,
		"tax":      tax,
		"total":    total,
	}
	if err := s.db.Model(order).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(orderID)
}

// SetStatus moves the order to a new status after validating the
// transition, and appends a status history record.
func (s *Service) SetStatus(orderID uint, next string, actor string) (*models.Order, error) {
	if !models.ValidOrderStatus(next) {
		return nil, fmt.Errorf("unknown order status %q", next)
	}

	order, err := s.Get(orderID)
	if err != nil {
		return nil, err
	}

	current := models.OrderStatus(order.Status)
	target := models.OrderStatus(next)
	if !current.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, target)
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	if err := tx.Model(order).Update("status", next).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	history := models.OrderStatusHistory{
		OrderID:    orderID,
		FromStatus: string(current),
		ToStatus:   next,
		Actor:      actor,
		ChangedAt:  time.Now(),
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// A paid order releases its table for cleaning; a cancelled order
	// frees it entirely.
	switch target {
	case models.OrderStatusPaid:
		if err := tx.Model(&models.Table{}).Where("id = ?", order.TableID).
			Update("status", string(models.TableStatusDirty)).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	case models.OrderStatusCancelled:
		if err := tx.Model(&models.Table{}).Where("id = ?", order.TableID).
			Update("status", string(models.TableStatusAvailable)).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	updated, err := s.Get(orderID)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.NotifyOrder("order_status_changed", updated)
	}
	return updated, nil
}

// Tables

func (s *Service) ListTables() ([]models.Table, error) {
	var tables []models.Table
	if err := s.db.Order("name").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *Service) GetTable(id uint) (*models.Table, error) {
	var table models.Table
	if err := s.db.First(&table, id).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (s *Service) CreateTable(table *models.Table) error {
	if table.Name == "" {
		return fmt.Errorf("table name is required")
	}
	if table.Capacity <= 0 {
		return fmt.Errorf("table capacity must be greater than 0")
	}
	if table.Status == "" {
		table.Status = string(models.TableStatusAvailable)
	}
	return s.db.Create(table).Error
}

func (s *Service) UpdateTable(id uint, updates map[string]interface{}) (*models.Table, error) {
	var table models.Table
	if err := s.db.First(&table, id).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&table).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

// DeleteTable removes a table unless it still has active orders
func (s *Service) DeleteTable(id uint) error {
	var count int64
	s.db.Model(&models.Order{}).
		Where("table_id = ? AND status IN (?)", id, []string{
			string(models.OrderStatusNew),
			string(models.OrderStatusPreparing),
			string(models.OrderStatusReady),
			string(models.OrderStatusServed),
		}).Count(&count)
	if count > 0 {
		return fmt.Errorf("cannot delete table: it has active orders")
	}
	return s.db.Delete(&models.Table{}, "id = ?", id).Error
}
