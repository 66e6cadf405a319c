package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// Table represents a dining table in the restaurant
type Table struct {
	gorm.Model
	Name      string `gorm:"unique_index"`
	Capacity  int
	Status    string `gorm:"default:'available'"`
	SectionID *uint
}

// TableStatus represents the possible states of a table
type TableStatus string

const (
	TableStatusAvailable TableStatus = "available"
	TableStatusOccupied  TableStatus = "occupied"
	TableStatusReserved  TableStatus = "reserved"
	TableStatusDirty     TableStatus = "dirty"
)

// Order represents a customer order placed against a table
type Order struct {
	gorm.Model
	Number        string `gorm:"unique_index"`
	TableID       uint
	UserID        uint
	CustomerName  string
	CustomerPhone string
	PartySize     int
	OrderType     string `gorm:"default:'dine-in'"`
	Status        string `gorm:"default:'new'"`
	PaymentStatus string `gorm:"default:'pending'"`
	Subtotal      float64
	Tax           float64
	Discount      float64
	Total         float64
	Items         []OrderItem          `gorm:"foreignkey:OrderID"`
	History       []OrderStatusHistory `gorm:"foreignkey:OrderID"`
}

// OrderItem represents a single line on an order
type OrderItem struct {
	gorm.Model
	OrderID    uint
	MenuItemID uint
	Quantity   int
	UnitPrice  float64
	Notes      string
	Status     string `gorm:"default:'new'"`
}

// OrderStatusHistory records a single status transition on an order
type OrderStatusHistory struct {
	gorm.Model
	OrderID    uint
	FromStatus string
	ToStatus   string
	Actor      string
	ChangedAt  time.Time
}

// OrderStatus represents the possible states of an order
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderType represents how an order is fulfilled
type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine-in"
	OrderTypeTakeout  OrderType = "takeout"
	OrderTypeDelivery OrderType = "delivery"
)

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// orderTransitions enumerates the legal forward transitions. Cancellation
// is legal from any non-terminal state and is handled in CanTransitionTo.
var orderTransitions = map[OrderStatus]OrderStatus{
	OrderStatusNew:       OrderStatusPreparing,
	OrderStatusPreparing: OrderStatusReady,
	OrderStatusReady:     OrderStatusServed,
	OrderStatusServed:    OrderStatusPaid,
}

// Terminal reports whether an order in this status can no longer change
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusPaid || s == OrderStatusCancelled
}

// CanTransitionTo reports whether moving from s to next is legal
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return orderTransitions[s] == next
}

// ValidOrderStatus reports whether the string names a known order status
func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusNew, OrderStatusPreparing, OrderStatusReady,
		OrderStatusServed, OrderStatusPaid, OrderStatusCancelled:
		return true
	}
	return false
}
