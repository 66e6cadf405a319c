package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// Vendor represents a supplier of ingredients
type Vendor struct {
	gorm.Model
	Name     string `gorm:"unique_index"`
	Contact  string
	Phone    string
	Email    string
	IsActive bool `gorm:"default:true"`
}

// PurchaseOrder represents an order placed with a vendor
type PurchaseOrder struct {
	gorm.Model
	Number     string `gorm:"unique_index"`
	VendorID   uint
	UserID     uint
	Status     string `gorm:"default:'draft'"`
	OrderedAt  *time.Time
	ReceivedAt *time.Time
	Notes      string
	Items      []PurchaseOrderItem `gorm:"foreignkey:PurchaseOrderID"`
}

// PurchaseOrderItem represents one ingredient line of a purchase order
type PurchaseOrderItem struct {
	gorm.Model
	PurchaseOrderID uint
	IngredientID    uint
	Quantity        float64
	UnitCost        float64
}

// PurchaseOrderStatus represents the possible states of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderDraft     PurchaseOrderStatus = "draft"
	PurchaseOrderSubmitted PurchaseOrderStatus = "submitted"
	PurchaseOrderApproved  PurchaseOrderStatus = "approved"
	PurchaseOrderReceived  PurchaseOrderStatus = "received"
	PurchaseOrderCancelled PurchaseOrderStatus = "cancelled"
)

var purchaseOrderTransitions = map[PurchaseOrderStatus]PurchaseOrderStatus{
	PurchaseOrderDraft:     PurchaseOrderSubmitted,
	PurchaseOrderSubmitted: PurchaseOrderApproved,
	PurchaseOrderApproved:  PurchaseOrderReceived,
}

// Terminal reports whether a purchase order in this status is closed
func (s PurchaseOrderStatus) Terminal() bool {
	return s == PurchaseOrderReceived || s == PurchaseOrderCancelled
}

// CanTransitionTo reports whether moving from s to next is legal
func (s PurchaseOrderStatus) CanTransitionTo(next PurchaseOrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == PurchaseOrderCancelled {
		return true
	}
	return purchaseOrderTransitions[s] == next
}

// Total returns the total cost of the purchase order lines
func (po *PurchaseOrder) Total() float64 {
	var total float64
	for _, item := range po.Items {
		total += item.Quantity * item.UnitCost
	}
	return total
}
