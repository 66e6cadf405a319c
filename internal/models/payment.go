package models

import (
	"fmt"

	"github.com/jinzhu/gorm"
)

// Payment represents a payment recorded against an order
type Payment struct {
	gorm.Model
	OrderID       uint
	UserID        uint
	Amount        float64
	Method        string
	TransactionID string
	Status        string `gorm:"default:'completed'"`
	Notes         string
}

// PaymentMethod represents the accepted payment methods
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTelebirr PaymentMethod = "telebirr"
	PaymentMethodChapa    PaymentMethod = "chapa"
)

// ValidPaymentMethod reports whether the string names a known method
func ValidPaymentMethod(m string) bool {
	switch PaymentMethod(m) {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTelebirr, PaymentMethodChapa:
		return true
	}
	return false
}

// ValidatePayment validates a payment before persistence
func ValidatePayment(p *Payment) error {
	if p.OrderID == 0 {
		return fmt.Errorf("payment order reference is required")
	}
	if p.Amount <= 0 {
		return fmt.Errorf("payment amount must be greater than 0")
	}
	if !ValidPaymentMethod(p.Method) {
		return fmt.Errorf("unknown payment method %q", p.Method)
	}
	return nil
}
