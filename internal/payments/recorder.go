package payments

import (
	"errors"
	"fmt"

	"mesob/internal/inventory"
	"mesob/internal/models"
	"mesob/internal/orders"

	"github.com/jinzhu/gorm"
)

// ErrOrderCancelled is returned when a payment targets a cancelled order
var ErrOrderCancelled = errors.New("order is cancelled")

// Recorder records payments against orders and settles their payment
// status. Completing payment also issues the expected ingredient draw
// from the inventory ledger.
type Recorder struct {
	db     *gorm.DB
	ledger *inventory.Ledger
	orders *orders.Service
}

// NewRecorder creates a new payment recorder
func NewRecorder(db *gorm.DB, ledger *inventory.Ledger, orderSvc *orders.Service) *Recorder {
	return &Recorder{db: db, ledger: ledger, orders: orderSvc}
}

// Result reports the outcome of recording a payment. StockError carries
// a non-fatal failure of the follow-up stock issuing: the payment still
// stands and the ledger discrepancy is surfaced to the caller.
type Result struct {
	Payment       *models.Payment `json:"payment"`
	Order         *models.Order   `json:"order"`
	PaymentStatus string          `json:"payment_status"`
	StockIssued   bool            `json:"stock_issued"`
	StockError    string          `json:"stock_error,omitempty"`
}

// RecordPayment persists a payment. When accumulated payments cover the
// order total the order's payment status becomes paid, the order is
// advanced through the lifecycle where legal, and an issuing inventory
// transaction is recorded for the order's recipe draw. A smaller amount
// marks the order partially paid.
func (r *Recorder) RecordPayment(userID uint, payment *models.Payment) (*Result, error) {
	payment.UserID = userID
	if err := models.ValidatePayment(payment); err != nil {
		return nil, err
	}

	order, err := r.orders.Get(payment.OrderID)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}
	if order.Status == string(models.OrderStatusCancelled) {
		return nil, ErrOrderCancelled
	}
	if order.PaymentStatus == string(models.PaymentStatusPaid) {
		return nil, fmt.Errorf("order %s is already paid", order.Number)
	}

	if err := r.db.Create(payment).Error; err != nil {
		return nil, err
	}

	var paidSoFar float64
	row := r.db.Model(&models.Payment{}).
		Where("order_id = ?", order.ID).
		Select("coalesce(sum(amount), 0)").Row()
	if err := row.Scan(&paidSoFar); err != nil {
		return nil, err
	}

	result := &Result{Payment: payment}

	if paidSoFar >= order.Total {
		if err := r.db.Model(order).
			Update("payment_status", string(models.PaymentStatusPaid)).Error; err != nil {
			return nil, err
		}
		result.PaymentStatus = string(models.PaymentStatusPaid)

		// Advance a served order to paid through the state machine so the
		// transition lands in the history and frees the table.
		if order.Status == string(models.OrderStatusServed) {
			if _, err := r.orders.SetStatus(order.ID, string(models.OrderStatusPaid), "payment"); err != nil {
				return nil, err
			}
		}

		if err := r.issueStockForOrder(userID, order); err != nil {
			result.StockError = err.Error()
		} else {
			result.StockIssued = true
		}
	} else {
		if err := r.db.Model(order).
			Update("payment_status", string(models.PaymentStatusPartial)).Error; err != nil {
			return nil, err
		}
		result.PaymentStatus = string(models.PaymentStatusPartial)
	}

	updated, err := r.orders.Get(order.ID)
	if err != nil {
		return nil, err
	}
	result.Order = updated
	return result, nil
}

// ListPayments returns payments newest first, optionally for one order
func (r *Recorder) ListPayments(orderID uint) ([]models.Payment, error) {
	query := r.db.Order("created_at desc")
	if orderID != 0 {
		query = query.Where("order_id = ?", orderID)
	}
	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// issueStockForOrder records one issuing transaction covering the
// expected ingredient draw of every line item, derived from recipes.
func (r *Recorder) issueStockForOrder(userID uint, order *models.Order) error {
	draw := map[uint]float64{}

	for _, item := range order.Items {
		var recipe models.Recipe
		err := r.db.Preload("Ingredients").
			Where("menu_item_id = ?", item.MenuItemID).
			First(&recipe).Error
		if gorm.IsRecordNotFoundError(err) {
			continue // item has no recipe; nothing to draw
		}
		if err != nil {
			return err
		}

		yield := float64(recipe.YieldCount)
		if yield <= 0 {
			yield = 1
		}
		for _, line := range recipe.Ingredients {
			draw[line.IngredientID] += line.Quantity * float64(item.Quantity) / yield
		}
	}

	if len(draw) == 0 {
		return nil
	}

	txn := &models.InventoryTransaction{
		Type:        string(models.TransactionIssuing),
		UserID:      userID,
		ReferenceID: order.Number,
		Notes:       "order consumption",
	}
	for ingredientID, qty := range draw {
		var ingredient models.Ingredient
		if err := r.db.First(&ingredient, ingredientID).Error; err != nil {
			return err
		}
		txn.Items = append(txn.Items, models.InventoryTransactionItem{
			IngredientID: ingredientID,
			Quantity:     qty,
			UnitCost:     ingredient.UnitCost,
			TotalCost:    qty * ingredient.UnitCost,
		})
	}

	return r.ledger.RecordTransaction(txn)
}
