package payments

import (
	"testing"

	"mesob/internal/database"
	"mesob/internal/inventory"
	"mesob/internal/models"
	"mesob/internal/orders"

	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db       *gorm.DB
	ledger   *inventory.Ledger
	orders   *orders.Service
	recorder *Recorder

	table *models.Table
	doro  *models.MenuItem
	flour *models.Ingredient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	f := &fixture{db: db}
	f.ledger = inventory.NewLedger(db)
	f.orders = orders.NewService(db, 0.15, nil)
	f.recorder = NewRecorder(db, f.ledger, f.orders)

	f.table = &models.Table{Name: "T1", Capacity: 4, Status: string(models.TableStatusAvailable)}
	require.NoError(t, db.Create(f.table).Error)

	f.doro = &models.MenuItem{Name: "Doro Wat", Price: 100, CategoryID: 1, IsAvailable: true}
	require.NoError(t, db.Create(f.doro).Error)

	f.flour = &models.Ingredient{Name: "berbere", CurrentStock: 100, MinStock: 10, UnitCost: 0.5, Unit: "g"}
	require.NoError(t, f.ledger.CreateIngredient(f.flour))

	recipe := &models.Recipe{
		MenuItemID: f.doro.ID,
		YieldCount: 2,
		YieldUnit:  "servings",
		Ingredients: []models.RecipeIngredient{
			{IngredientID: f.flour.ID, Quantity: 30, Unit: "g"},
		},
	}
	require.NoError(t, db.Create(recipe).Error)

	return f
}

// servedOrder opens an order with two portions and walks it to served
func (f *fixture) servedOrder(t *testing.T) *models.Order {
	t.Helper()

	order, err := f.orders.Create(1, orders.CreateRequest{TableID: f.table.ID})
	require.NoError(t, err)
	_, err = f.orders.AddItem(order.ID, orders.AddItemRequest{MenuItemID: f.doro.ID, Quantity: 2})
	require.NoError(t, err)

	for _, next := range []string{"preparing", "ready", "served"} {
		_, err = f.orders.SetStatus(order.ID, next, "tester")
		require.NoError(t, err)
	}

	order, err = f.orders.Get(order.ID)
	require.NoError(t, err)
	return order
}

func TestFullPaymentSettlesOrderAndIssuesStock(t *testing.T) {
	f := newFixture(t)
	order := f.servedOrder(t)
	require.Equal(t, 230.0, order.Total) // 200 + 15% tax

	result, err := f.recorder.RecordPayment(1, &models.Payment{
		OrderID: order.ID,
		Amount:  230,
		Method:  string(models.PaymentMethodCash),
	})
	require.NoError(t, err)

	assert.Equal(t, string(models.PaymentStatusPaid), result.PaymentStatus)
	assert.Equal(t, string(models.OrderStatusPaid), result.Order.Status)
	assert.True(t, result.StockIssued)
	assert.Empty(t, result.StockError)

	// 2 portions from a 2-serving recipe draw one full recipe quantity
	ingredient, err := f.ledger.GetIngredient(f.flour.ID)
	require.NoError(t, err)
	assert.Equal(t, 70.0, ingredient.CurrentStock)

	txns, err := f.ledger.ListTransactions()
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, string(models.TransactionIssuing), txns[0].Type)
	assert.Equal(t, order.Number, txns[0].ReferenceID)
}

func TestPartialPaymentLeavesOrderOpen(t *testing.T) {
	f := newFixture(t)
	order := f.servedOrder(t)

	result, err := f.recorder.RecordPayment(1, &models.Payment{
		OrderID: order.ID,
		Amount:  100,
		Method:  string(models.PaymentMethodTelebirr),
	})
	require.NoError(t, err)

	assert.Equal(t, string(models.PaymentStatusPartial), result.PaymentStatus)
	assert.Equal(t, string(models.OrderStatusServed), result.Order.Status)
	assert.False(t, result.StockIssued)

	// No stock moves until the balance clears
	ingredient, err := f.ledger.GetIngredient(f.flour.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, ingredient.CurrentStock)

	// The remaining balance settles the order
	result, err = f.recorder.RecordPayment(1, &models.Payment{
		OrderID: order.ID,
		Amount:  130,
		Method:  string(models.PaymentMethodCash),
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.PaymentStatusPaid), result.PaymentStatus)
	assert.True(t, result.StockIssued)
}

func TestEarlyFullPaymentFreezesOrderItems(t *testing.T) {
	f := newFixture(t)

	// Full payment lands while the order is still "new"
	order, err := f.orders.Create(1, orders.CreateRequest{TableID: f.table.ID})
	require.NoError(t, err)
	_, err = f.orders.AddItem(order.ID, orders.AddItemRequest{MenuItemID: f.doro.ID, Quantity: 2})
	require.NoError(t, err)

	result, err := f.recorder.RecordPayment(1, &models.Payment{
		OrderID: order.ID,
		Amount:  230,
		Method:  string(models.PaymentMethodCash),
	})
	require.NoError(t, err)
	require.Equal(t, string(models.PaymentStatusPaid), result.PaymentStatus)

	// Stock was issued for the paid items; the total must not grow
	_, err = f.orders.AddItem(order.ID, orders.AddItemRequest{MenuItemID: f.doro.ID, Quantity: 5})
	assert.ErrorIs(t, err, orders.ErrInvalidState)

	unchanged, err := f.orders.Get(order.ID)
	require.NoError(t, err)
	assert.Equal(t, 230.0, unchanged.Total)
}

func TestPaymentRejectedForCancelledOrder(t *testing.T) {
	f := newFixture(t)
	order, err := f.orders.Create(1, orders.CreateRequest{TableID: f.table.ID})
	require.NoError(t, err)
	_, err = f.orders.SetStatus(order.ID, "cancelled", "tester")
	require.NoError(t, err)

	_, err = f.recorder.RecordPayment(1, &models.Payment{
		OrderID: order.ID,
		Amount:  50,
		Method:  string(models.PaymentMethodCash),
	})
	assert.ErrorIs(t, err, ErrOrderCancelled)
}

func TestPaymentRejectedWhenAlreadyPaid(t *testing.T) {
	f := newFixture(t)
	order := f.servedOrder(t)

	_, err := f.recorder.RecordPayment(1, &models.Payment{
		OrderID: order.ID,
		Amount:  230,
		Method:  string(models.PaymentMethodCard),
	})
	require.NoError(t, err)

	_, err = f.recorder.RecordPayment(1, &models.Payment{
		OrderID: order.ID,
		Amount:  10,
		Method:  string(models.PaymentMethodCash),
	})
	assert.Error(t, err)
}

func TestStockShortfallDoesNotVoidPayment(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(f.flour).Updates(map[string]interface{}{
		"current_stock": 10.0,
	}).Error)

	order := f.servedOrder(t)

	result, err := f.recorder.RecordPayment(1, &models.Payment{
		OrderID: order.ID,
		Amount:  230,
		Method:  string(models.PaymentMethodChapa),
	})
	require.NoError(t, err)

	// The payment stands; the failed draw is surfaced, not fatal
	assert.Equal(t, string(models.PaymentStatusPaid), result.PaymentStatus)
	assert.False(t, result.StockIssued)
	assert.NotEmpty(t, result.StockError)
}

func TestPaymentValidation(t *testing.T) {
	f := newFixture(t)
	order := f.servedOrder(t)

	_, err := f.recorder.RecordPayment(1, &models.Payment{
		OrderID: order.ID,
		Amount:  -5,
		Method:  string(models.PaymentMethodCash),
	})
	assert.Error(t, err)

	_, err = f.recorder.RecordPayment(1, &models.Payment{
		OrderID: order.ID,
		Amount:  230,
		Method:  "barter",
	})
	assert.Error(t, err)
}
