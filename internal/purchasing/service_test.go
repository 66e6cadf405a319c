package purchasing

import (
	"testing"

	"mesob/internal/database"
	"mesob/internal/inventory"
	"mesob/internal/models"

	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *inventory.Ledger, *gorm.DB) {
	t.Helper()

	db, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	ledger := inventory.NewLedger(db)
	return NewService(db, ledger), ledger, db
}

func seedPurchasing(t *testing.T, svc *Service, ledger *inventory.Ledger) (*models.Vendor, *models.Ingredient) {
	t.Helper()

	vendor := &models.Vendor{Name: "Merkato Supplies", Phone: "+251911000000"}
	require.NoError(t, svc.CreateVendor(vendor))

	teff := &models.Ingredient{Name: "teff flour", CurrentStock: 5, MinStock: 10, UnitCost: 0.08, Unit: "g"}
	require.NoError(t, ledger.CreateIngredient(teff))

	return vendor, teff
}

func TestCreatePurchaseOrderStartsDraft(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	vendor, teff := seedPurchasing(t, svc, ledger)

	po := &models.PurchaseOrder{
		VendorID: vendor.ID,
		Items: []models.PurchaseOrderItem{
			{IngredientID: teff.ID, Quantity: 5000, UnitCost: 0.07},
		},
	}
	require.NoError(t, svc.CreatePurchaseOrder(1, po))

	assert.NotEmpty(t, po.Number)
	assert.Equal(t, string(models.PurchaseOrderDraft), po.Status)
	assert.Nil(t, po.OrderedAt)
}

func TestCreatePurchaseOrderValidation(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	vendor, teff := seedPurchasing(t, svc, ledger)

	err := svc.CreatePurchaseOrder(1, &models.PurchaseOrder{VendorID: vendor.ID})
	assert.Error(t, err)

	err = svc.CreatePurchaseOrder(1, &models.PurchaseOrder{
		VendorID: vendor.ID,
		Items:    []models.PurchaseOrderItem{{IngredientID: teff.ID, Quantity: 0}},
	})
	assert.Error(t, err)

	err = svc.CreatePurchaseOrder(1, &models.PurchaseOrder{
		VendorID: 999,
		Items:    []models.PurchaseOrderItem{{IngredientID: teff.ID, Quantity: 1}},
	})
	assert.Error(t, err)
}

func TestPurchaseOrderLifecycle(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	vendor, teff := seedPurchasing(t, svc, ledger)

	po := &models.PurchaseOrder{
		VendorID: vendor.ID,
		Items: []models.PurchaseOrderItem{
			{IngredientID: teff.ID, Quantity: 5000, UnitCost: 0.07},
		},
	}
	require.NoError(t, svc.CreatePurchaseOrder(1, po))

	// Receiving a draft is out of order
	_, err := svc.Receive(1, po.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	updated, err := svc.SetStatus(po.ID, string(models.PurchaseOrderSubmitted))
	require.NoError(t, err)
	assert.NotNil(t, updated.OrderedAt)

	_, err = svc.SetStatus(po.ID, string(models.PurchaseOrderApproved))
	require.NoError(t, err)

	received, err := svc.Receive(1, po.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.PurchaseOrderReceived), received.Status)
	assert.NotNil(t, received.ReceivedAt)

	// The receipt landed in the inventory ledger
	ingredient, err := ledger.GetIngredient(teff.ID)
	require.NoError(t, err)
	assert.Equal(t, 5005.0, ingredient.CurrentStock)

	txns, err := ledger.ListTransactions()
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, string(models.TransactionReceiving), txns[0].Type)
	assert.Equal(t, po.Number, txns[0].ReferenceID)
	assert.InDelta(t, 350.0, txns[0].Items[0].TotalCost, 1e-9)

	// A received order is terminal
	_, err = svc.SetStatus(po.ID, string(models.PurchaseOrderCancelled))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelNonTerminalPurchaseOrder(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	vendor, teff := seedPurchasing(t, svc, ledger)

	po := &models.PurchaseOrder{
		VendorID: vendor.ID,
		Items: []models.PurchaseOrderItem{
			{IngredientID: teff.ID, Quantity: 100, UnitCost: 0.07},
		},
	}
	require.NoError(t, svc.CreatePurchaseOrder(1, po))

	_, err := svc.SetStatus(po.ID, string(models.PurchaseOrderSubmitted))
	require.NoError(t, err)

	cancelled, err := svc.SetStatus(po.ID, string(models.PurchaseOrderCancelled))
	require.NoError(t, err)
	assert.Equal(t, string(models.PurchaseOrderCancelled), cancelled.Status)

	// Stock never moved
	ingredient, err := ledger.GetIngredient(teff.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, ingredient.CurrentStock)
}

func TestPurchaseOrderTotal(t *testing.T) {
	po := models.PurchaseOrder{
		Items: []models.PurchaseOrderItem{
			{Quantity: 10, UnitCost: 2},
			{Quantity: 5, UnitCost: 3},
		},
	}
	assert.Equal(t, 35.0, po.Total())
}
