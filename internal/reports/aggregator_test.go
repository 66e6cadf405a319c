package reports

import (
	"testing"
	"time"

	"mesob/internal/database"
	"mesob/internal/inventory"
	"mesob/internal/models"
	"mesob/internal/orders"

	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator(t *testing.T) (*Aggregator, *orders.Service, *gorm.DB) {
	t.Helper()

	db, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	ledger := inventory.NewLedger(db)
	orderSvc := orders.NewService(db, 0.15, nil)
	return NewAggregator(db, ledger), orderSvc, db
}

// seedSales opens two paid orders and one cancelled order today
func seedSales(t *testing.T, svc *orders.Service, db *gorm.DB) {
	t.Helper()

	table := &models.Table{Name: "T1", Capacity: 4, Status: string(models.TableStatusAvailable)}
	require.NoError(t, db.Create(table).Error)

	doro := &models.MenuItem{Name: "Doro Wat", Price: 100, Cost: 40, CategoryID: 1, IsAvailable: true}
	tibs := &models.MenuItem{Name: "Tibs", Price: 50, Cost: 30, CategoryID: 1, IsAvailable: true}
	require.NoError(t, db.Create(doro).Error)
	require.NoError(t, db.Create(tibs).Error)

	for i := 0; i < 2; i++ {
		order, err := svc.Create(1, orders.CreateRequest{TableID: table.ID})
		require.NoError(t, err)
		_, err = svc.AddItem(order.ID, orders.AddItemRequest{MenuItemID: doro.ID, Quantity: 2})
		require.NoError(t, err)
		_, err = svc.AddItem(order.ID, orders.AddItemRequest{MenuItemID: tibs.ID, Quantity: 1})
		require.NoError(t, err)
	}

	cancelled, err := svc.Create(1, orders.CreateRequest{TableID: table.ID})
	require.NoError(t, err)
	_, err = svc.AddItem(cancelled.ID, orders.AddItemRequest{MenuItemID: doro.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.SetStatus(cancelled.ID, "cancelled", "tester")
	require.NoError(t, err)
}

func today() (time.Time, time.Time) {
	day, _ := time.Parse("2006-01-02", time.Now().Format("2006-01-02"))
	return day, day
}

func TestSalesSummaryExcludesCancelled(t *testing.T) {
	agg, svc, db := newTestAggregator(t)
	seedSales(t, svc, db)
	from, to := today()

	days, err := agg.SalesSummary(from, to)
	require.NoError(t, err)
	require.Len(t, days, 1)

	// Two live orders at 250 subtotal each, 15% tax
	assert.Equal(t, 2, days[0].TotalOrders)
	assert.InDelta(t, 575.0, days[0].TotalSales, 1e-9)
	assert.InDelta(t, 75.0, days[0].TotalTax, 1e-9)
	assert.InDelta(t, 287.5, days[0].AvgOrderValue, 1e-9)
}

func TestSalesSummaryEmptyRange(t *testing.T) {
	agg, svc, db := newTestAggregator(t)
	seedSales(t, svc, db)

	past, _ := time.Parse("2006-01-02", "2020-01-01")
	days, err := agg.SalesSummary(past, past)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestProfitabilityRanksByProfit(t *testing.T) {
	agg, svc, db := newTestAggregator(t)
	seedSales(t, svc, db)
	from, to := today()

	result, err := agg.Profitability(from, to)
	require.NoError(t, err)
	require.Len(t, result, 2)

	// Doro Wat: 4 sold across the live orders, 100-40 margin each.
	// The cancelled order's line is excluded.
	assert.Equal(t, "Doro Wat", result[0].MenuItemName)
	assert.Equal(t, 4, result[0].QuantitySold)
	assert.InDelta(t, 400.0, result[0].Revenue, 1e-9)
	assert.InDelta(t, 240.0, result[0].Profit, 1e-9)
	assert.InDelta(t, 60.0, result[0].ProfitMargin, 1e-9)

	assert.Equal(t, "Tibs", result[1].MenuItemName)
	assert.Equal(t, 2, result[1].QuantitySold)
}

func TestEmployeePerformanceReport(t *testing.T) {
	agg, svc, db := newTestAggregator(t)

	table := &models.Table{Name: "T1", Capacity: 4, Status: string(models.TableStatusAvailable)}
	require.NoError(t, db.Create(table).Error)
	doro := &models.MenuItem{Name: "Doro Wat", Price: 100, Cost: 40, CategoryID: 1, IsAvailable: true}
	require.NoError(t, db.Create(doro).Error)

	alem := &models.User{Email: "alem@mesob.local", FullName: "Alem", Role: "staff", PasswordHash: "x", IsActive: true}
	sara := &models.User{Email: "sara@mesob.local", FullName: "Sara", Role: "staff", PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(alem).Error)
	require.NoError(t, db.Create(sara).Error)

	// Alem takes two orders, Sara one; Sara's second is cancelled
	for i := 0; i < 2; i++ {
		order, err := svc.Create(alem.ID, orders.CreateRequest{TableID: table.ID})
		require.NoError(t, err)
		_, err = svc.AddItem(order.ID, orders.AddItemRequest{MenuItemID: doro.ID, Quantity: 2})
		require.NoError(t, err)
	}
	order, err := svc.Create(sara.ID, orders.CreateRequest{TableID: table.ID})
	require.NoError(t, err)
	_, err = svc.AddItem(order.ID, orders.AddItemRequest{MenuItemID: doro.ID, Quantity: 1})
	require.NoError(t, err)

	cancelled, err := svc.Create(sara.ID, orders.CreateRequest{TableID: table.ID})
	require.NoError(t, err)
	_, err = svc.SetStatus(cancelled.ID, "cancelled", "tester")
	require.NoError(t, err)

	from, to := today()
	result, err := agg.EmployeePerformanceReport(from, to)
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, "Alem", result[0].EmployeeName)
	assert.Equal(t, 2, result[0].TotalOrders)
	assert.InDelta(t, 460.0, result[0].TotalSales, 1e-9)
	assert.InDelta(t, 230.0, result[0].AvgOrderValue, 1e-9)

	assert.Equal(t, "Sara", result[1].EmployeeName)
	assert.Equal(t, 1, result[1].TotalOrders)
	assert.InDelta(t, 115.0, result[1].TotalSales, 1e-9)
}

func TestVarianceReport(t *testing.T) {
	agg, _, db := newTestAggregator(t)
	ledger := inventory.NewLedger(db)

	flour := &models.Ingredient{Name: "teff flour", CurrentStock: 20, MinStock: 5, UnitCost: 0.08, Unit: "g"}
	require.NoError(t, ledger.CreateIngredient(flour))

	count, err := ledger.RecordCount(1, []inventory.CountLine{
		{IngredientID: flour.ID, CountedQuantity: 17},
	}, 0.5, "")
	require.NoError(t, err)

	lines, err := agg.VarianceReport(count.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "teff flour", lines[0].IngredientName)
	assert.Equal(t, -3.0, lines[0].Variance)
	assert.True(t, lines[0].Flagged)
}

func TestDashboardSummary(t *testing.T) {
	agg, svc, db := newTestAggregator(t)
	seedSales(t, svc, db)

	ledger := inventory.NewLedger(db)
	low := &models.Ingredient{Name: "berbere", CurrentStock: 2, MinStock: 10, UnitCost: 0.5, Unit: "g"}
	require.NoError(t, ledger.CreateIngredient(low))

	from, to := today()
	dashboard, err := agg.DashboardSummary(from, to)
	require.NoError(t, err)

	assert.Equal(t, 2, dashboard.TotalOrders)
	assert.InDelta(t, 575.0, dashboard.TotalSales, 1e-9)
	assert.NotEmpty(t, dashboard.TopSellingItems)
	assert.Equal(t, "Doro Wat", dashboard.TopSellingItems[0].MenuItemName)

	require.Len(t, dashboard.LowStockItems, 1)
	assert.Equal(t, 8.0, dashboard.LowStockItems[0].Shortage)
}
