package reports

import (
	"sort"
	"time"

	"mesob/internal/inventory"
	"mesob/internal/models"

	"github.com/jinzhu/gorm"
)

// Aggregator derives read-only summaries by scanning the stores over a
// date range. Every call rescans; nothing is materialized.
type Aggregator struct {
	db     *gorm.DB
	ledger *inventory.Ledger
}

// NewAggregator creates a new reporting aggregator
func NewAggregator(db *gorm.DB, ledger *inventory.Ledger) *Aggregator {
	return &Aggregator{db: db, ledger: ledger}
}

// DailySales summarizes order totals for one calendar day
type DailySales struct {
	Date          string  `json:"date"`
	TotalSales    float64 `json:"total_sales"`
	TotalTax      float64 `json:"total_tax"`
	TotalDiscount float64 `json:"total_discount"`
	TotalOrders   int     `json:"total_orders"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// SalesSummary groups order totals by day over the range (inclusive).
// Cancelled orders are excluded.
func (a *Aggregator) SalesSummary(from, to time.Time) ([]DailySales, error) {
	var orders []models.Order
	err := a.db.
		Where("created_at >= ? AND created_at < ?", from, to.AddDate(0, 0, 1)).
		Where("status <> ?", string(models.OrderStatusCancelled)).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	byDay := map[string]*DailySales{}
	for _, order := range orders {
		day := order.CreatedAt.Format("2006-01-02")
		entry, ok := byDay[day]
		if !ok {
			entry = &DailySales{Date: day}
			byDay[day] = entry
		}
		entry.TotalSales += order.Total
		entry.TotalTax += order.Tax
		entry.TotalDiscount += order.Discount
		entry.TotalOrders++
	}

	days := make([]DailySales, 0, len(byDay))
	for _, entry := range byDay {
		if entry.TotalOrders > 0 {
			entry.AvgOrderValue = entry.TotalSales / float64(entry.TotalOrders)
		}
		days = append(days, *entry)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

// ItemProfitability reports sales and profit for one menu item
type ItemProfitability struct {
	MenuItemID   uint    `json:"menu_item_id"`
	MenuItemName string  `json:"menu_item_name"`
	QuantitySold int     `json:"quantity_sold"`
	Revenue      float64 `json:"revenue"`
	Cost         float64 `json:"cost"`
	Profit       float64 `json:"profit"`
	ProfitMargin float64 `json:"profit_margin"` // percent of revenue
}

// Profitability joins sold quantities against menu item price and cost
// over the range, most profitable first.
func (a *Aggregator) Profitability(from, to time.Time) ([]ItemProfitability, error) {
	var items []models.OrderItem
	err := a.db.
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status <> ?", string(models.OrderStatusCancelled)).
		Where("order_items.created_at >= ? AND order_items.created_at < ?", from, to.AddDate(0, 0, 1)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	byItem := map[uint]*ItemProfitability{}
	unitCost := map[uint]float64{}
	for _, line := range items {
		entry, ok := byItem[line.MenuItemID]
		if !ok {
			var menuItem models.MenuItem
			if err := a.db.First(&menuItem, line.MenuItemID).Error; err != nil {
				continue // menu item removed since the sale
			}
			entry = &ItemProfitability{
				MenuItemID:   menuItem.ID,
				MenuItemName: menuItem.Name,
			}
			byItem[line.MenuItemID] = entry
			unitCost[line.MenuItemID] = menuItem.Cost
		}

		qty := float64(line.Quantity)
		entry.QuantitySold += line.Quantity
		entry.Revenue += line.UnitPrice * qty
		entry.Cost += unitCost[line.MenuItemID] * qty
	}

	result := make([]ItemProfitability, 0, len(byItem))
	for _, entry := range byItem {
		entry.Profit = entry.Revenue - entry.Cost
		if entry.Revenue > 0 {
			entry.ProfitMargin = entry.Profit / entry.Revenue * 100
		}
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Profit > result[j].Profit })
	return result, nil
}

// EmployeePerformance reports orders handled and sales per employee
type EmployeePerformance struct {
	EmployeeID    uint    `json:"employee_id"`
	EmployeeName  string  `json:"employee_name"`
	TotalOrders   int     `json:"total_orders"`
	TotalSales    float64 `json:"total_sales"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// EmployeePerformanceReport groups order counts and totals by the user
// who took the order, highest sales first. Cancelled orders are excluded.
func (a *Aggregator) EmployeePerformanceReport(from, to time.Time) ([]EmployeePerformance, error) {
	var orders []models.Order
	err := a.db.
		Where("created_at >= ? AND created_at < ?", from, to.AddDate(0, 0, 1)).
		Where("status <> ?", string(models.OrderStatusCancelled)).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	byUser := map[uint]*EmployeePerformance{}
	for _, order := range orders {
		entry, ok := byUser[order.UserID]
		if !ok {
			entry = &EmployeePerformance{EmployeeID: order.UserID}
			var user models.User
			if err := a.db.First(&user, order.UserID).Error; err == nil {
				entry.EmployeeName = user.FullName
			}
			byUser[order.UserID] = entry
		}
		entry.TotalOrders++
		entry.TotalSales += order.Total
	}

	result := make([]EmployeePerformance, 0, len(byUser))
	for _, entry := range byUser {
		if entry.TotalOrders > 0 {
			entry.AvgOrderValue = entry.TotalSales / float64(entry.TotalOrders)
		}
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TotalSales > result[j].TotalSales })
	return result, nil
}

// VarianceLine reports counted vs system quantity for one ingredient
type VarianceLine struct {
	IngredientID    uint    `json:"ingredient_id"`
	IngredientName  string  `json:"ingredient_name"`
	SystemQuantity  float64 `json:"system_quantity"`
	CountedQuantity float64 `json:"counted_quantity"`
	Variance        float64 `json:"variance"`
	Flagged         bool    `json:"flagged"`
}

// VarianceReport returns the per-ingredient variance of a stock count
func (a *Aggregator) VarianceReport(countID uint) ([]VarianceLine, error) {
	count, err := a.ledger.GetCount(countID)
	if err != nil {
		return nil, err
	}

	lines := make([]VarianceLine, 0, len(count.Items))
	for _, item := range count.Items {
		line := VarianceLine{
			IngredientID:    item.IngredientID,
			SystemQuantity:  item.SystemQuantity,
			CountedQuantity: item.CountedQuantity,
			Variance:        item.Variance,
			Flagged:         item.Flagged,
		}
		var ingredient models.Ingredient
		if err := a.db.First(&ingredient, item.IngredientID).Error; err == nil {
			line.IngredientName = ingredient.Name
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Dashboard carries the headline numbers for the reporting dashboard
type Dashboard struct {
	TotalSales      float64                  `json:"total_sales"`
	TotalOrders     int                      `json:"total_orders"`
	AvgOrderValue   float64                  `json:"avg_order_value"`
	TopSellingItems []ItemProfitability      `json:"top_selling_items"`
	LowStockItems   []inventory.LowStockItem `json:"low_stock_items"`
	DateRange       string                   `json:"date_range"`
}

// DashboardSummary aggregates the headline metrics for the range
func (a *Aggregator) DashboardSummary(from, to time.Time) (*Dashboard, error) {
	days, err := a.SalesSummary(from, to)
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		DateRange: from.Format("2006-01-02") + " to " + to.Format("2006-01-02"),
	}
	for _, day := range days {
		dashboard.TotalSales += day.TotalSales
		dashboard.TotalOrders += day.TotalOrders
	}
	if dashboard.TotalOrders > 0 {
		dashboard.AvgOrderValue = dashboard.TotalSales / float64(dashboard.TotalOrders)
	}

	profitability, err := a.Profitability(from, to)
	if err != nil {
		return nil, err
	}
	sort.Slice(profitability, func(i, j int) bool {
		return profitability[i].QuantitySold > profitability[j].QuantitySold
	})
	if len(profitability) > 5 {
		profitability = profitability[:5]
	}
	dashboard.TopSellingItems = profitability

	lowStock, err := a.ledger.LowStock()
	if err != nil {
		return nil, err
	}
	dashboard.LowStockItems = lowStock

	return dashboard, nil
}
