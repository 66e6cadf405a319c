package api

import (
	"net/http"

	"mesob/internal/auth"
	"mesob/internal/catalog"
	"mesob/internal/config"
	"mesob/internal/inventory"
	"mesob/internal/models"
	"mesob/internal/monitoring"
	"mesob/internal/orders"
	"mesob/internal/payments"
	"mesob/internal/purchasing"
	"mesob/internal/reports"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

// Server wires the HTTP surface over the domain services
type Server struct {
	router     *gin.Engine
	cfg        *config.Config
	auth       *auth.Service
	catalog    *catalog.Service
	ledger     *inventory.Ledger
	orders     *orders.Service
	payments   *payments.Recorder
	purchasing *purchasing.Service
	reports    *reports.Aggregator
	monitor    *monitoring.Monitor
	hub        *Hub
}

// NewServer assembles services and routes over the given database
func NewServer(db *gorm.DB, cfg *config.Config, monitor *monitoring.Monitor) *Server {
	hub := NewHub()
	ledger := inventory.NewLedger(db)
	orderSvc := orders.NewService(db, cfg.POS.TaxRate, hub)

	s := &Server{
		router:     gin.Default(),
		cfg:        cfg,
		auth:       auth.NewService(db, cfg.Auth.Secret, cfg.AuthTTL()),
		catalog:    catalog.NewService(db),
		ledger:     ledger,
		orders:     orderSvc,
		payments:   payments.NewRecorder(db, ledger, orderSvc),
		purchasing: purchasing.NewService(db, ledger),
		reports:    reports.NewAggregator(db, ledger),
		monitor:    monitor,
		hub:        hub,
	}

	s.setupRoutes()
	return s
}

// Router returns the Gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	if s.monitor != nil {
		s.router.Use(s.monitor.Middleware())
	}

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/ws/kitchen", s.handleKitchenSocket)
	s.router.POST("/api/v1/auth/login", s.handleLogin)

	v1 := s.router.Group("/api/v1")
	v1.Use(s.auth.RequireAuth())
	{
		v1.GET("/metrics", s.handleMetricsSnapshot)

		// Users
		admin := v1.Group("/users", auth.RequireRole(models.RoleAdmin))
		{
			admin.GET("", s.handleListUsers)
			admin.POST("", s.handleCreateUser)
		}

		// Menu catalog
		menu := v1.Group("/menu")
		{
			menu.GET("/categories", s.handleListCategories)
			menu.GET("/items", s.handleListMenuItems)
			menu.GET("/items/:id", s.handleGetMenuItem)
			menu.GET("/items/:id/recipe", s.handleGetRecipe)
			menu.GET("/items/:id/cogs", s.handleComputeCOGS)
			menu.GET("/items/:id/modifiers", s.handleListModifiers)

			write := menu.Group("", auth.RequireRole(models.RoleAdmin))
			{
				write.POST("/categories", s.handleCreateCategory)
				write.PUT("/categories/:id", s.handleUpdateCategory)
				write.DELETE("/categories/:id", s.handleDeleteCategory)
				write.POST("/items", s.handleCreateMenuItem)
				write.PUT("/items/:id", s.handleUpdateMenuItem)
				write.DELETE("/items/:id", s.handleDeleteMenuItem)
				write.PUT("/items/:id/recipe", s.handleUpsertRecipe)
				write.POST("/items/:id/modifiers", s.handleCreateModifier)
				write.DELETE("/modifiers/:id", s.handleDeleteModifier)
			}
		}

		// Inventory
		inv := v1.Group("/inventory")
		{
			inv.GET("/ingredients", s.handleListIngredients)
			inv.GET("/ingredients/:id", s.handleGetIngredient)
			inv.GET("/units", s.handleListUnits)
			inv.GET("/transactions", s.handleListTransactions)
			inv.GET("/transactions/:id", s.handleGetTransaction)
			inv.GET("/counts/:id", s.handleGetCount)
			inv.GET("/low-stock", s.handleLowStock)

			write := inv.Group("", auth.RequireRole(models.RoleManager))
			{
				write.POST("/ingredients", s.handleCreateIngredient)
				write.PUT("/ingredients/:id", s.handleUpdateIngredient)
				write.DELETE("/ingredients/:id", s.handleDeleteIngredient)
				write.POST("/units", s.handleCreateUnit)
				write.POST("/transactions", s.handleCreateTransaction)
				write.POST("/counts", s.handleCreateCount)
			}
		}

		// POS
		pos := v1.Group("/pos")
		{
			pos.GET("/tables", s.handleListTables)
			pos.GET("/tables/:id", s.handleGetTable)
			pos.POST("/tables", auth.RequireRole(models.RoleManager), s.handleCreateTable)
			pos.PUT("/tables/:id", auth.RequireRole(models.RoleManager), s.handleUpdateTable)
			pos.DELETE("/tables/:id", auth.RequireRole(models.RoleAdmin), s.handleDeleteTable)

			pos.GET("/orders", s.handleListOrders)
			pos.POST("/orders", s.handleCreateOrder)
			pos.GET("/orders/:id", s.handleGetOrder)
			pos.POST("/orders/:id/items", s.handleAddOrderItem)
			pos.DELETE("/orders/:id/items/:itemId", s.handleRemoveOrderItem)
			pos.PUT("/orders/:id/status", s.handleSetOrderStatus)
			pos.PUT("/orders/:id/discount", s.handleApplyDiscount)

			pos.GET("/payments", s.handleListPayments)
			pos.POST("/payments", s.handleRecordPayment)
		}

		// Purchasing
		purchasingGroup := v1.Group("/purchasing", auth.RequireRole(models.RoleManager))
		{
			purchasingGroup.GET("/vendors", s.handleListVendors)
			purchasingGroup.POST("/vendors", s.handleCreateVendor)
			purchasingGroup.PUT("/vendors/:id", s.handleUpdateVendor)
			purchasingGroup.GET("/purchase-orders", s.handleListPurchaseOrders)
			purchasingGroup.POST("/purchase-orders", s.handleCreatePurchaseOrder)
			purchasingGroup.GET("/purchase-orders/:id", s.handleGetPurchaseOrder)
			purchasingGroup.PUT("/purchase-orders/:id/status", s.handleSetPurchaseOrderStatus)
			purchasingGroup.POST("/purchase-orders/:id/receive", s.handleReceivePurchaseOrder)
		}

		// Reports
		reportsGroup := v1.Group("/reports", auth.RequireRole(models.RoleManager))
		{
			reportsGroup.GET("/sales", s.handleSalesSummary)
			reportsGroup.GET("/profitability", s.handleProfitability)
			reportsGroup.GET("/employee-performance", s.handleEmployeePerformance)
			reportsGroup.GET("/variance/:countId", s.handleVarianceReport)
			reportsGroup.GET("/dashboard/summary", s.handleDashboardSummary)
		}
	}
}
