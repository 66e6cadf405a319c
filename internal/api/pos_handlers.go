package api

import (
	"net/http"
	"strconv"

	"mesob/internal/models"
	"mesob/internal/orders"

	"github.com/gin-gonic/gin"
)

// Tables

func (s *Server) handleListTables(c *gin.Context) {
	tables, err := s.orders.ListTables()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

func (s *Server) handleGetTable(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	table, err := s.orders.GetTable(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (s *Server) handleCreateTable(c *gin.Context) {
	var table models.Table
	if err := c.ShouldBindJSON(&table); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.orders.CreateTable(&table); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, table)
}

func (s *Server) handleUpdateTable(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	table, err := s.orders.UpdateTable(id, updates)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (s *Server) handleDeleteTable(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.orders.DeleteTable(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Orders

func (s *Server) handleListOrders(c *gin.Context) {
	list, err := s.orders.List(c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleCreateOrder(c *gin.Context) {
	var req orders.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := s.orders.Create(currentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	s.monitor.OrderCreated()
	c.JSON(http.StatusCreated, order)
}

func (s *Server) handleGetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := s.orders.Get(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) handleAddOrderItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req orders.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := s.orders.AddItem(id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) handleRemoveOrderItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	itemID, err := strconv.ParseUint(c.Param("itemId"), 10, 64)
	if err != nil || itemID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid itemId"})
		return
	}
	order, err := s.orders.RemoveItem(id, uint(itemID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) handleSetOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := s.orders.SetStatus(id, req.Status, currentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type applyDiscountRequest struct {
	Discount float64 `json:"discount"`
}

func (s *Server) handleApplyDiscount(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req applyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := s.orders.ApplyDiscount(id, req.Discount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Payments

func (s *Server) handleListPayments(c *gin.Context) {
	var orderID uint
	if raw := c.Query("order_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order_id"})
			return
		}
		orderID = uint(parsed)
	}
	list, err := s.payments.ListPayments(orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleRecordPayment(c *gin.Context) {
	var payment models.Payment
	if err := c.ShouldBindJSON(&payment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.payments.RecordPayment(currentUserID(c), &payment)
	if err != nil {
		writeError(c, err)
		return
	}
	s.monitor.PaymentRecorded()
	if result.StockError != "" {
		s.monitor.StockIssueError()
	}
	c.JSON(http.StatusCreated, result)
}
