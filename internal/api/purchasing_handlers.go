package api

import (
	"net/http"

	"mesob/internal/models"

	"github.com/gin-gonic/gin"
)

// Vendors

func (s *Server) handleListVendors(c *gin.Context) {
	vendors, err := s.purchasing.ListVendors()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendors)
}

func (s *Server) handleCreateVendor(c *gin.Context) {
	var vendor models.Vendor
	if err := c.ShouldBindJSON(&vendor); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.purchasing.CreateVendor(&vendor); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, vendor)
}

func (s *Server) handleUpdateVendor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	vendor, err := s.purchasing.UpdateVendor(id, updates)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

// Purchase orders

func (s *Server) handleListPurchaseOrders(c *gin.Context) {
	list, err := s.purchasing.ListPurchaseOrders(c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleCreatePurchaseOrder(c *gin.Context) {
	var po models.PurchaseOrder
	if err := c.ShouldBindJSON(&po); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.purchasing.CreatePurchaseOrder(currentUserID(c), &po); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, po)
}

func (s *Server) handleGetPurchaseOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	po, err := s.purchasing.GetPurchaseOrder(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

func (s *Server) handleSetPurchaseOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	po, err := s.purchasing.SetStatus(id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

func (s *Server) handleReceivePurchaseOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	po, err := s.purchasing.Receive(currentUserID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}
