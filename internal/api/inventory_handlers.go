package api

import (
	"net/http"

	"mesob/internal/inventory"
	"mesob/internal/models"

	"github.com/gin-gonic/gin"
)

// Ingredients

func (s *Server) handleListIngredients(c *gin.Context) {
	ingredients, err := s.ledger.ListIngredients()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

func (s *Server) handleGetIngredient(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ingredient, err := s.ledger.GetIngredient(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (s *Server) handleCreateIngredient(c *gin.Context) {
	var ingredient models.Ingredient
	if err := c.ShouldBindJSON(&ingredient); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.ledger.CreateIngredient(&ingredient); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}

func (s *Server) handleUpdateIngredient(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Stock moves only through transactions; direct writes would bypass
	// the version guard.
	delete(updates, "current_stock")
	delete(updates, "version")

	ingredient, err := s.ledger.UpdateIngredient(id, updates)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (s *Server) handleDeleteIngredient(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.ledger.DeleteIngredient(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Units

func (s *Server) handleListUnits(c *gin.Context) {
	units, err := s.ledger.ListUnits()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, units)
}

func (s *Server) handleCreateUnit(c *gin.Context) {
	var unit models.Unit
	if err := c.ShouldBindJSON(&unit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.ledger.CreateUnit(&unit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, unit)
}

// Transactions

func (s *Server) handleListTransactions(c *gin.Context) {
	txns, err := s.ledger.ListTransactions()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

func (s *Server) handleGetTransaction(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	txn, err := s.ledger.GetTransaction(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

func (s *Server) handleCreateTransaction(c *gin.Context) {
	var txn models.InventoryTransaction
	if err := c.ShouldBindJSON(&txn); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	txn.UserID = currentUserID(c)

	if err := s.ledger.RecordTransaction(&txn); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

// Counts

type createCountRequest struct {
	Lines []inventory.CountLine `json:"lines" binding:"required"`
	Notes string                `json:"notes"`
}

func (s *Server) handleCreateCount(c *gin.Context) {
	var req createCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := s.ledger.RecordCount(currentUserID(c), req.Lines, s.cfg.POS.CountTolerance, req.Notes)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, count)
}

func (s *Server) handleGetCount(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	count, err := s.ledger.GetCount(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, count)
}

func (s *Server) handleLowStock(c *gin.Context) {
	items, err := s.ledger.LowStock()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
