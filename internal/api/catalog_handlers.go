package api

import (
	"net/http"
	"strconv"

	"mesob/internal/models"

	"github.com/gin-gonic/gin"
)

// Categories

func (s *Server) handleListCategories(c *gin.Context) {
	categories, err := s.catalog.ListCategories()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	var category models.MenuCategory
	if err := c.ShouldBindJSON(&category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.catalog.CreateCategory(&category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (s *Server) handleUpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category, err := s.catalog.UpdateCategory(id, updates)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.catalog.DeleteCategory(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Menu items

func (s *Server) handleListMenuItems(c *gin.Context) {
	var categoryID uint
	if raw := c.Query("category_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
			return
		}
		categoryID = uint(parsed)
	}
	availableOnly := c.Query("available") == "true"

	items, err := s.catalog.ListItems(categoryID, availableOnly)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) handleGetMenuItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := s.catalog.GetItem(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) handleCreateMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.catalog.CreateItem(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) handleUpdateMenuItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := s.catalog.UpdateItem(id, updates)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) handleDeleteMenuItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.catalog.DeleteItem(id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Recipes

func (s *Server) handleGetRecipe(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	recipe, err := s.catalog.GetRecipe(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (s *Server) handleUpsertRecipe(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var recipe models.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := s.catalog.UpsertRecipe(id, &recipe)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (s *Server) handleComputeCOGS(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := s.catalog.GetItem(id)
	if err != nil {
		writeError(c, err)
		return
	}
	cogs, err := s.catalog.ComputeCOGS(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"menu_item_id": id,
		"price":        item.Price,
		"cogs":         cogs,
		"profit":       item.Price - cogs,
	})
}

// Modifiers

func (s *Server) handleListModifiers(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	modifiers, err := s.catalog.ListModifiers(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, modifiers)
}

func (s *Server) handleCreateModifier(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var modifier models.Modifier
	if err := c.ShouldBindJSON(&modifier); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	modifier.MenuItemID = id
	if err := s.catalog.CreateModifier(&modifier); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, modifier)
}

func (s *Server) handleDeleteModifier(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.catalog.DeleteModifier(id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
