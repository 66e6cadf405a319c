package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"mesob/internal/inventory"
	"mesob/internal/orders"
	"mesob/internal/purchasing"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

// paramID parses a numeric path parameter, writing a 400 on failure
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// dateRange parses start_date/end_date query parameters (YYYY-MM-DD)
func dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	const layout = "2006-01-02"
	from, err := time.Parse(layout, c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, expected YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(layout, c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date, expected YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date precedes start_date"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// writeError maps domain errors onto HTTP status codes
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, orders.ErrInvalidState),
		errors.Is(err, orders.ErrInvalidTransition),
		errors.Is(err, purchasing.ErrInvalidTransition),
		errors.Is(err, inventory.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrStockConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
