package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleSalesSummary(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	summary, err := s.reports.SalesSummary(from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleProfitability(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	result, err := s.reports.Profitability(from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleEmployeePerformance(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	result, err := s.reports.EmployeePerformanceReport(from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleVarianceReport(c *gin.Context) {
	countID, ok := paramID(c, "countId")
	if !ok {
		return
	}
	lines, err := s.reports.VarianceReport(countID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (s *Server) handleDashboardSummary(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	dashboard, err := s.reports.DashboardSummary(from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
