package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Collectors register against the process-global Prometheus registry,
// so the package shares one monitor across tests.
var monitor = NewMonitor()

func TestCountersAppearInSnapshot(t *testing.T) {
	before := monitor.Snapshot()

	monitor.OrderCreated()
	monitor.OrderCreated()
	monitor.PaymentRecorded()
	monitor.StockIssueError()

	after := monitor.Snapshot()
	assert.Equal(t, before["orders_created"]+2, after["orders_created"])
	assert.Equal(t, before["payments_recorded"]+1, after["payments_recorded"])
	assert.Equal(t, before["stock_issue_errors"]+1, after["stock_issue_errors"])
}

func TestSnapshotIncludesUptime(t *testing.T) {
	snapshot := monitor.Snapshot()
	assert.Contains(t, snapshot, "uptime_seconds")
	assert.GreaterOrEqual(t, snapshot["uptime_seconds"], 0.0)
}

func TestSnapshotIsACopy(t *testing.T) {
	snapshot := monitor.Snapshot()
	snapshot["orders_created"] = 9999

	fresh := monitor.Snapshot()
	assert.NotEqual(t, 9999.0, fresh["orders_created"])
}

func TestMiddlewareObservesRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(monitor.Middleware())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	w := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/ping", nil)
	require.NoError(t, err)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
