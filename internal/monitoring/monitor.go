package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Monitor collects service-level metrics, exposing them both to the
// Prometheus registry and as a JSON snapshot for the dashboard.
type Monitor struct {
	metrics      map[string]float64
	metricsMutex sync.RWMutex
	startTime    time.Time

	ordersCreated    prometheus.Counter
	paymentsRecorded prometheus.Counter
	stockIssueErrors prometheus.Counter
	requestDuration  *prometheus.HistogramVec
}

// NewMonitor creates a monitor and registers its collectors
func NewMonitor() *Monitor {
	m := &Monitor{
		metrics:   make(map[string]float64),
		startTime: time.Now(),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mesob_orders_created_total",
			Help: "Number of orders created",
		}),
		paymentsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mesob_payments_recorded_total",
			Help: "Number of payments recorded",
		}),
		stockIssueErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mesob_stock_issue_errors_total",
			Help: "Number of failed post-payment stock issuings",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mesob_http_request_duration_seconds",
			Help:    "HTTP request latency by method, path and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}

	prometheus.MustRegister(m.ordersCreated, m.paymentsRecorded, m.stockIssueErrors, m.requestDuration)
	return m
}

// OrderCreated records one created order
func (m *Monitor) OrderCreated() {
	m.ordersCreated.Inc()
	m.incr("orders_created")
}

// PaymentRecorded records one recorded payment
func (m *Monitor) PaymentRecorded() {
	m.paymentsRecorded.Inc()
	m.incr("payments_recorded")
}

// StockIssueError records a failed post-payment stock issuing
func (m *Monitor) StockIssueError() {
	m.stockIssueErrors.Inc()
	m.incr("stock_issue_errors")
}

func (m *Monitor) incr(name string) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics[name]++
}

// Snapshot returns all current metric values plus uptime
func (m *Monitor) Snapshot() map[string]float64 {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	snapshot := make(map[string]float64, len(m.metrics)+1)
	for k, v := range m.metrics {
		snapshot[k] = v
	}
	snapshot["uptime_seconds"] = time.Since(m.startTime).Seconds()
	return snapshot
}

// Middleware observes request latency for every handled route
func (m *Monitor) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requestDuration.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
