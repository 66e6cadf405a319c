package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"mesob/internal/auth"
	"mesob/internal/config"
	"mesob/internal/database"
	"mesob/internal/models"
	"mesob/internal/monitoring"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The Prometheus default registry rejects duplicate collectors, so all
// tests in the package share one monitor.
var testMonitor = monitoring.NewMonitor()

type testEnv struct {
	server     *Server
	adminToken string
	staffToken string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.Seed(db)
	t.Cleanup(func() { db.Close() })

	cfg := config.Default()
	cfg.Auth.Secret = "test-secret"

	authSvc := auth.NewService(db, cfg.Auth.Secret, cfg.AuthTTL())
	admin, err := authSvc.CreateUser("admin@mesob.local", "Admin", string(models.RoleAdmin), "pw")
	require.NoError(t, err)
	staff, err := authSvc.CreateUser("staff@mesob.local", "Staff", string(models.RoleStaff), "pw")
	require.NoError(t, err)

	adminToken, err := authSvc.IssueToken(admin)
	require.NoError(t, err)
	staffToken, err := authSvc.IssueToken(staff)
	require.NoError(t, err)

	return &testEnv{
		server:     NewServer(db, cfg, testMonitor),
		adminToken: adminToken,
		staffToken: staffToken,
	}
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.server.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestWithoutTokenIsRejected(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("GET", "/api/v1/pos/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do("GET", "/api/v1/pos/orders", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginIssuesUsableToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/api/v1/auth/login", "", gin.H{
		"email":    "admin@mesob.local",
		"password": "pw",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	token, ok := response["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	w = env.do("GET", "/api/v1/pos/tables", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/api/v1/auth/login", "", gin.H{
		"email":    "admin@mesob.local",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStaffCannotWriteMenu(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/api/v1/menu/categories", env.staffToken, gin.H{"name": "Mains"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do("POST", "/api/v1/menu/categories", env.adminToken, gin.H{"name": "Mains"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateOrderFlow(t *testing.T) {
	env := newTestEnv(t)

	// Seeded tables exist; table 1 is T1
	w := env.do("POST", "/api/v1/pos/orders", env.staffToken, gin.H{
		"table_id":   1,
		"party_size": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var order map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, "new", order["Status"])
	assert.NotEmpty(t, order["Number"])

	// The table shows as occupied
	w = env.do("GET", "/api/v1/pos/tables", env.staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tables []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tables))
	require.NotEmpty(t, tables)
	assert.Equal(t, "occupied", tables[0]["Status"])
}

func TestCreateOrderUnknownTable(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/api/v1/pos/orders", env.staffToken, gin.H{"table_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIllegalStatusTransitionReturnsConflict(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/api/v1/pos/orders", env.staffToken, gin.H{"table_id": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	var order map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	id := int(order["ID"].(float64))

	w = env.do("PUT", "/api/v1/pos/orders/"+strconv.Itoa(id)+"/status", env.staffToken, gin.H{"status": "served"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMetricsSnapshotRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("GET", "/api/v1/metrics", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do("GET", "/api/v1/metrics", env.staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var snapshot map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Contains(t, snapshot, "uptime_seconds")
}

func TestGetSingleTable(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("GET", "/api/v1/pos/tables/1", env.staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tbl map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tbl))
	assert.Equal(t, "T1", tbl["Name"])

	w = env.do("GET", "/api/v1/pos/tables/999", env.staffToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEmployeePerformanceEndpoint(t *testing.T) {
	env := newTestEnv(t)

	path := "/api/v1/reports/employee-performance?start_date=2026-01-01&end_date=2026-01-31"
	w := env.do("GET", path, env.staffToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do("GET", path, env.adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReportsRequireManager(t *testing.T) {
	env := newTestEnv(t)

	path := "/api/v1/reports/sales?start_date=2026-01-01&end_date=2026-01-31"
	w := env.do("GET", path, env.staffToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do("GET", path, env.adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Malformed range is rejected
	w = env.do("GET", "/api/v1/reports/sales?start_date=bad", env.adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

