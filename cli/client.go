package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ApiClient handles requests to the mesob API
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
	token      string
}

// NewApiClient creates a new API client pointed at MESOB_API_URL
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("MESOB_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &ApiClient{
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
		BaseURL: baseURL,
	}
}

// CheckHealth checks if the API is up and running
func (c *ApiClient) CheckHealth() (bool, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("health check failed with status code: %d", resp.StatusCode)
	}
	return true, nil
}

// Login exchanges credentials for a bearer token used by later calls
func (c *ApiClient) Login(email, password string) error {
	payload, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})

	resp, err := c.httpClient.Post(c.BaseURL+"/api/v1/auth/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with status code: %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	c.token = result.Token
	return nil
}

func (c *ApiClient) get(path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s failed (%d): %s", path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *ApiClient) put(path string, payload, out interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPut, c.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("PUT %s failed (%d): %s", path, resp.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Table represents a dining table as returned by the API
type Table struct {
	ID       uint
	Name     string
	Capacity int
	Status   string
}

// Order represents an order as returned by the API
type Order struct {
	ID            uint
	Number        string
	TableID       uint
	CustomerName  string
	Status        string
	PaymentStatus string
	Subtotal      float64
	Tax           float64
	Discount      float64
	Total         float64
	Items         []OrderLine
}

// OrderLine represents one line on an order
type OrderLine struct {
	ID         uint
	MenuItemID uint
	Quantity   int
	UnitPrice  float64
	Notes      string
}

// LowStockItem pairs an ingredient with its computed shortage
type LowStockItem struct {
	Ingredient struct {
		ID           uint
		Name         string
		CurrentStock float64
		MinStock     float64
		Unit         string
	} `json:"ingredient"`
	Shortage float64 `json:"shortage"`
}

// ListTables fetches all tables
func (c *ApiClient) ListTables() ([]Table, error) {
	var tables []Table
	if err := c.get("/api/v1/pos/tables", &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

// ListOrders fetches orders, optionally filtered by status
func (c *ApiClient) ListOrders(status string) ([]Order, error) {
	path := "/api/v1/pos/orders"
	if status != "" {
		path += "?status=" + status
	}
	var orders []Order
	if err := c.get(path, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder fetches one order with its items
func (c *ApiClient) GetOrder(id uint) (*Order, error) {
	var order Order
	if err := c.get(fmt.Sprintf("/api/v1/pos/orders/%d", id), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// SetOrderStatus moves an order to the given status
func (c *ApiClient) SetOrderStatus(id uint, status string) (*Order, error) {
	var order Order
	err := c.put(fmt.Sprintf("/api/v1/pos/orders/%d/status", id), map[string]string{"status": status}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListLowStock fetches ingredients at or below their minimum level
func (c *ApiClient) ListLowStock() ([]LowStockItem, error) {
	var items []LowStockItem
	if err := c.get("/api/v1/inventory/low-stock", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// nextStatus returns the natural next step in the order lifecycle
func nextStatus(current string) string {
	switch current {
	case "new":
		return "preparing"
	case "preparing":
		return "ready"
	case "ready":
		return "served"
	case "served":
		return "paid"
	}
	return ""
}
