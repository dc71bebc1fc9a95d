package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DhanaADS/crm-dashboard-sub000/models"
)

const validDraft = `{
	"clientName": "Acme Media",
	"email": "acme@example.com",
	"totalBudget": 500,
	"profitMargin": 60,
	"sites": [
		{"siteName": "techblog.io", "keyword": "crm tools", "clientLink": "https://acme.example/post", "sitePrice": 80, "articleFee": 20},
		{"siteName": "devdaily.net", "keyword": "sales crm", "clientLink": "https://acme.example/post2", "sitePrice": 60, "articleFee": 15}
	]
}`

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateOrderWithinBudget(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter()
	r.POST("/api/orders", CreateOrderHandler)

	w := postJSON(r, "/api/orders", validDraft)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool   `json:"success"`
		OrderID string `json:"orderId"`
		Data    struct {
			OrderID            string             `json:"orderId"`
			ClientName         string             `json:"clientName"`
			Status             string             `json:"status"`
			Sites              []models.OrderSite `json:"sites"`
			TotalCosts         float64            `json:"totalCosts"`
			AvailableBudget    float64            `json:"availableBudget"`
			Profit             float64            `json:"profit"`
			ActualProfitMargin float64            `json:"actualProfitMargin"`
			TotalBudgetWords   string             `json:"totalBudgetWords"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success || resp.OrderID == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	// Order fields and sites sit directly under data, next to the breakdown.
	if resp.Data.OrderID != resp.OrderID {
		t.Errorf("data.orderId = %q, want %q", resp.Data.OrderID, resp.OrderID)
	}
	if resp.Data.ClientName != "Acme Media" {
		t.Errorf("data.clientName = %q", resp.Data.ClientName)
	}
	if resp.Data.Status != models.OrderStatusCreated {
		t.Errorf("data.status = %q", resp.Data.Status)
	}
	if len(resp.Data.Sites) != 2 {
		t.Errorf("data.sites = %d, want 2", len(resp.Data.Sites))
	}
	if resp.Data.TotalCosts != 175 {
		t.Errorf("totalCosts = %v, want 175", resp.Data.TotalCosts)
	}
	if resp.Data.AvailableBudget != 200 {
		t.Errorf("availableBudget = %v, want 200", resp.Data.AvailableBudget)
	}
	if !strings.Contains(resp.Data.TotalBudgetWords, "five hundred") {
		t.Errorf("totalBudgetWords = %q", resp.Data.TotalBudgetWords)
	}

	var orderCount, siteCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	db.Model(&models.OrderSite{}).Count(&siteCount)
	if orderCount != 1 {
		t.Errorf("order rows = %d, want 1", orderCount)
	}
	if siteCount != 2 {
		t.Errorf("order site rows = %d, want 2", siteCount)
	}

	var order models.Order
	if err := db.Preload("Sites").Where("order_id = ?", resp.OrderID).First(&order).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if order.Status != models.OrderStatusCreated {
		t.Errorf("status = %q, want %q", order.Status, models.OrderStatusCreated)
	}
	if len(order.Sites) != 2 {
		t.Errorf("loaded sites = %d, want 2", len(order.Sites))
	}
}

func TestCreateOrderBudgetExceeded(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter()
	r.POST("/api/orders", CreateOrderHandler)

	// Same costs, 90% margin: available budget 50, costs 175.
	body := strings.Replace(validDraft, `"profitMargin": 60`, `"profitMargin": 90`, 1)
	w := postJSON(r, "/api/orders", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Order exceeds available budget") {
		t.Errorf("body = %s", w.Body.String())
	}

	var orderCount, siteCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	db.Model(&models.OrderSite{}).Count(&siteCount)
	if orderCount != 0 || siteCount != 0 {
		t.Errorf("rejected draft created rows: orders=%d sites=%d", orderCount, siteCount)
	}
}

func TestCreateOrderBoundaryAccepted(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter()
	r.POST("/api/orders", CreateOrderHandler)

	// Costs exactly equal the available budget: 500 * (1 - 0.6) = 200.
	body := `{
		"clientName": "Edge Co",
		"email": "edge@example.com",
		"totalBudget": 500,
		"profitMargin": 60,
		"sites": [{"siteName": "edge.io", "sitePrice": 180, "articleFee": 20}]
	}`
	w := postJSON(r, "/api/orders", body)
	if w.Code != http.StatusOK {
		t.Fatalf("boundary draft rejected: %d %s", w.Code, w.Body.String())
	}

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	if orderCount != 1 {
		t.Errorf("order rows = %d, want 1", orderCount)
	}
}

func TestCreateOrderIgnoresClientFlag(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	r.POST("/api/orders", CreateOrderHandler)

	// A client claiming isWithinBudget must still be re-checked server-side.
	body := `{
		"clientName": "Sneaky",
		"email": "sneaky@example.com",
		"totalBudget": 100,
		"profitMargin": 90,
		"isWithinBudget": true,
		"sites": [{"siteName": "x.io", "sitePrice": 80, "articleFee": 0}]
	}`
	w := postJSON(r, "/api/orders", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	r.POST("/api/orders", CreateOrderHandler)

	cases := []struct {
		name string
		body string
	}{
		{"missing client name", `{"email":"a@b.c","totalBudget":100,"profitMargin":10,"sites":[{"siteName":"s","sitePrice":1,"articleFee":1}]}`},
		{"zero budget", `{"clientName":"A","email":"a@b.c","totalBudget":0,"profitMargin":10,"sites":[{"siteName":"s","sitePrice":1,"articleFee":1}]}`},
		{"no sites", `{"clientName":"A","email":"a@b.c","totalBudget":100,"profitMargin":10,"sites":[]}`},
		{"margin out of range", `{"clientName":"A","email":"a@b.c","totalBudget":100,"profitMargin":101,"sites":[{"siteName":"s","sitePrice":1,"articleFee":1}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(r, "/api/orders", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestPreviewOrderDoesNotPersist(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter()
	r.POST("/api/orders/preview", PreviewOrderHandler)

	w := postJSON(r, "/api/orders/preview", validDraft)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var calc struct {
		TotalCosts      float64 `json:"totalCosts"`
		AvailableBudget float64 `json:"availableBudget"`
		IsWithinBudget  bool    `json:"isWithinBudget"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &calc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if calc.TotalCosts != 175 || calc.AvailableBudget != 200 || !calc.IsWithinBudget {
		t.Errorf("unexpected calculation: %+v", calc)
	}

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	if orderCount != 0 {
		t.Errorf("preview persisted %d orders", orderCount)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter()
	r.POST("/api/orders", CreateOrderHandler)
	r.PUT("/api/orders/:id/status", UpdateOrderStatusHandler)

	w := postJSON(r, "/api/orders", validDraft)
	var resp struct {
		OrderID string `json:"orderId"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	req := httptest.NewRequest(http.MethodPut, "/api/orders/"+resp.OrderID+"/status",
		strings.NewReader(`{"status":"in_progress"}`))
	req.Header.Set("Content-Type", "application/json")
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)

	if w2.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w2.Code, w2.Body.String())
	}

	var order models.Order
	db.Where("order_id = ?", resp.OrderID).First(&order)
	if order.Status != models.OrderStatusInProgress {
		t.Errorf("status = %q, want in_progress", order.Status)
	}

	// Unknown status values are rejected.
	req = httptest.NewRequest(http.MethodPut, "/api/orders/"+resp.OrderID+"/status",
		strings.NewReader(`{"status":"shipped"}`))
	req.Header.Set("Content-Type", "application/json")
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, req)
	if w3.Code != http.StatusBadRequest {
		t.Errorf("invalid status accepted: %d", w3.Code)
	}
}

func TestDeleteOrderRemovesSites(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter()
	r.POST("/api/orders", CreateOrderHandler)
	r.DELETE("/api/orders/:id", DeleteOrderHandler)

	w := postJSON(r, "/api/orders", validDraft)
	var resp struct {
		OrderID string `json:"orderId"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	req := httptest.NewRequest(http.MethodDelete, "/api/orders/"+resp.OrderID, nil)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w2.Code)
	}

	var siteCount int64
	db.Model(&models.OrderSite{}).Count(&siteCount)
	if siteCount != 0 {
		t.Errorf("site rows left after delete: %d", siteCount)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	r.GET("/api/orders/:id", GetOrderHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/does-not-exist", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
