package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/fleetstock/internal/metrics"
	"github.com/mamadbah2/fleetstock/internal/repository/memory"
	"github.com/mamadbah2/fleetstock/internal/service/catalog"
	"github.com/mamadbah2/fleetstock/internal/service/inventory"
	"github.com/mamadbah2/fleetstock/internal/service/records"
	salessvc "github.com/mamadbah2/fleetstock/internal/service/sales"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	store := memory.New()
	m := metrics.New()
	inv := inventory.NewService(store, m, nil)
	sales := salessvc.NewService(store, nil, m, nil)
	cat := catalog.NewService(store, nil)
	rec := records.NewService(store, nil)
	return New(NewHandlers(inv, sales, cat, rec, nil), Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		RequestTimeout: 5 * time.Second,
		Metrics:        m,
	}, nil)
}

func call(t *testing.T, engine *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec, env
}

func decode(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v (%s)", err, string(env.Data))
	}
}

type created struct {
	ID              string `json:"id"`
	ItemCode        string `json:"itemCode"`
	QuantityInStock int    `json:"quantityInStock"`
	OrderNumber     string `json:"orderNumber"`
}

// seedItem creates a category and an item holding qty units priced at 10.
func seedItem(t *testing.T, engine *gin.Engine, code string, qty int) created {
	t.Helper()
	rec, env := call(t, engine, http.MethodPost, "/api/inventory-categories", map[string]interface{}{"name": "Parts " + code})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: %d %s", rec.Code, rec.Body.String())
	}
	var cat created
	decode(t, env, &cat)

	rec, env = call(t, engine, http.MethodPost, "/api/inventory", map[string]interface{}{
		"itemCode":        code,
		"description":     "Brake pad",
		"category":        cat.ID,
		"sellingPrice":    10,
		"quantityInStock": qty,
		"reorderLevel":    2,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create item: %d %s", rec.Code, rec.Body.String())
	}
	var item created
	decode(t, env, &item)
	return item
}

func TestHealthAndMetrics(t *testing.T) {
	engine := newEngine(t)

	rec, _ := call(t, engine, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}

	call(t, engine, http.MethodGet, "/api/inventory", nil)
	rec, _ = call(t, engine, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "fleetstock_http_requests_total") {
		t.Fatalf("metrics missing request counter: %d", rec.Code)
	}
}

func TestInventoryErrorsMapToStatus(t *testing.T) {
	engine := newEngine(t)
	seedItem(t, engine, "bp-01", 3)

	rec, env := call(t, engine, http.MethodGet, "/api/inventory/not-an-id", nil)
	if rec.Code != http.StatusBadRequest || env.Success {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}

	rec, env = call(t, engine, http.MethodGet, "/api/inventory/65f0c0ffee0000000000abcd", nil)
	if rec.Code != http.StatusNotFound || env.Message != "inventory item not found" {
		t.Fatalf("expected 404, got %d %+v", rec.Code, env)
	}

	rec, _ = call(t, engine, http.MethodPost, "/api/inventory", map[string]interface{}{"itemCode": "BP-01"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected binding failure, got %d", rec.Code)
	}

	rec, env = call(t, engine, http.MethodGet, "/api/inventory", nil)
	if rec.Code != http.StatusOK || env.Count == nil || *env.Count != 1 {
		t.Fatalf("expected one item listed, got %d %+v", rec.Code, env)
	}
}

func TestDuplicateItemCodeConflicts(t *testing.T) {
	engine := newEngine(t)
	item := seedItem(t, engine, "bp-02", 1)
	if item.ItemCode != "BP-02" {
		t.Fatalf("item code not normalized: %s", item.ItemCode)
	}

	var cats []created
	_, env := call(t, engine, http.MethodGet, "/api/inventory-categories", nil)
	decode(t, env, &cats)

	rec, env := call(t, engine, http.MethodPost, "/api/inventory", map[string]interface{}{
		"itemCode": "BP-02", "description": "Again", "category": cats[0].ID,
	})
	if rec.Code != http.StatusConflict || env.Success {
		t.Fatalf("expected 409, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestSalesOrderLifecycleOverHTTP(t *testing.T) {
	engine := newEngine(t)
	item := seedItem(t, engine, "bp-03", 10)

	order := map[string]interface{}{
		"customer":    map[string]interface{}{"name": "Ama Mensah", "email": "AMA@example.com"},
		"items":       []map[string]interface{}{{"item": item.ID, "quantity": 4}},
		"subtotal":    40,
		"taxAmount":   0,
		"totalAmount": 40,
	}
	rec, env := call(t, engine, http.MethodPost, "/api/sales-orders", order)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order: %d %s", rec.Code, rec.Body.String())
	}
	var so created
	decode(t, env, &so)
	if !strings.HasPrefix(so.OrderNumber, "SO") || len(so.OrderNumber) != 10 {
		t.Fatalf("unexpected order number %q", so.OrderNumber)
	}

	_, env = call(t, engine, http.MethodGet, "/api/inventory/"+item.ID, nil)
	var after created
	decode(t, env, &after)
	if after.QuantityInStock != 6 {
		t.Fatalf("expected stock 6, got %d", after.QuantityInStock)
	}

	rec, env = call(t, engine, http.MethodGet, "/api/stock-transactions?transactionType=stockout&item="+item.ID, nil)
	if rec.Code != http.StatusOK || env.Count == nil || *env.Count != 1 {
		t.Fatalf("expected one stockout, got %d %+v", rec.Code, env)
	}

	order["totalAmount"] = 45
	rec, env = call(t, engine, http.MethodPost, "/api/sales-orders", order)
	if rec.Code != http.StatusBadRequest || env.Success {
		t.Fatalf("expected totals mismatch 400, got %d", rec.Code)
	}

	rec, _ = call(t, engine, http.MethodGet, "/api/sales-orders/summary?interval=week", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary route: %d %s", rec.Code, rec.Body.String())
	}
	rec, _ = call(t, engine, http.MethodGet, "/api/sales-orders/customers/history?email=ama@example.com", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history route: %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = call(t, engine, http.MethodPut, "/api/sales-orders/"+so.ID, map[string]interface{}{"status": "cancelled"})
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: %d %s", rec.Code, rec.Body.String())
	}
	rec, env = call(t, engine, http.MethodPut, "/api/sales-orders/"+so.ID, map[string]interface{}{"status": "processing"})
	if rec.Code != http.StatusBadRequest || env.Success {
		t.Fatalf("terminal order update should be 400, got %d", rec.Code)
	}

	_, env = call(t, engine, http.MethodGet, "/api/inventory/"+item.ID, nil)
	decode(t, env, &after)
	if after.QuantityInStock != 10 {
		t.Fatalf("expected stock restored to 10, got %d", after.QuantityInStock)
	}
}

func TestStockOutBeyondBalance(t *testing.T) {
	engine := newEngine(t)
	item := seedItem(t, engine, "bp-04", 2)

	rec, env := call(t, engine, http.MethodPost, "/api/stock-transactions", map[string]interface{}{
		"item": item.ID, "transactionType": "stockout", "quantity": 5,
	})
	if rec.Code != http.StatusBadRequest || env.Message != "Insufficient stock available" {
		t.Fatalf("expected insufficient stock 400, got %d %+v", rec.Code, env)
	}
}

func TestTransferRoutes(t *testing.T) {
	engine := newEngine(t)
	item := seedItem(t, engine, "bp-05", 8)

	rec, _ := call(t, engine, http.MethodPost, "/api/stock/transfer/"+item.ID, map[string]interface{}{
		"fromLocation": "warehouse", "toLocation": "warehouse", "quantity": 1,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("same-location transfer should be 400, got %d", rec.Code)
	}

	rec, env := call(t, engine, http.MethodPost, "/api/stock/transfer/"+item.ID, map[string]interface{}{
		"fromLocation": "warehouse", "toLocation": "retail", "quantity": 3,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("transfer: %d %s", rec.Code, rec.Body.String())
	}
	var summary struct {
		Reference   string `json:"reference"`
		FromBalance int    `json:"fromBalance"`
		ToBalance   int    `json:"toBalance"`
	}
	decode(t, env, &summary)
	if !strings.HasPrefix(summary.Reference, "TRF-") || summary.FromBalance != 5 || summary.ToBalance != 3 {
		t.Fatalf("unexpected transfer summary %+v", summary)
	}

	rec, env = call(t, engine, http.MethodGet, "/api/stock/"+item.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("locations: %d", rec.Code)
	}
	var view struct {
		QuantityInStock int `json:"quantityInStock"`
		LocatedQuantity int `json:"locatedQuantity"`
	}
	decode(t, env, &view)
	if view.QuantityInStock != 8 || view.LocatedQuantity != 8 {
		t.Fatalf("transfer must not change totals: %+v", view)
	}
}

func TestCategoryHierarchyRoute(t *testing.T) {
	engine := newEngine(t)
	_, env := call(t, engine, http.MethodPost, "/api/inventory-categories", map[string]interface{}{"name": "Vehicles"})
	var root created
	decode(t, env, &root)
	rec, _ := call(t, engine, http.MethodPost, "/api/inventory-categories", map[string]interface{}{"name": "Tyres", "parent": root.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create child: %d %s", rec.Code, rec.Body.String())
	}

	rec, env = call(t, engine, http.MethodGet, "/api/inventory-categories/hierarchy", nil)
	if rec.Code != http.StatusOK || env.Count == nil || *env.Count != 1 {
		t.Fatalf("expected a single root, got %d %+v", rec.Code, env)
	}

	rec, env = call(t, engine, http.MethodDelete, "/api/inventory-categories/"+root.ID, nil)
	if rec.Code != http.StatusBadRequest || env.Success {
		t.Fatalf("deleting a parent should be 400, got %d", rec.Code)
	}
}

func TestRecordsCRUD(t *testing.T) {
	engine := newEngine(t)
	rec, env := call(t, engine, http.MethodPost, "/api/vehicles", map[string]interface{}{
		"registrationNumber": "gr 55-24", "make": "Toyota", "model": "Corolla", "year": 2024,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create vehicle: %d %s", rec.Code, rec.Body.String())
	}
	var v created
	decode(t, env, &v)

	rec, _ = call(t, engine, http.MethodPost, "/api/insurance", map[string]interface{}{
		"vehicle": v.ID, "provider": "SIC", "policyNumber": "P-9",
		"startDate": "2026-01-01T00:00:00Z", "endDate": "2025-01-01T00:00:00Z",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("insurance date order should be 400, got %d", rec.Code)
	}

	rec, _ = call(t, engine, http.MethodDelete, "/api/vehicles/"+v.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete vehicle: %d", rec.Code)
	}
	rec, _ = call(t, engine, http.MethodGet, "/api/vehicles/"+v.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("deleted vehicle should be 404, got %d", rec.Code)
	}
}

func TestInventoryExport(t *testing.T) {
	engine := newEngine(t)
	seedItem(t, engine, "bp-06", 1)

	rec, _ := call(t, engine, http.MethodGet, "/api/inventory/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: %d %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected content type %s", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Fatalf("export is not a zip container")
	}
}

func TestUnknownRoute(t *testing.T) {
	engine := newEngine(t)
	rec, env := call(t, engine, http.MethodGet, "/api/nope", nil)
	if rec.Code != http.StatusNotFound || env.Success {
		t.Fatalf("expected 404 envelope, got %d", rec.Code)
	}
}

func TestLocationsFollowSalesAndTransfers(t *testing.T) {
	engine := newEngine(t)
	item := seedItem(t, engine, "bp-09", 10)

	located := func(want int) {
		t.Helper()
		_, env := call(t, engine, http.MethodGet, "/api/stock/"+item.ID, nil)
		var view struct {
			QuantityInStock int `json:"quantityInStock"`
			LocatedQuantity int `json:"locatedQuantity"`
		}
		decode(t, env, &view)
		if view.QuantityInStock != want || view.LocatedQuantity != want {
			t.Fatalf("expected %d in stock and located, got %+v", want, view)
		}
	}

	rec, env := call(t, engine, http.MethodPost, "/api/sales-orders", map[string]interface{}{
		"customer":    map[string]interface{}{"name": "Yaw Boateng"},
		"items":       []map[string]interface{}{{"item": item.ID, "quantity": 4}},
		"subtotal":    40,
		"totalAmount": 40,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order: %d %s", rec.Code, rec.Body.String())
	}
	var so created
	decode(t, env, &so)
	located(6)

	rec, _ = call(t, engine, http.MethodPost, "/api/stock/transfer/"+item.ID, map[string]interface{}{
		"fromLocation": "warehouse", "toLocation": "retail", "quantity": 10,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("transfer of sold stock should be 400, got %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = call(t, engine, http.MethodPut, "/api/sales-orders/"+so.ID, map[string]interface{}{"status": "cancelled"})
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: %d %s", rec.Code, rec.Body.String())
	}
	located(10)

	rec, _ = call(t, engine, http.MethodPost, "/api/stock/transfer/"+item.ID, map[string]interface{}{
		"fromLocation": "warehouse", "toLocation": "retail", "quantity": 6,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("transfer: %d %s", rec.Code, rec.Body.String())
	}
	located(10)
}
