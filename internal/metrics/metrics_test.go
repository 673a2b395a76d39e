package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("/api/inventory", "GET", "200", 0.01)
	m.StockMovement("stockin")
	m.OrderEvent("created")
	if m.Handler() == nil {
		t.Fatalf("nil metrics should still expose a handler")
	}
}

func TestCountersRecord(t *testing.T) {
	m := New()
	m.StockMovement("stockout")
	m.StockMovement("stockout")
	m.OrderEvent("cancelled")
	m.ObserveRequest("/api/sales-orders", "POST", "201", 0.2)

	if got := testutil.ToFloat64(m.stockMovements.WithLabelValues("stockout")); got != 2 {
		t.Fatalf("expected 2 stockouts, got %v", got)
	}
	if got := testutil.ToFloat64(m.orders.WithLabelValues("cancelled")); got != 1 {
		t.Fatalf("expected 1 cancellation, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("/api/sales-orders", "POST", "201")); got != 1 {
		t.Fatalf("expected 1 request, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `fleetstock_stock_movements_total{type="stockout"} 2`) {
		t.Fatalf("scrape output missing stock counter:\n%s", rec.Body.String())
	}
}
