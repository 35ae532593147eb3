package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openbrew/openbrew/pkg/menu"
	"github.com/openbrew/openbrew/pkg/telemetry"
)

func newTestTelemetry(t *testing.T, shipping telemetry.ShippingConfig) *telemetry.Telemetry {
	t.Helper()

	cfg := telemetry.DefaultConfig()
	cfg.Logging.Format = "json"
	cfg.Logging.Output = "stderr"
	cfg.Tracing.Enabled = false
	cfg.Shipping = shipping

	tel, err := telemetry.New(cfg)
	if err != nil {
		t.Fatalf("telemetry.New failed: %v", err)
	}
	return tel
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	store := menu.NewMemoryStore(menu.DefaultMenu())
	return New(store, newTestTelemetry(t, telemetry.ShippingConfig{})).Handler()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func TestListCoffees(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/coffees", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp CoffeeListResponse
	decodeBody(t, rec, &resp)
	if len(resp.Coffees) != 4 {
		t.Fatalf("len(coffees) = %d, want 4", len(resp.Coffees))
	}
	if resp.Coffees[0].Name != "Espresso" || resp.Coffees[0].ID != 1 {
		t.Errorf("first coffee = %+v, want Espresso with id 1", resp.Coffees[0])
	}
}

func TestCreateCoffee(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/coffees", `{"name":"Mocha","price":4.0}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var item menu.Item
	decodeBody(t, rec, &item)
	if item.ID != 5 || item.Name != "Mocha" || item.Price != 4.0 {
		t.Errorf("item = %+v, want {5 Mocha 4}", item)
	}
}

func TestCreateCoffeeValidation(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing price", `{"name":"Mocha"}`},
		{"missing name", `{"price":4.0}`},
		{"negative price", `{"name":"Mocha","price":-1}`},
		{"empty body", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/coffees", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			var resp MessageResponse
			decodeBody(t, rec, &resp)
			if resp.Message != "Name and price are required." {
				t.Errorf("message = %q", resp.Message)
			}
		})
	}
}

func TestCreateCoffeeMalformedJSON(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/coffees", `{"name":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetCoffee(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/coffees/2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var item menu.Item
	decodeBody(t, rec, &item)
	if item.Name != "Latte" {
		t.Errorf("item = %+v, want Latte", item)
	}
}

func TestGetCoffeeNotFound(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/coffees/99", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var resp MessageResponse
	decodeBody(t, rec, &resp)
	if resp.Message != "Coffee not found" {
		t.Errorf("message = %q, want Coffee not found", resp.Message)
	}
}

func TestGetCoffeeInvalidID(t *testing.T) {
	h := newTestHandler(t)

	for _, id := range []string{"abc", "0", "-3"} {
		rec := doRequest(t, h, http.MethodGet, "/coffees/"+id, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("id %q: status = %d, want 400", id, rec.Code)
		}
	}
}

func TestUpdateCoffeePartial(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPut, "/coffees/1", `{"price":2.75}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var item menu.Item
	decodeBody(t, rec, &item)
	if item.Name != "Espresso" || item.Price != 2.75 {
		t.Errorf("item = %+v, want name kept, price updated", item)
	}

	rec = doRequest(t, h, http.MethodPut, "/coffees/1", `{"name":"Ristretto"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	decodeBody(t, rec, &item)
	if item.Name != "Ristretto" || item.Price != 2.75 {
		t.Errorf("item = %+v, want name updated, price kept", item)
	}
}

func TestUpdateCoffeeNotFound(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPut, "/coffees/99", `{"price":1.0}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteCoffeeIdempotent(t *testing.T) {
	h := newTestHandler(t)

	for i := 0; i < 2; i++ {
		rec := doRequest(t, h, http.MethodDelete, "/coffees/3", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: status = %d, want 200", i+1, rec.Code)
		}
		var resp MessageResponse
		decodeBody(t, rec, &resp)
		if resp.Message != "Coffee deleted" {
			t.Errorf("message = %q, want Coffee deleted", resp.Message)
		}
	}

	rec := doRequest(t, h, http.MethodGet, "/coffees/3", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("deleted coffee still retrievable, status = %d", rec.Code)
	}
}

func TestOrderCoffee(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/order", `{"coffee_id":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp MessageResponse
	decodeBody(t, rec, &resp)
	if resp.Message != "Order placed for Latte" {
		t.Errorf("message = %q, want Order placed for Latte", resp.Message)
	}

	// Ordering is stateless, so a repeat order succeeds too.
	rec = doRequest(t, h, http.MethodPost, "/order", `{"coffee_id":2}`)
	if rec.Code != http.StatusOK {
		t.Errorf("repeat order status = %d, want 200", rec.Code)
	}
}

func TestOrderCoffeeNotFound(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/order", `{"coffee_id":99}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestOrderCoffeeValidation(t *testing.T) {
	h := newTestHandler(t)

	for _, body := range []string{`{}`, `{"coffee_id":0}`, `{"coffee_id":-1}`} {
		rec := doRequest(t, h, http.MethodPost, "/order", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	decodeBody(t, rec, &resp)
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t)

	doRequest(t, h, http.MethodGet, "/coffees", "")

	rec := doRequest(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "openbrew_http_requests_total") {
		t.Errorf("metrics exposition missing request counter:\n%s", rec.Body.String())
	}
}

func TestDocsEndpoint(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/docs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "openapi") {
		t.Error("docs endpoint did not serve the OpenAPI document")
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/teapot", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
