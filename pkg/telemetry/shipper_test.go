package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// collector is a fake ingest endpoint capturing shipped record batches.
type collector struct {
	mu      sync.Mutex
	batches [][]LogRecord
	headers []http.Header
	status  int
}

func newCollector(t *testing.T, status int) (*collector, *httptest.Server) {
	t.Helper()

	c := &collector{status: status}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read collector body: %v", err)
		}
		var batch []LogRecord
		if err := json.Unmarshal(body, &batch); err != nil {
			t.Errorf("collector received invalid JSON: %v", err)
		}
		c.mu.Lock()
		c.batches = append(c.batches, batch)
		c.headers = append(c.headers, r.Header.Clone())
		c.mu.Unlock()
		w.WriteHeader(c.status)
	}))
	t.Cleanup(srv.Close)
	return c, srv
}

func (c *collector) records() []LogRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []LogRecord
	for _, b := range c.batches {
		out = append(out, b...)
	}
	return out
}

func TestShipDeliversRecord(t *testing.T) {
	t.Setenv("HOSTNAME", "unit-test-host")

	coll, srv := newCollector(t, http.StatusOK)
	shipper := NewShipper(ShippingConfig{
		Enabled:         true,
		Endpoint:        srv.URL,
		IngestKey:       "secret",
		IngestKeyHeader: "X-Ingest-Key",
		Timeout:         2 * time.Second,
	}, "openbrew")

	ctx := WithRequestInfo(context.Background(), RequestInfo{
		ID:     "req-1",
		Method: "GET",
		Path:   "/coffees",
	})

	if err := shipper.Ship(ctx, SeverityInfo, "Fetching all coffee items."); err != nil {
		t.Fatalf("Ship failed: %v", err)
	}

	recs := coll.records()
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	rec := recs[0]

	if rec.ServiceName != "openbrew" {
		t.Errorf("service name = %q, want openbrew", rec.ServiceName)
	}
	if rec.SeverityText != "INFO" || rec.SeverityNumber != 4 {
		t.Errorf("severity = %s/%d, want INFO/4", rec.SeverityText, rec.SeverityNumber)
	}
	if rec.TraceFlags != 1 {
		t.Errorf("trace flags = %d, want 1", rec.TraceFlags)
	}
	if rec.Attributes["method"] != "GET" || rec.Attributes["path"] != "/coffees" {
		t.Errorf("attributes = %v, want method/path set", rec.Attributes)
	}
	if rec.Resources["host"] != "unit-test-host" {
		t.Errorf("host = %q, want unit-test-host", rec.Resources["host"])
	}
	if rec.Resources["namespace"] != "prod" {
		t.Errorf("namespace = %q, want prod", rec.Resources["namespace"])
	}
	if _, err := time.Parse(time.RFC3339Nano, rec.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", rec.Timestamp, err)
	}

	if got := coll.headers[0].Get("X-Ingest-Key"); got != "secret" {
		t.Errorf("ingest key header = %q, want secret", got)
	}
}

func TestShipZeroIdentityOutsideSpan(t *testing.T) {
	coll, srv := newCollector(t, http.StatusOK)
	shipper := NewShipper(ShippingConfig{Enabled: true, Endpoint: srv.URL}, "openbrew")

	if err := shipper.Ship(context.Background(), SeverityInfo, "no span"); err != nil {
		t.Fatalf("Ship failed: %v", err)
	}

	rec := coll.records()[0]
	if rec.TraceID != ZeroTraceID {
		t.Errorf("trace id = %q, want zero fallback", rec.TraceID)
	}
	if rec.SpanID != ZeroSpanID {
		t.Errorf("span id = %q, want zero fallback", rec.SpanID)
	}
	if _, ok := rec.Attributes["method"]; ok {
		t.Error("method attribute present outside request handling")
	}
}

func TestShipCarriesActiveSpanIdentity(t *testing.T) {
	coll, srv := newCollector(t, http.StatusOK)
	shipper := NewShipper(ShippingConfig{Enabled: true, Endpoint: srv.URL}, "openbrew")

	tracer, err := NewTracer(TracingConfig{Enabled: false}, "openbrew", "test", "test")
	if err != nil {
		t.Fatalf("NewTracer failed: %v", err)
	}

	ctx, span := tracer.Start(context.Background(), "get_coffees")
	defer span.End()

	if err := shipper.Ship(ctx, SeverityInfo, "in span"); err != nil {
		t.Fatalf("Ship failed: %v", err)
	}

	rec := coll.records()[0]
	if rec.TraceID != span.SpanContext().TraceID().String() {
		t.Errorf("trace id = %q, want %q", rec.TraceID, span.SpanContext().TraceID().String())
	}
	if rec.SpanID != span.SpanContext().SpanID().String() {
		t.Errorf("span id = %q, want %q", rec.SpanID, span.SpanContext().SpanID().String())
	}
}

func TestShipReportsCollectorRejection(t *testing.T) {
	_, srv := newCollector(t, http.StatusForbidden)
	shipper := NewShipper(ShippingConfig{Enabled: true, Endpoint: srv.URL}, "openbrew")

	if err := shipper.Ship(context.Background(), SeverityInfo, "rejected"); err == nil {
		t.Fatal("expected error for non-2xx collector response")
	}
}

func TestShipReportsUnreachableCollector(t *testing.T) {
	// Reserved port, nothing listening.
	shipper := NewShipper(ShippingConfig{
		Enabled:  true,
		Endpoint: "http://127.0.0.1:1",
		Timeout:  500 * time.Millisecond,
	}, "openbrew")

	start := time.Now()
	err := shipper.Ship(context.Background(), SeverityInfo, "unreachable")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("single attempt took %s, want bounded by timeout", elapsed)
	}
}

func TestShipDisabledIsNoop(t *testing.T) {
	shipper := NewShipper(ShippingConfig{Enabled: false}, "openbrew")
	if err := shipper.Ship(context.Background(), SeverityInfo, "dropped"); err != nil {
		t.Fatalf("disabled shipper returned error: %v", err)
	}
}

func TestSeverityMapping(t *testing.T) {
	tests := []struct {
		level      string
		wantText   string
		wantNumber int
	}{
		{"DEBUG", "DEBUG", 1},
		{"INFO", "INFO", 4},
		{"WARN", "WARN", 8},
		{"ERROR", "ERROR", 16},
		{"CRITICAL", "CRITICAL", 24},
		{"VERBOSE", "INFO", 4}, // unrecognized falls back to INFO
	}

	shipper := NewShipper(ShippingConfig{}, "openbrew")
	for _, tt := range tests {
		rec := shipper.Record(context.Background(), tt.level, "msg")
		if rec.SeverityText != tt.wantText || rec.SeverityNumber != tt.wantNumber {
			t.Errorf("level %q mapped to %s/%d, want %s/%d",
				tt.level, rec.SeverityText, rec.SeverityNumber, tt.wantText, tt.wantNumber)
		}
	}
}
