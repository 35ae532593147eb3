package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Severity levels accepted by Ship. Unrecognized levels map to INFO.
const (
	SeverityDebug    = "DEBUG"
	SeverityInfo     = "INFO"
	SeverityWarn     = "WARN"
	SeverityError    = "ERROR"
	SeverityCritical = "CRITICAL"
)

// resourceNamespace is the fixed namespace reported in every log record.
const resourceNamespace = "prod"

// LogRecord is a structured log record delivered to the collector.
// Immutable once built; sent exactly once.
type LogRecord struct {
	Timestamp      string            `json:"timestamp"`
	ServiceName    string            `json:"service_name"`
	SeverityText   string            `json:"severity_text"`
	SeverityNumber int               `json:"severity_number"`
	TraceID        string            `json:"trace_id"`
	SpanID         string            `json:"span_id"`
	TraceFlags     int               `json:"trace_flags"`
	Attributes     map[string]string `json:"attributes"`
	Resources      map[string]string `json:"resources"`
	Message        string            `json:"message"`
}

// Shipper delivers structured log records to an external collector over
// HTTP. Delivery is a single best-effort attempt per record: no retries,
// no buffering, bounded by the configured client timeout.
type Shipper struct {
	config      ShippingConfig
	serviceName string
	host        string
	client      *http.Client
}

// NewShipper creates a shipper for the given collector configuration.
// The host resource attribute is taken from HOSTNAME, falling back to
// "localhost" when unset.
func NewShipper(cfg ShippingConfig, serviceName string) *Shipper {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.IngestKeyHeader == "" {
		cfg.IngestKeyHeader = "X-Ingest-Key"
	}

	host := os.Getenv("HOSTNAME")
	if host == "" {
		host = "localhost"
	}

	return &Shipper{
		config:      cfg,
		serviceName: serviceName,
		host:        host,
		client:      &http.Client{Timeout: cfg.Timeout},
	}
}

// Record builds a log record from the ambient request context. The trace
// and span identifiers reflect whichever span is active at call time, with
// zero-filled fallbacks outside any span. Method and path are empty when
// called outside request handling.
func (s *Shipper) Record(ctx context.Context, level, message string) LogRecord {
	rec := LogRecord{
		Timestamp:      time.Now().UTC().Format(time.RFC3339Nano),
		ServiceName:    s.serviceName,
		SeverityText:   normalizeSeverity(level),
		SeverityNumber: severityNumber(level),
		TraceID:        TraceID(ctx),
		SpanID:         SpanID(ctx),
		TraceFlags:     1,
		Attributes:     map[string]string{},
		Resources: map[string]string{
			"host":      s.host,
			"namespace": resourceNamespace,
		},
		Message: message,
	}

	if info, ok := RequestInfoFromContext(ctx); ok {
		rec.Attributes["method"] = info.Method
		rec.Attributes["path"] = info.Path
		if info.ID != "" {
			rec.Attributes["request_id"] = info.ID
		}
	}

	return rec
}

// Ship builds a log record from the context and delivers it to the
// collector in a single attempt. The returned error exists for local
// diagnostics only; callers must not surface it to the request path.
func (s *Shipper) Ship(ctx context.Context, level, message string) error {
	if !s.config.Enabled {
		return nil
	}

	rec := s.Record(ctx, level, message)

	// The collector ingests arrays of records.
	payload, err := json.Marshal([]LogRecord{rec})
	if err != nil {
		return fmt.Errorf("failed to encode log record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build collector request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.IngestKey != "" {
		req.Header.Set(s.config.IngestKeyHeader, s.config.IngestKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("collector unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("collector rejected log record: HTTP %d", resp.StatusCode)
	}

	return nil
}

// normalizeSeverity maps a level string to its canonical severity text.
func normalizeSeverity(level string) string {
	switch level {
	case SeverityDebug, SeverityInfo, SeverityWarn, SeverityError, SeverityCritical:
		return level
	default:
		return SeverityInfo
	}
}

// severityNumber maps a level string to the collector's numeric scale.
func severityNumber(level string) int {
	switch level {
	case SeverityDebug:
		return 1
	case SeverityInfo:
		return 4
	case SeverityWarn:
		return 8
	case SeverityError:
		return 16
	case SeverityCritical:
		return 24
	default:
		return 4
	}
}
