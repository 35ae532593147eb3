// Package telemetry provides the request-scoped observability pipeline for
// the openbrew service: structured logging, distributed tracing, Prometheus
// metrics, and best-effort shipping of structured log records to an
// external collector.
//
// # Components
//
//   - Logger: a zerolog wrapper with level control and field helpers for
//     local diagnostic logging.
//   - Tracer: an OpenTelemetry tracer with OTLP gRPC and stdout exporters.
//     TraceID and SpanID read the span active in a context and fall back to
//     zero-filled identifiers outside any span.
//   - Metrics: a private Prometheus registry counting inbound requests and
//     exposing them through a pull-based /metrics handler.
//   - Shipper: formats LogRecord values and POSTs them to a collector with
//     an ingestion-key header. Delivery is one attempt per record, bounded
//     by a client timeout; failures are reported to the caller for local
//     diagnostics and never reach the request path.
//
// # Usage
//
//	cfg := telemetry.DefaultConfig()
//	tel, err := telemetry.New(cfg)
//	if err != nil {
//		return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	ctx, span := tel.Tracer.Start(ctx, "add_coffee")
//	defer span.End()
//	tel.Ship(ctx, telemetry.SeverityInfo, "Added new coffee")
//
// Every log record shipped while a span is active carries that span's trace
// and span identifiers, correlating logs with traces out-of-band.
package telemetry
