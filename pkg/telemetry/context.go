package telemetry

import (
	"context"
)

// RequestInfo carries the ambient attributes of the request being handled.
// One instance exists per inbound request; it is owned by that request's
// context and never shared across requests.
type RequestInfo struct {
	// ID is the server-assigned request identifier.
	ID string

	// Method is the HTTP method of the request.
	Method string

	// Path is the request URL path and query.
	Path string
}

// requestInfoContextKey is the context key for request info.
type requestInfoContextKey struct{}

// WithRequestInfo adds request info to the context.
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoContextKey{}, info)
}

// RequestInfoFromContext retrieves the request info from the context.
// The zero value is returned outside of request handling.
func RequestInfoFromContext(ctx context.Context) (RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoContextKey{}).(RequestInfo)
	return info, ok
}

// Telemetry bundles the observability components handed to the API layer.
type Telemetry struct {
	Logger  *Logger
	Tracer  *Tracer
	Metrics *Metrics
	Shipper *Shipper
	Config  *Config
}

// New creates a telemetry instance from configuration.
func New(cfg *Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	tracer, err := NewTracer(cfg.Tracing, cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, err
	}

	metrics, err := NewMetrics(cfg.Metrics)
	if err != nil {
		return nil, err
	}

	shipper := NewShipper(cfg.Shipping, cfg.ServiceName)

	return &Telemetry{
		Logger:  logger,
		Tracer:  tracer,
		Metrics: metrics,
		Shipper: shipper,
		Config:  cfg,
	}, nil
}

// Shutdown gracefully shuts down all telemetry components.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return t.Tracer.Shutdown(ctx)
}

// Ship delivers a log record to the collector, reporting failures only to
// the local diagnostic log. The HTTP response being produced is never
// affected by a shipping failure.
func (t *Telemetry) Ship(ctx context.Context, level, message string) {
	if err := t.Shipper.Ship(ctx, level, message); err != nil {
		t.Metrics.RecordShipFailure()
		t.Logger.WithError(err).Warn("log shipping failed")
	}
}
