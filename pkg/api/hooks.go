package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/openbrew/openbrew/pkg/telemetry"
)

// statusRecorder captures the status code written by a handler so the
// post-hook can report it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// lifecycleHooks is the middleware implementing the pre- and post-request
// hooks. It runs for every request regardless of route or outcome.
//
// The pre-hook opens the server span before anything else, so hooks and
// handlers within one request all share the same trace. It then increments
// the inbound request counter, logs locally, and ships an INFO record.
// After dispatch the post-hook logs and ships the response status; it runs
// unconditionally, including for 4xx/5xx handler outcomes. Shipping
// failures are absorbed inside Telemetry.Ship and never alter the response.
func (a *API) lifecycleHooks(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		info := telemetry.RequestInfo{
			ID:     uuid.NewString(),
			Method: r.Method,
			Path:   r.URL.RequestURI(),
		}
		ctx := telemetry.WithRequestInfo(r.Context(), info)

		ctx, span := a.tel.Tracer.StartRequestSpan(ctx, r.Method, r.URL.Path, info.ID)
		defer span.End()

		a.tel.Metrics.RecordRequest()

		log := a.log.WithRequestID(info.ID)
		log.Infof("Incoming request: %s %s", r.Method, r.URL.String())
		a.tel.Ship(ctx, telemetry.SeverityInfo,
			fmt.Sprintf("Incoming request: %s %s", r.Method, r.URL.String()))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		log.Infof("Response: %d for %s", rec.status, r.URL.String())
		a.tel.Ship(ctx, telemetry.SeverityInfo,
			fmt.Sprintf("Response: %d for %s", rec.status, r.URL.String()))

		a.tel.Metrics.RecordRoute(r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// recoverPanics converts handler panics into a 500 response so one
// malformed request cannot take down concurrent in-flight requests.
func (a *API) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				a.log.Errorf("panic while handling %s %s: %v", r.Method, r.URL.Path, v)
				writeMessage(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
