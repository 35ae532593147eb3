// Package api implements the openbrew HTTP surface: the coffee menu CRUD
// resources, the order endpoint, and the observability endpoints, wired
// through per-request lifecycle hooks.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/openbrew/openbrew/pkg/menu"
	"github.com/openbrew/openbrew/pkg/telemetry"
)

// API holds the handler dependencies: the menu store and the telemetry
// pipeline. The store is an explicitly owned handle rather than shared
// package state, so handlers never touch implicit globals.
type API struct {
	store    menu.Store
	tel      *telemetry.Telemetry
	log      *telemetry.Logger
	validate *validator.Validate
}

// New creates the API with the given store and telemetry pipeline.
func New(store menu.Store, tel *telemetry.Telemetry) *API {
	return &API{
		store:    store,
		tel:      tel,
		log:      tel.Logger.NewComponentLogger("api"),
		validate: validator.New(),
	}
}

// Handler returns the full HTTP handler: routes wrapped by the lifecycle
// hooks (outermost, so the post-hook observes panic recoveries as 500s)
// and the panic recovery middleware.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /coffees", a.handleListCoffees)
	mux.HandleFunc("POST /coffees", a.handleCreateCoffee)
	mux.HandleFunc("GET /coffees/{id}", a.handleGetCoffee)
	mux.HandleFunc("PUT /coffees/{id}", a.handleUpdateCoffee)
	mux.HandleFunc("DELETE /coffees/{id}", a.handleDeleteCoffee)
	mux.HandleFunc("POST /order", a.handleOrderCoffee)

	mux.Handle("GET /metrics", a.tel.Metrics.Handler())
	mux.HandleFunc("GET /docs", a.handleDocs)
	mux.HandleFunc("GET /health", a.handleHealth)

	return a.lifecycleHooks(a.recoverPanics(mux))
}

// Server wraps http.Server with lifecycle management.
type Server struct {
	httpServer *http.Server
	log        *telemetry.Logger
}

// NewServer creates an HTTP server for the API on the given address.
func NewServer(addr string, a *API, log *telemetry.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           a.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log.NewComponentLogger("server"),
	}
}

// Start serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Infof("listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.log.Info("shutting down")
	return s.httpServer.Shutdown(shutdownCtx)
}
