package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/openbrew/openbrew/pkg/menu"
	"github.com/openbrew/openbrew/pkg/telemetry"
)

// handleListCoffees handles GET /coffees.
func (a *API) handleListCoffees(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tel.Tracer.Start(r.Context(), "get_coffees")
	defer span.End()

	items, err := a.store.List(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		a.log.WithError(err).Error("failed to list menu items")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.log.Info("Fetching all coffee items.")
	a.tel.Ship(ctx, telemetry.SeverityInfo, "Fetching all coffee items.")

	writeJSON(w, http.StatusOK, CoffeeListResponse{Coffees: items})
}

// handleCreateCoffee handles POST /coffees.
func (a *API) handleCreateCoffee(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tel.Tracer.Start(r.Context(), "add_coffee")
	defer span.End()

	var req CreateCoffeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if err := a.validate.Struct(&req); err != nil {
		a.log.Warn("Invalid request: Name and price are required.")
		writeMessage(w, http.StatusBadRequest, "Name and price are required.")
		return
	}

	item, err := a.store.Create(ctx, req.Name, *req.Price)
	if err != nil {
		telemetry.RecordError(span, err)
		a.log.WithError(err).Error("failed to create menu item")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	span.SetAttributes(
		telemetry.AttrCoffeeID.Int(item.ID),
		telemetry.AttrCoffeeName.String(item.Name),
		telemetry.AttrCoffeePrice.Float64(item.Price),
	)
	a.updateMenuGauge(ctx)

	msg := fmt.Sprintf("Added new coffee: id=%d name=%s price=%g", item.ID, item.Name, item.Price)
	a.log.Info(msg)
	a.tel.Ship(ctx, telemetry.SeverityInfo, msg)

	writeJSON(w, http.StatusCreated, item)
}

// handleGetCoffee handles GET /coffees/{id}.
func (a *API) handleGetCoffee(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tel.Tracer.Start(r.Context(), "get_coffee")
	defer span.End()

	id, ok := a.coffeeID(w, r)
	if !ok {
		return
	}

	item, err := a.store.Get(ctx, id)
	if errors.Is(err, menu.ErrNotFound) {
		a.log.Warnf("Coffee item with ID %d not found.", id)
		writeMessage(w, http.StatusNotFound, "Coffee not found")
		return
	}
	if err != nil {
		telemetry.RecordError(span, err)
		a.log.WithError(err).Error("failed to get menu item")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	span.SetAttributes(telemetry.AttrCoffeeID.Int(item.ID))
	a.log.Infof("Fetching coffee item: id=%d name=%s", item.ID, item.Name)
	a.tel.Ship(ctx, telemetry.SeverityInfo,
		fmt.Sprintf("Fetching coffee item: id=%d name=%s", item.ID, item.Name))

	writeJSON(w, http.StatusOK, item)
}

// handleUpdateCoffee handles PUT /coffees/{id}. Supplied fields are merged
// over the existing item; omitted fields keep their prior values.
func (a *API) handleUpdateCoffee(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tel.Tracer.Start(r.Context(), "update_coffee")
	defer span.End()

	id, ok := a.coffeeID(w, r)
	if !ok {
		return
	}

	var req UpdateCoffeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if err := a.validate.Struct(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid name or price.")
		return
	}

	item, err := a.store.Update(ctx, id, menu.ItemUpdate{Name: req.Name, Price: req.Price})
	if errors.Is(err, menu.ErrNotFound) {
		a.log.Warnf("Update failed: Coffee with ID %d not found.", id)
		writeMessage(w, http.StatusNotFound, "Coffee not found")
		return
	}
	if err != nil {
		telemetry.RecordError(span, err)
		a.log.WithError(err).Error("failed to update menu item")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	span.SetAttributes(
		telemetry.AttrCoffeeID.Int(item.ID),
		telemetry.AttrCoffeeName.String(item.Name),
		telemetry.AttrCoffeePrice.Float64(item.Price),
	)

	msg := fmt.Sprintf("Updated coffee item: id=%d name=%s price=%g", item.ID, item.Name, item.Price)
	a.log.Info(msg)
	a.tel.Ship(ctx, telemetry.SeverityInfo, msg)

	writeJSON(w, http.StatusOK, item)
}

// handleDeleteCoffee handles DELETE /coffees/{id}.
//
// Delete is idempotent: removing an absent id returns the same confirmation
// as removing a present one. Earlier revisions of the service returned 404
// for absent ids; the uniform 200 is the documented policy here.
func (a *API) handleDeleteCoffee(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tel.Tracer.Start(r.Context(), "delete_coffee")
	defer span.End()

	id, ok := a.coffeeID(w, r)
	if !ok {
		return
	}

	removed, err := a.store.Delete(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		a.log.WithError(err).Error("failed to delete menu item")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	span.SetAttributes(telemetry.AttrCoffeeID.Int(id))
	if removed > 0 {
		a.updateMenuGauge(ctx)
	}

	msg := fmt.Sprintf("Deleted coffee item: id=%d removed=%d", id, removed)
	a.log.Info(msg)
	a.tel.Ship(ctx, telemetry.SeverityInfo, msg)

	writeMessage(w, http.StatusOK, "Coffee deleted")
}

// handleOrderCoffee handles POST /order.
//
// Ordering is a stateless notification: it reduces no inventory and has no
// idempotency key, so repeated identical orders succeed indefinitely.
func (a *API) handleOrderCoffee(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tel.Tracer.Start(r.Context(), "order_coffee")
	defer span.End()

	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if err := a.validate.Struct(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "A valid coffee_id is required.")
		return
	}

	item, err := a.store.Get(ctx, req.CoffeeID)
	if errors.Is(err, menu.ErrNotFound) {
		a.log.Warnf("Order failed: Coffee with ID %d not found.", req.CoffeeID)
		writeMessage(w, http.StatusNotFound, "Coffee not found")
		return
	}
	if err != nil {
		telemetry.RecordError(span, err)
		a.log.WithError(err).Error("failed to look up menu item")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	span.SetAttributes(
		telemetry.AttrCoffeeName.String(item.Name),
		telemetry.AttrCoffeePrice.Float64(item.Price),
	)
	a.tel.Metrics.RecordOrder()

	msg := fmt.Sprintf("Order placed for %s", item.Name)
	a.log.Info(msg)
	a.tel.Ship(ctx, telemetry.SeverityInfo, msg)

	writeMessage(w, http.StatusOK, msg)
}

// handleHealth handles GET /health.
func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// coffeeID parses the {id} path value, writing a 400 response on failure.
func (a *API) coffeeID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "Invalid coffee id.")
		return 0, false
	}
	return id, true
}

// updateMenuGauge refreshes the menu size gauge after a mutation.
func (a *API) updateMenuGauge(ctx context.Context) {
	if count, err := a.store.Count(ctx); err == nil {
		a.tel.Metrics.SetMenuItems(float64(count))
	}
}
