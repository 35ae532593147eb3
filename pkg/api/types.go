package api

import (
	"encoding/json"
	"net/http"

	"github.com/openbrew/openbrew/pkg/menu"
)

// MessageResponse is the body returned for confirmations and errors.
type MessageResponse struct {
	Message string `json:"message"`
}

// CoffeeListResponse wraps the full menu listing.
type CoffeeListResponse struct {
	Coffees []menu.Item `json:"coffees"`
}

// CreateCoffeeRequest is the body of POST /coffees. Price is a pointer so
// a missing field can be told apart from an explicit zero.
type CreateCoffeeRequest struct {
	Name  string   `json:"name" validate:"required"`
	Price *float64 `json:"price" validate:"required,gte=0"`
}

// UpdateCoffeeRequest is the body of PUT /coffees/{id}. Both fields are
// optional; omitted fields keep their existing values.
type UpdateCoffeeRequest struct {
	Name  *string  `json:"name" validate:"omitempty,min=1"`
	Price *float64 `json:"price" validate:"omitempty,gte=0"`
}

// OrderRequest is the body of POST /order.
type OrderRequest struct {
	CoffeeID int `json:"coffee_id" validate:"required,gt=0"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeMessage writes a plain confirmation or error message.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}
