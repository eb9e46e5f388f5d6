// Package handler exposes the HTTP transport for the order service.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DAA412/tz-aiti-guru/internal/domain/order"
)

// Handler holds the HTTP endpoints and delegates business logic to the order
// service.
type Handler struct {
	service *order.Service
}

// NewHandler constructs a Handler around the order service.
func NewHandler(service *order.Service) *Handler {
	return &Handler{service: service}
}

// Routes builds the chi router with all API endpoints.
func (h *Handler) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Post("/orders/{orderID}/items", h.AddOrderItem)
	r.Get("/health", h.HealthCheck)
	return r
}

// errorResponse is the JSON body for all non-2xx outcomes.
type errorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail, ErrorCode: code})
}
