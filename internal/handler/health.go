package handler

import "net/http"

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// HealthCheck reports static service identity. Liveness and readiness with
// real dependency checks live on /livez and /readyz.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: "order-service",
	})
}
