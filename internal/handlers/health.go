package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

// Checker reports the health of a backing service.
type Checker interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check operations.
type HealthHandler struct {
	store Checker
}

// NewHealthHandler creates a health handler over the shared store.
func NewHealthHandler(store Checker) *HealthHandler {
	return &HealthHandler{store: store}
}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Body struct {
		Status string `json:"status"`
		Store  string `json:"store"`
	}
}

// Check reports whether the service and its store are reachable. The
// service stays up when the store is down, but every component is then
// running on its documented fallback behavior.
func (h *HealthHandler) Check(ctx context.Context, _ *struct{}) (*HealthResponse, error) {
	resp := &HealthResponse{}
	resp.Body.Status = "ok"

	if err := h.store.Ping(ctx); err != nil {
		resp.Body.Store = "unhealthy"
		resp.Body.Status = "degraded"
	} else {
		resp.Body.Store = "healthy"
	}

	return resp, nil
}

// RegisterHealthRoutes registers the health check route.
func RegisterHealthRoutes(api huma.API, h *HealthHandler) {
	huma.Get(api, "/health", h.Check)
}
