// Package handler provides the health and index statistics endpoints.
// The health check never fails outright: it always returns a status
// payload, degrading the reported status instead of erroring.
package handler

import (
	"net/http"

	"github.com/factvault/factvault/internal/model"
)

// Health status values.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// healthResponse is the payload returned by the health endpoint.
type healthResponse struct {
	Status       string `json:"status"`
	WalrusStatus string `json:"walrusStatus"`
	IndexStatus  string `json:"indexStatus"`
	FactCount    int    `json:"factCount"`
}

// healthCheck handles GET /health.
// Status matrix: healthy when backend and index are both up, degraded when
// only the index is down, unhealthy (HTTP 503) when the backend is down.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	backendUp := h.backend.HealthCheck(r.Context()) == nil

	// A lazy first-use initialize: the index counts as down only if it
	// cannot build a snapshot now.
	indexUp := h.index.Initialize(r.Context()) == nil

	resp := healthResponse{
		WalrusStatus: statusHealthy,
		IndexStatus:  statusHealthy,
		FactCount:    h.stores.Facts.Count(),
	}

	status := http.StatusOK
	switch {
	case backendUp && indexUp:
		resp.Status = statusHealthy
	case backendUp:
		resp.Status = statusDegraded
		resp.IndexStatus = statusUnhealthy
	default:
		resp.Status = statusUnhealthy
		resp.WalrusStatus = statusUnhealthy
		if !indexUp {
			resp.IndexStatus = statusUnhealthy
		}
		status = http.StatusServiceUnavailable
	}

	h.jsonResponse(w, status, resp)
}

// indexStats handles GET /index/stats.
// Initializes the index on first use; a failed initialization surfaces as
// a server error per the backend-failure propagation policy.
func (h *Handler) indexStats(w http.ResponseWriter, r *http.Request) {
	if err := h.index.Initialize(r.Context()); err != nil {
		h.log.WithError(err).Error("index initialization failed")
		h.jsonError(w, model.ErrIndexUnavailable.Error(), http.StatusInternalServerError)
		return
	}

	// Keep the snapshot fresh for explicit stats queries.
	if err := h.index.Refresh(r.Context()); err != nil {
		h.log.WithError(err).Error("index refresh failed")
		h.jsonError(w, model.ErrIndexUnavailable.Error(), http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, http.StatusOK, h.index.Stats())
}
