// Package handler provides HTTP request handlers for FactVault.
// These handlers expose the persistence core over a JSON API: fact and
// comment storage backed by the blob backend, index statistics, health,
// and API key management.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/factvault/factvault/internal/apikey"
	"github.com/factvault/factvault/internal/blob"
	"github.com/factvault/factvault/internal/config"
	"github.com/factvault/factvault/internal/index"
	"github.com/factvault/factvault/internal/middleware"
	"github.com/factvault/factvault/internal/model"
	"github.com/factvault/factvault/internal/store"
)

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	config  *config.Config
	backend blob.Store
	stores  *store.Stores
	index   *index.Manager
	keys    *apikey.Manager
	log     *logrus.Logger
}

// New creates a new Handler with the given dependencies.
func New(cfg *config.Config, backend blob.Store, stores *store.Stores,
	idx *index.Manager, keys *apikey.Manager, log *logrus.Logger) *Handler {
	return &Handler{
		config:  cfg,
		backend: backend,
		stores:  stores,
		index:   idx,
		keys:    keys,
		log:     log,
	}
}

// Routes returns the chi router with all API routes configured.
// Data routes are gated by API key permissions; health and key creation
// are open, and every request seeds the demo keys (idempotent).
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.seedDemoKeys)

	r.Get("/health", h.healthCheck)
	r.Get("/index/stats", h.indexStats)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireKey(h.keys, model.PermissionRead))
		r.Get("/facts/{id}", h.getFact)
		r.Get("/comments", h.listComments)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireKey(h.keys, model.PermissionWrite))
		r.Post("/facts", h.createFact)
		r.Put("/facts/{id}", h.updateFact)
		r.Post("/comments", h.createComment)
	})

	r.Route("/keys", func(r chi.Router) {
		r.Get("/", h.listAPIKeys)
		r.Post("/", h.createAPIKey)
		r.Delete("/{id}", h.revokeAPIKey)
		r.Get("/{id}/usage", h.apiKeyUsage)
	})

	return r
}

// seedDemoKeys makes sure the demo key set exists before any request is
// served. Seeding happens once per process; the per-request call is a
// cheap no-op afterwards.
func (h *Handler) seedDemoKeys(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.keys.SeedDemoKeys()
		next.ServeHTTP(w, r)
	})
}

// jsonError sends a JSON error response.
func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// jsonResponse sends a JSON success response with the given status.
func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// errorStatus translates a domain error into the matching HTTP status.
func errorStatus(err error) int {
	switch {
	case model.IsValidation(err):
		return http.StatusBadRequest
	case model.IsNotFound(err):
		return http.StatusNotFound
	case model.IsRateLimited(err):
		return http.StatusTooManyRequests
	case model.IsForbidden(err):
		return http.StatusForbidden
	case model.IsUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleError logs and writes a domain error.
func (h *Handler) handleError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).Error("request failed")
	}
	h.jsonError(w, err.Error(), status)
}
