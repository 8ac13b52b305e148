// Package handler provides API key management handlers.
// The key secret is returned in full exactly once, in the creation
// response; listing endpoints only ever expose a truncated prefix.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/factvault/factvault/internal/apikey"
	"github.com/factvault/factvault/internal/model"
)

// createKeyRequest is the JSON body for key creation.
type createKeyRequest struct {
	Name        string   `json:"name"`
	UserID      string   `json:"userId,omitempty"`
	Permissions []string `json:"permissions"`
	Tier        string   `json:"tier,omitempty"`
}

// createAPIKey handles POST /keys.
func (h *Handler) createAPIKey(w http.ResponseWriter, r *http.Request) {
	var req createKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	key, err := h.keys.Create(apikey.CreateParams{
		Name:        req.Name,
		UserID:      req.UserID,
		Permissions: req.Permissions,
		Tier:        req.Tier,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	// The only response that carries the full secret.
	h.jsonResponse(w, http.StatusCreated, key)
}

// listAPIKeys handles GET /keys?userId=...
func (h *Handler) listAPIKeys(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	keys := h.keys.ListForUser(userID)

	h.jsonResponse(w, http.StatusOK, map[string]any{
		"keys":  keys,
		"count": len(keys),
	})
}

// revokeAPIKey handles DELETE /keys/{id}.
// Revoking an unknown or already-revoked id returns 404.
func (h *Handler) revokeAPIKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if !h.keys.Revoke(id) {
		h.handleError(w, model.ErrAPIKeyNotFound)
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{
		"id":      id,
		"revoked": true,
	})
}

// apiKeyUsage handles GET /keys/{id}/usage.
func (h *Handler) apiKeyUsage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	usage, ok := h.keys.Usage(id)
	if !ok {
		h.handleError(w, model.ErrAPIKeyNotFound)
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{
		"id":    id,
		"usage": usage,
	})
}
