// Package handler provides fact-related HTTP handlers.
// Facts follow the write path of the persistence core: serialize, store a
// new immutable blob, then bind the record to the returned metadata.
// Updates always mint a new blob id; the old blob stays untouched on the
// backend.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/factvault/factvault/internal/model"
)

// factResponse is the JSON shape returned for fact operations.
type factResponse struct {
	Fact model.Fact         `json:"fact"`
	Blob model.BlobMetadata `json:"blob"`
}

// createFact handles POST /facts.
// Request body is the fact itself; id is caller-assigned.
func (h *Handler) createFact(w http.ResponseWriter, r *http.Request) {
	var fact model.Fact
	if err := json.NewDecoder(r.Body).Decode(&fact); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := fact.Validate(); err != nil {
		h.handleError(w, err)
		return
	}
	if fact.Status == "" {
		fact.Status = model.StatusUnverified
	}
	if !model.ValidStatus(fact.Status) {
		h.jsonError(w, "invalid fact status", http.StatusBadRequest)
		return
	}

	record, err := h.storeFact(r, fact)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.jsonResponse(w, http.StatusCreated, factResponse{
		Fact: record.Fact,
		Blob: record.BlobMetadata,
	})
}

// getFact handles GET /facts/{id}.
func (h *Handler) getFact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, ok := h.stores.Facts.Get(id)
	if !ok {
		h.handleError(w, model.ErrFactNotFound)
		return
	}

	h.jsonResponse(w, http.StatusOK, factResponse{
		Fact: record.Fact,
		Blob: record.BlobMetadata,
	})
}

// updateFact handles PUT /facts/{id}.
// The fact must exist; the updated content is written as a new blob and
// the record is replaced, so the returned blob id differs from the
// original.
func (h *Handler) updateFact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, ok := h.stores.Facts.Get(id)
	if !ok {
		h.handleError(w, model.ErrFactNotFound)
		return
	}

	var fact model.Fact
	if err := json.NewDecoder(r.Body).Decode(&fact); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	// The path parameter owns the identity.
	fact.ID = id
	if fact.Status == "" {
		fact.Status = existing.Fact.Status
	}
	if !model.ValidStatus(fact.Status) {
		h.jsonError(w, "invalid fact status", http.StatusBadRequest)
		return
	}

	record, err := h.storeFact(r, fact)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.jsonResponse(w, http.StatusOK, factResponse{
		Fact: record.Fact,
		Blob: record.BlobMetadata,
	})
}

// storeFact runs the shared write path: envelope, blob store, record
// upsert. The record map write happens only after the backend accepted
// the payload, so readers never see a fact whose blob does not exist.
func (h *Handler) storeFact(r *http.Request, fact model.Fact) (model.StoredFactRecord, error) {
	payload, err := model.NewFactEnvelope(fact)
	if err != nil {
		return model.StoredFactRecord{}, err
	}

	meta, err := h.backend.Store(r.Context(), payload)
	if err != nil {
		return model.StoredFactRecord{}, err
	}

	fact.BlobID = meta.BlobID
	record := model.StoredFactRecord{
		Fact:                    fact,
		BlobID:                  meta.BlobID,
		BlobMetadata:            meta,
		AvailabilityCertificate: meta.Certificate,
	}
	if err := h.stores.Facts.Upsert(record); err != nil {
		return model.StoredFactRecord{}, err
	}
	return record, nil
}
