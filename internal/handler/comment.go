// Package handler provides comment-related HTTP handlers.
// Comments attach community context to facts; like facts they are stored
// as immutable blobs with a record binding them to the fact they annotate.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/factvault/factvault/internal/model"
)

// commentResponse is the JSON shape returned for comment creation.
type commentResponse struct {
	Comment model.ContextComment `json:"comment"`
	Blob    model.BlobMetadata   `json:"blob"`
}

// createComment handles POST /comments.
// The body must carry both the comment id and the fact id it belongs to.
func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	var comment model.ContextComment
	if err := json.NewDecoder(r.Body).Decode(&comment); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := comment.Validate(); err != nil {
		h.handleError(w, err)
		return
	}
	if comment.Created.IsZero() {
		comment.Created = time.Now()
	}
	if comment.Votes < 0 {
		comment.Votes = 0
	}

	payload, err := model.NewCommentEnvelope(comment)
	if err != nil {
		h.handleError(w, err)
		return
	}

	meta, err := h.backend.Store(r.Context(), payload)
	if err != nil {
		h.handleError(w, err)
		return
	}

	record := model.StoredCommentRecord{
		Comment:                 comment,
		BlobID:                  meta.BlobID,
		BlobMetadata:            meta,
		AvailabilityCertificate: meta.Certificate,
	}
	if err := h.stores.Comments.Upsert(record); err != nil {
		h.handleError(w, err)
		return
	}

	h.jsonResponse(w, http.StatusCreated, commentResponse{
		Comment: comment,
		Blob:    meta,
	})
}

// listComments handles GET /comments?factId=...
// Returns the fact's comments in insertion order; a fact with no comments
// yields an empty list, not an error.
func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	factID := r.URL.Query().Get("factId")
	if factID == "" {
		h.jsonError(w, "factId query parameter is required", http.StatusBadRequest)
		return
	}

	records := h.stores.Comments.ListForFact(factID)
	comments := make([]model.ContextComment, 0, len(records))
	for _, record := range records {
		comments = append(comments, record.Comment)
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{
		"factId":   factID,
		"comments": comments,
		"count":    len(comments),
	})
}
