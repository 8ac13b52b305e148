// Package model defines the Fact data structure and related operations.
// Facts are the core data unit in FactVault - community-submitted claims
// whose serialized form is stored as an immutable blob on the backend,
// with the record store keeping the binding from fact id to blob location.
package model

import (
	"encoding/json"
	"time"
)

// Verification status constants for facts.
// A fact moves through these states as the community reviews it.
const (
	StatusUnverified = "unverified"
	StatusReview     = "review"
	StatusVerified   = "verified"
	StatusFlagged    = "flagged"
)

// ValidStatus reports whether s is a recognized verification status.
func ValidStatus(s string) bool {
	switch s {
	case StatusUnverified, StatusReview, StatusVerified, StatusFlagged:
		return true
	}
	return false
}

// Fact represents a claim under verification. The fact's serialized form
// lives in the blob referenced by BlobID; updating a fact writes a new blob
// and rebinds BlobID, never mutating the old one.
type Fact struct {
	// ID is the caller-assigned unique identifier
	ID string `json:"id"`

	// Title is the short headline of the claim
	Title string `json:"title"`

	// Summary is the longer description of the claim
	Summary string `json:"summary"`

	// Status is the verification state (unverified, review, verified, flagged)
	Status string `json:"status"`

	// Metadata is an arbitrary key-value payload attached by the submitter
	Metadata map[string]any `json:"metadata,omitempty"`

	// BlobID is the back-reference to the blob holding this fact's
	// serialized form. Changes on every content update.
	BlobID string `json:"blobId,omitempty"`
}

// Validate checks that the fact is well-formed before storage.
func (f *Fact) Validate() error {
	if f.ID == "" {
		return ErrInvalidFactID
	}
	return nil
}

// StoredFactRecord binds a fact to the metadata of the blob holding its
// serialized form. Owned exclusively by the fact store; one record per fact
// id, last write wins on update.
type StoredFactRecord struct {
	Fact                    Fact         `json:"fact"`
	BlobID                  string       `json:"blobId"`
	BlobMetadata            BlobMetadata `json:"blobMetadata"`
	AvailabilityCertificate string       `json:"availabilityCertificate,omitempty"`
}

// ContextComment represents a community comment attached to a fact.
// Comments may be threaded: ParentID references another comment when the
// comment is a reply.
type ContextComment struct {
	// ID is the unique comment identifier
	ID string `json:"id"`

	// FactID is the id of the fact this comment belongs to (required)
	FactID string `json:"factId"`

	// Text is the comment body
	Text string `json:"text"`

	// Author identifies the commenter (wallet address or display name)
	Author string `json:"author,omitempty"`

	// Created is when the comment was posted
	Created time.Time `json:"created"`

	// Votes is the non-negative community vote count
	Votes int `json:"votes"`

	// ParentID references the parent comment for threaded replies.
	// Empty for top-level comments.
	ParentID string `json:"parentId,omitempty"`

	// Metadata is an arbitrary key-value payload
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Validate checks that the comment is well-formed before storage.
func (c *ContextComment) Validate() error {
	if c.ID == "" {
		return ErrInvalidCommentID
	}
	if c.FactID == "" {
		return ErrInvalidFactID
	}
	return nil
}

// IsReply returns true if this comment is a reply to another comment.
func (c *ContextComment) IsReply() bool {
	return c.ParentID != ""
}

// StoredCommentRecord binds a comment to its blob location.
// Owned by the comment store.
type StoredCommentRecord struct {
	Comment                 ContextComment `json:"comment"`
	BlobID                  string         `json:"blobId"`
	BlobMetadata            BlobMetadata   `json:"blobMetadata"`
	AvailabilityCertificate string         `json:"availabilityCertificate,omitempty"`
}

// IndexStats is the aggregate view maintained by the index manager.
// It is derived state: never authoritative, always recomputable from the
// record stores or the blob backend.
type IndexStats struct {
	TotalFacts    int       `json:"totalFacts"`
	TotalComments int       `json:"totalComments"`
	LastSyncedAt  time.Time `json:"lastSyncedAt"`
}

// Envelope kinds for blob payloads. The service layer wraps every entity in
// an envelope before handing it to the backend so that a restarted process
// can tell facts from comments when replaying the manifest.
const (
	KindFact    = "fact"
	KindComment = "comment"
)

// BlobEnvelope is the serialized form written to the blob backend.
type BlobEnvelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// NewFactEnvelope serializes a fact into a blob envelope.
func NewFactEnvelope(f Fact) ([]byte, error) {
	payload, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return json.Marshal(BlobEnvelope{Kind: KindFact, Payload: payload})
}

// NewCommentEnvelope serializes a comment into a blob envelope.
func NewCommentEnvelope(c ContextComment) ([]byte, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return json.Marshal(BlobEnvelope{Kind: KindComment, Payload: payload})
}
