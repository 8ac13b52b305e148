// Package model defines the BlobMetadata structure describing where and how
// a payload is held by the storage backend. Metadata is produced by the
// backend on store and is immutable afterwards.
package model

import "time"

// BlobMetadata describes a stored blob. Blobs are content-addressed and
// immutable: updating an entity always mints a new blob rather than
// mutating an existing one.
type BlobMetadata struct {
	// BlobID is the opaque, globally unique identifier assigned by the backend
	BlobID string `json:"blobId"`

	// Certificate is an optional availability proof returned by the backend,
	// attesting that the blob is retrievable
	Certificate string `json:"certificate,omitempty"`

	// TransactionID is the optional on-chain transaction that registered
	// the blob, when the network backend is in use
	TransactionID string `json:"transactionId,omitempty"`

	// Size is the payload size in bytes
	Size int64 `json:"size"`

	// StoredAt is when the backend accepted the payload
	StoredAt time.Time `json:"storedAt"`
}
