// Package blob provides the blob storage layer for FactVault.
// It defines the Store interface that abstracts the two backends
// (the decentralized storage network and a disk-mirrored local mock),
// allowing the application to switch between them without changing
// business logic.
//
// Blobs are immutable, opaque byte payloads referenced by backend-assigned
// ids. The backend never deduplicates: every Store call mints a new id, and
// deduplication is a caller concern.
//
// All implementations must be safe for concurrent use.
package blob

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/factvault/factvault/internal/config"
	"github.com/factvault/factvault/internal/model"
)

// Store defines the contract for blob persistence.
// Implementations must be safe for concurrent use and must be behaviorally
// substitutable for one another.
type Store interface {
	// Store persists an opaque payload and returns its metadata.
	// Each call mints a new blob id, even for identical payloads.
	Store(ctx context.Context, payload []byte) (model.BlobMetadata, error)

	// Retrieve returns the exact bytes previously stored under blobID.
	// Returns model.ErrBlobNotFound if the id is unknown.
	Retrieve(ctx context.Context, blobID string) ([]byte, error)

	// HealthCheck probes the backend. A nil error means the backend is
	// reachable and accepting operations.
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the backend.
	Close() error
}

// Enumerator is the optional capability of backends that can list every
// blob id they know about. The mock backend implements it via its manifest;
// it backs index rebuilds and record store replay after a restart.
type Enumerator interface {
	ManifestIDs() []string
}

// New creates a blob backend based on configuration.
// The returned Store should be closed when no longer needed.
func New(cfg *config.Config, log *logrus.Logger) (Store, error) {
	switch cfg.Blob.Backend {
	case "mock":
		return NewMock(cfg.Blob.Dir, log)
	case "network":
		return NewNetwork(cfg.Blob, log), nil
	default:
		return nil, fmt.Errorf("unknown blob backend: %s", cfg.Blob.Backend)
	}
}
