// Package store provides the record store layer for FactVault.
// Record stores bind facts and comments to the metadata of the blobs
// holding their serialized forms. The authoritative bytes always live in
// the blob backend; the record stores are the fast lookup path.
//
// Two interchangeable classes exist behind the same interfaces:
//   - Memory: mutex-guarded in-memory maps; state is a cache and is lost
//     on restart unless rebuilt from the backend manifest.
//   - Database: SQL-backed (SQLite, PostgreSQL, MySQL), durable across
//     restarts.
//
// All implementations must be safe for concurrent use.
package store

import (
	"fmt"

	"github.com/factvault/factvault/internal/config"
	"github.com/factvault/factvault/internal/model"
)

// FactStore defines the contract for fact record persistence.
type FactStore interface {
	// Upsert inserts or replaces a record by fact id. Last write wins.
	Upsert(record model.StoredFactRecord) error

	// Get retrieves a record by fact id.
	Get(id string) (model.StoredFactRecord, bool)

	// List returns all fact records.
	List() []model.StoredFactRecord

	// Count returns the number of stored facts.
	Count() int

	// Clear resets all state. Used only for test isolation.
	Clear()
}

// CommentStore defines the contract for comment record persistence.
// Implementations maintain a fact-to-comment secondary index so that
// ListForFact is not a full scan; the index is updated in the same logical
// operation as the record write, so readers never observe one without
// the other.
type CommentStore interface {
	// Upsert inserts or replaces a record by comment id and updates the
	// fact-to-comment index in the same operation.
	Upsert(record model.StoredCommentRecord) error

	// Get retrieves a record by comment id.
	Get(id string) (model.StoredCommentRecord, bool)

	// ListForFact returns the records for all comments on the given fact,
	// in insertion order. Returns an empty slice, not an error, when the
	// fact has no comments.
	ListForFact(factID string) []model.StoredCommentRecord

	// Count returns the number of stored comments.
	Count() int

	// Clear resets both the record map and the secondary index.
	Clear()
}

// Stores bundles the two record stores plus the shared Close.
type Stores struct {
	Facts    FactStore
	Comments CommentStore

	closer func() error
}

// Close releases resources held by the store class (a no-op for Memory).
func (s *Stores) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// New creates record stores based on configuration.
func New(cfg *config.Config) (*Stores, error) {
	switch cfg.Model.Class {
	case "Memory":
		return &Stores{
			Facts:    NewMemoryFactStore(),
			Comments: NewMemoryCommentStore(),
		}, nil
	case "Database":
		db, err := NewDatabase(cfg)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Facts:    db.Facts(),
			Comments: db.Comments(),
			closer:   db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown model class: %s", cfg.Model.Class)
	}
}
